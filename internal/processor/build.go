package processor

import (
	"fmt"
	"strings"
	"time"

	"github.com/nadzzz/dictado/internal/extract"
	"github.com/nadzzz/dictado/internal/intent"
	"github.com/nadzzz/dictado/internal/message"
)

// Defaults of the generic results. A generic result means the classifier
// recognized the intent but the extraction rules could not pull its fields.
const (
	genericExpenseAmount      = 10000
	genericExpenseDescription = "Gasto detectado por voz"
	genericIncomeAmount       = 50000
	genericIncomeSource       = "Ingreso detectado por voz"
	genericTaskTitle          = "Tarea por voz"
	genericReminderTitle      = "Recordatorio por voz"

	defaultExpenseType        = "variable"
	defaultExpenseDescription = "Gasto por voz"
	defaultIncomeSource       = "Ingreso por voz"

	errorMessage   = "Error procesando el comando"
	unknownMessage = "Comando no reconocido, pero texto recibido correctamente"
)

// Suggestions returned with unknown results.
var suggestions = []string{
	`Intenta: "agregar gasto variable 50000 en comida"`,
	`O: "nueva tarea hacer compras mañana"`,
	`O: "recordatorio pagar luz el viernes"`,
}

// SampleCommands lists one working command per intent.
func SampleCommands() []string {
	return []string{
		"agregar gasto variable 50000 en comida",
		"ingreso 500000 de sueldo",
		"nueva tarea hacer compras mañana",
		"recordatorio pagar luz el viernes",
	}
}

func (p *Processor) buildExpense(cmd Command, now time.Time) (message.Result, error) {
	caps, ok := p.classifier.Extract(intent.Expense, cmd.Normalized())
	if !ok {
		return p.genericExpense(cmd, now), nil
	}

	amount, err := extract.ParseAmount(caps.Get(intent.RoleAmount))
	if err != nil {
		return message.Result{}, fmt.Errorf("expense: %w", err)
	}
	kind := caps.Get(intent.RoleKind)
	if kind == "" {
		kind = defaultExpenseType
	}
	description := strings.TrimSpace(caps.Get(intent.RoleDescription))
	if description == "" {
		description = defaultExpenseDescription
	}

	return message.Result{
		RecognizedText: cmd.Normalized(),
		Confidence:     ConfidenceExact,
		Action:         message.ActionAddExpense,
		Details: &message.ExpenseDetails{
			Type:        kind,
			Amount:      amount,
			Category:    p.extractor.Category(description),
			Description: description,
			Date:        now.Format(extract.DateLayout),
			Currency:    p.currency,
		},
	}, nil
}

func (p *Processor) genericExpense(cmd Command, now time.Time) message.Result {
	return message.Result{
		RecognizedText: cmd.Normalized(),
		Confidence:     ConfidenceGeneric,
		Action:         message.ActionAddExpense,
		Details: &message.ExpenseDetails{
			Type:        defaultExpenseType,
			Amount:      genericExpenseAmount,
			Category:    p.tables.DefaultCategory(),
			Description: genericExpenseDescription,
			Date:        now.Format(extract.DateLayout),
			Currency:    p.currency,
		},
	}
}

func (p *Processor) buildIncome(cmd Command, now time.Time) (message.Result, error) {
	caps, ok := p.classifier.Extract(intent.Income, cmd.Normalized())
	if !ok {
		return p.genericIncome(cmd, now), nil
	}

	amount, err := extract.ParseAmount(caps.Get(intent.RoleAmount))
	if err != nil {
		return message.Result{}, fmt.Errorf("income: %w", err)
	}
	source := strings.TrimSpace(caps.Get(intent.RoleSource))
	if source == "" {
		source = defaultIncomeSource
	}

	return message.Result{
		RecognizedText: cmd.Normalized(),
		Confidence:     ConfidenceExact,
		Action:         message.ActionAddIncome,
		Details: &message.IncomeDetails{
			Amount:   amount,
			Source:   source,
			Date:     now.Format(extract.DateLayout),
			Currency: p.currency,
		},
	}, nil
}

func (p *Processor) genericIncome(cmd Command, now time.Time) message.Result {
	return message.Result{
		RecognizedText: cmd.Normalized(),
		Confidence:     ConfidenceGeneric,
		Action:         message.ActionAddIncome,
		Details: &message.IncomeDetails{
			Amount:   genericIncomeAmount,
			Source:   genericIncomeSource,
			Date:     now.Format(extract.DateLayout),
			Currency: p.currency,
		},
	}
}

func (p *Processor) buildTask(cmd Command, now time.Time) message.Result {
	caps, ok := p.classifier.Extract(intent.Task, cmd.Normalized())
	title := strings.TrimSpace(caps.Get(intent.RoleTitle))
	if !ok || title == "" {
		return message.Result{
			RecognizedText: cmd.Normalized(),
			Confidence:     ConfidenceGeneric,
			Action:         message.ActionAddTask,
			Details: &message.TaskDetails{
				Title:       genericTaskTitle,
				Description: "Tarea detectada: " + cmd.Normalized(),
				Priority:    p.tables.DefaultPriority(),
				DueDate:     p.extractor.DefaultDate(now),
				CreatedAt:   now,
			},
		}
	}

	return message.Result{
		RecognizedText: cmd.Normalized(),
		Confidence:     ConfidenceTask,
		Action:         message.ActionAddTask,
		Details: &message.TaskDetails{
			Title:       title,
			Description: "Tarea creada por voz: " + title,
			Priority:    p.extractor.Priority(cmd.Normalized()),
			DueDate:     p.extractor.Date(cmd.Normalized(), now),
			CreatedAt:   now,
		},
	}
}

func (p *Processor) buildReminder(cmd Command, now time.Time) message.Result {
	caps, ok := p.classifier.Extract(intent.Reminder, cmd.Normalized())
	title := strings.TrimSpace(caps.Get(intent.RoleTitle))
	if !ok || title == "" {
		return message.Result{
			RecognizedText: cmd.Normalized(),
			Confidence:     ConfidenceGeneric,
			Action:         message.ActionAddReminder,
			Details: &message.ReminderDetails{
				Title:       genericReminderTitle,
				Description: "Recordatorio: " + cmd.Normalized(),
				DueDate:     p.extractor.DefaultDate(now),
				Priority:    p.tables.DefaultPriority(),
				CreatedAt:   now,
			},
		}
	}

	// Reminders always carry the default priority; only tasks read it
	// from the text.
	return message.Result{
		RecognizedText: cmd.Normalized(),
		Confidence:     ConfidenceReminder,
		Action:         message.ActionAddReminder,
		Details: &message.ReminderDetails{
			Title:       title,
			Description: "Recordatorio: " + title,
			DueDate:     p.extractor.Date(cmd.Normalized(), now),
			Priority:    p.tables.DefaultPriority(),
			CreatedAt:   now,
		},
	}
}

func unknownResult(cmd Command) message.Result {
	return message.Result{
		RecognizedText: cmd.Normalized(),
		Confidence:     ConfidenceUnknown,
		Action:         message.ActionUnknown,
		Details: &message.UnknownDetails{
			Message:     unknownMessage,
			Suggestions: append([]string(nil), suggestions...),
		},
	}
}

func (p *Processor) errorResult(text string, err error, now time.Time) message.Result {
	return message.Result{
		RecognizedText: text,
		Confidence:     ConfidenceError,
		Action:         message.ActionError,
		Details: &message.ErrorDetails{
			Error:   err.Error(),
			Kind:    string(KindOf(err)),
			Message: errorMessage,
		},
		OriginalText:     text,
		ProcessedAt:      now,
		ProcessorVersion: Version,
	}
}
