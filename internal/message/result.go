package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is the kind of structured record produced from a command.
type Action string

const (
	ActionAddExpense  Action = "add_expense"
	ActionAddIncome   Action = "add_income"
	ActionAddTask     Action = "add_task"
	ActionAddReminder Action = "add_reminder"
	ActionUnknown     Action = "unknown"
	ActionError       Action = "error"
)

// SourceAudio marks results whose text came from the transcription capability.
const SourceAudio = "audio"

// Result is the structured action record built from a single command.
type Result struct {
	// RecognizedText is the text the decision was made on (normalized).
	RecognizedText string `json:"recognized_text"`

	// Confidence is a fixed constant per code path, in [0, 1].
	Confidence float64 `json:"confidence"`

	Action  Action  `json:"action"`
	Details Details `json:"details"`

	OriginalText     string    `json:"original_text,omitempty"`
	NormalizedText   string    `json:"normalized_text,omitempty"`
	ProcessedAt      time.Time `json:"processed_at"`
	ProcessorVersion string    `json:"processor_version"`

	// Source is "audio" when the text was produced by transcription.
	Source string `json:"source,omitempty"`
}

// IsError reports whether the result is the pipeline's only failure signal.
func (r *Result) IsError() bool {
	return r.Action == ActionError
}

// Details is the action-specific payload of a Result. Its JSON shape is fixed
// per action.
type Details interface {
	action() Action
}

// ExpenseDetails is the payload of an add_expense result.
type ExpenseDetails struct {
	Type        string `json:"type"` // fijo, variable or extra
	Amount      int64  `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD
	Currency    string `json:"currency"`
}

func (*ExpenseDetails) action() Action { return ActionAddExpense }

// IncomeDetails is the payload of an add_income result.
type IncomeDetails struct {
	Amount   int64  `json:"amount"`
	Source   string `json:"source"`
	Date     string `json:"date"`
	Currency string `json:"currency"`
}

func (*IncomeDetails) action() Action { return ActionAddIncome }

// TaskDetails is the payload of an add_task result.
type TaskDetails struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	DueDate     string    `json:"due_date"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

func (*TaskDetails) action() Action { return ActionAddTask }

// ReminderDetails is the payload of an add_reminder result.
type ReminderDetails struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"due_date"`
	Priority    string    `json:"priority"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

func (*ReminderDetails) action() Action { return ActionAddReminder }

// UnknownDetails is the payload of an unknown result.
type UnknownDetails struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

func (*UnknownDetails) action() Action { return ActionUnknown }

// ErrorDetails is the payload of an error result.
type ErrorDetails struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (*ErrorDetails) action() Action { return ActionError }

// ActionOf returns the action a details payload belongs to.
func ActionOf(d Details) Action {
	if d == nil {
		return ""
	}
	return d.action()
}

// NewDetails returns an empty payload for action, or nil for unknown actions.
func NewDetails(a Action) Details {
	switch a {
	case ActionAddExpense:
		return &ExpenseDetails{}
	case ActionAddIncome:
		return &IncomeDetails{}
	case ActionAddTask:
		return &TaskDetails{}
	case ActionAddReminder:
		return &ReminderDetails{}
	case ActionUnknown:
		return &UnknownDetails{}
	case ActionError:
		return &ErrorDetails{}
	default:
		return nil
	}
}

// UnmarshalJSON decodes details into the payload type of the result's action.
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	var aux struct {
		plain
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Result(aux.plain)
	r.Details = nil

	if len(aux.Details) == 0 || string(aux.Details) == "null" {
		return nil
	}
	d := NewDetails(r.Action)
	if d == nil {
		return fmt.Errorf("unknown action %q", r.Action)
	}
	if err := json.Unmarshal(aux.Details, d); err != nil {
		return fmt.Errorf("decoding %s details: %w", r.Action, err)
	}
	r.Details = d
	return nil
}
