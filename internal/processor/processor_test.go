package processor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/dictado/internal/message"
	"github.com/nadzzz/dictado/internal/transcribe"
)

var fixedNow = time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

const (
	today    = "2025-03-14"
	tomorrow = "2025-03-15"
)

func newProcessor(t *testing.T, opts ...Option) *Processor {
	t.Helper()
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	}, opts...)
	p, err := New(opts...)
	require.NoError(t, err)
	return p
}

func TestScenarioExpense(t *testing.T) {
	p := newProcessor(t)

	res := p.ProcessText("agregar gasto variable 50000 en comida")

	assert.Equal(t, message.ActionAddExpense, res.Action)
	assert.Equal(t, ConfidenceExact, res.Confidence)
	d, ok := res.Details.(*message.ExpenseDetails)
	require.True(t, ok)
	assert.Equal(t, int64(50000), d.Amount)
	assert.Equal(t, "alimentación", d.Category)
	assert.Equal(t, "variable", d.Type)
	assert.Equal(t, "comida", d.Description)
	assert.Equal(t, today, d.Date)
	assert.Equal(t, "CLP", d.Currency)

	assert.Equal(t, "agregar gasto variable 50000 en comida", res.OriginalText)
	assert.Equal(t, res.NormalizedText, res.RecognizedText)
	assert.Equal(t, fixedNow, res.ProcessedAt)
	assert.Equal(t, Version, res.ProcessorVersion)
	assert.Empty(t, res.Source)
}

func TestScenarioTask(t *testing.T) {
	p := newProcessor(t)

	res := p.ProcessText("nueva tarea comprar pan mañana")

	assert.Equal(t, message.ActionAddTask, res.Action)
	assert.Equal(t, ConfidenceTask, res.Confidence)
	d, ok := res.Details.(*message.TaskDetails)
	require.True(t, ok)
	assert.Contains(t, d.Title, "comprar pan")
	assert.Equal(t, tomorrow, d.DueDate)
	assert.Equal(t, "media", d.Priority)
	assert.False(t, d.Completed)
	assert.Equal(t, fixedNow, d.CreatedAt)
}

func TestScenarioReminder(t *testing.T) {
	p := newProcessor(t)

	res := p.ProcessText("recordatorio pagar luz el viernes")

	assert.Equal(t, message.ActionAddReminder, res.Action)
	assert.Equal(t, ConfidenceReminder, res.Confidence)
	d, ok := res.Details.(*message.ReminderDetails)
	require.True(t, ok)
	assert.Equal(t, "pagar luz", d.Title)
	assert.Equal(t, tomorrow, d.DueDate, "weekday names fall through to tomorrow")
	assert.Equal(t, "media", d.Priority)
}

func TestScenarioUnknown(t *testing.T) {
	p := newProcessor(t)

	res := p.ProcessText("blah blah nothing matches")

	assert.Equal(t, message.ActionUnknown, res.Action)
	assert.Equal(t, ConfidenceUnknown, res.Confidence)
	d, ok := res.Details.(*message.UnknownDetails)
	require.True(t, ok)
	assert.NotEmpty(t, d.Suggestions)
	assert.NotEmpty(t, d.Message)
}

func TestEmptyTextIsUnknown(t *testing.T) {
	p := newProcessor(t)

	res := p.ProcessText("   ")
	assert.Equal(t, message.ActionUnknown, res.Action)
	assert.Equal(t, "", res.NormalizedText)
}

func TestPrecedence(t *testing.T) {
	p := newProcessor(t)

	res := p.ProcessText("agregar gasto variable 20000 en tarea")
	assert.Equal(t, message.ActionAddExpense, res.Action)
}

func TestIncome(t *testing.T) {
	p := newProcessor(t, WithCurrency("USD"))

	res := p.ProcessText("Ingreso 500 lucas de sueldo")

	assert.Equal(t, message.ActionAddIncome, res.Action)
	assert.Equal(t, ConfidenceExact, res.Confidence)
	d, ok := res.Details.(*message.IncomeDetails)
	require.True(t, ok)
	assert.Equal(t, int64(500000), d.Amount)
	assert.Equal(t, "sueldo", d.Source)
	assert.Equal(t, today, d.Date)
	assert.Equal(t, "USD", d.Currency)
}

func TestSlangAmounts(t *testing.T) {
	p := newProcessor(t)

	tests := []struct {
		text     string
		amount   int64
		category string
	}{
		{"gasté 50 lucas en supermercado", 50000, "alimentación"},
		{"pagué 50k de luz", 50000, "servicios"},
		{"gasto 20 mil en bencina", 20000, "transporte"},
		{"compré 3 lucas de pan", 3000, "alimentación"},
		{"gasto fijo 450000 arriendo", 450000, "servicios"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res := p.ProcessText(tt.text)
			require.Equal(t, message.ActionAddExpense, res.Action)
			require.Equal(t, ConfidenceExact, res.Confidence)
			d := res.Details.(*message.ExpenseDetails)
			assert.Equal(t, tt.amount, d.Amount)
			assert.Equal(t, tt.category, d.Category)
		})
	}
}

func TestTaskPriorityAndDate(t *testing.T) {
	p := newProcessor(t)

	res := p.ProcessText("tengo que llamar al banco urgente hoy")
	require.Equal(t, message.ActionAddTask, res.Action)
	d := res.Details.(*message.TaskDetails)
	assert.Equal(t, "alta", d.Priority)
	assert.Equal(t, today, d.DueDate)
	assert.Equal(t, "Tarea creada por voz: "+d.Title, d.Description)
}

func TestGenericFallbacks(t *testing.T) {
	p := newProcessor(t)

	t.Run("expense", func(t *testing.T) {
		res := p.ProcessText("agregar gasto en comida")
		require.Equal(t, message.ActionAddExpense, res.Action)
		assert.Equal(t, ConfidenceGeneric, res.Confidence)
		d := res.Details.(*message.ExpenseDetails)
		assert.Equal(t, int64(10000), d.Amount)
		assert.Equal(t, "otros", d.Category)
	})

	t.Run("income", func(t *testing.T) {
		res := p.ProcessText("nuevo ingreso por ventas")
		require.Equal(t, message.ActionAddIncome, res.Action)
		assert.Equal(t, ConfidenceGeneric, res.Confidence)
		assert.Equal(t, int64(50000), res.Details.(*message.IncomeDetails).Amount)
	})

	t.Run("task", func(t *testing.T) {
		res := p.ProcessText("nueva tarea")
		require.Equal(t, message.ActionAddTask, res.Action)
		assert.Equal(t, ConfidenceGeneric, res.Confidence)
		d := res.Details.(*message.TaskDetails)
		assert.Equal(t, "Tarea por voz", d.Title)
		assert.Equal(t, tomorrow, d.DueDate)
		assert.Equal(t, "media", d.Priority)
	})

	t.Run("reminder", func(t *testing.T) {
		res := p.ProcessText("Recordatorio")
		require.Equal(t, message.ActionAddReminder, res.Action)
		assert.Equal(t, ConfidenceGeneric, res.Confidence)
		assert.Equal(t, "Recordatorio por voz", res.Details.(*message.ReminderDetails).Title)
	})
}

func TestErrorContainment(t *testing.T) {
	p := newProcessor(t)

	tests := []struct {
		name string
		text string
		kind ErrorKind
	}{
		{"amount out of range", "agregar gasto 99999999999999999999 en comida", KindAmountOutOfRange},
		{"income out of range", "ingreso 99999999999999999999 de sueldo", KindAmountOutOfRange},
		{"invalid utf8", "agregar gasto \xff\xfe", KindMalformedInput},
		{"too long", strings.Repeat("a", MaxInputRunes+1), KindInputTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res message.Result
			require.NotPanics(t, func() { res = p.ProcessText(tt.text) })

			assert.True(t, res.IsError())
			assert.Equal(t, message.ActionError, res.Action)
			assert.Equal(t, ConfidenceError, res.Confidence)
			d, ok := res.Details.(*message.ErrorDetails)
			require.True(t, ok)
			assert.Equal(t, string(tt.kind), d.Kind)
			assert.NotEmpty(t, d.Error)
			assert.Equal(t, "Error procesando el comando", d.Message)
			assert.Equal(t, Version, res.ProcessorVersion)
		})
	}
}

func TestMaxLengthAccepted(t *testing.T) {
	p := newProcessor(t)
	res := p.ProcessText(strings.Repeat("ñ", MaxInputRunes))
	assert.Equal(t, message.ActionUnknown, res.Action, "limit counts runes, not bytes")
}

func TestProcessAudio(t *testing.T) {
	var gotOpts transcribe.Opts
	tr := transcribe.Func(func(_ context.Context, audio []byte, contentType string, opts transcribe.Opts) (*transcribe.Result, error) {
		gotOpts = opts
		return &transcribe.Result{Text: "nueva tarea comprar pan mañana", Language: "es"}, nil
	})
	p := newProcessor(t, WithTranscriber(tr), WithLanguage("es"))
	require.True(t, p.TranscriptionAvailable())

	res := p.ProcessAudio(context.Background(), []byte("RIFF...."), "audio/wav")

	assert.Equal(t, message.ActionAddTask, res.Action)
	assert.Equal(t, ConfidenceAudio, res.Confidence)
	assert.Equal(t, message.SourceAudio, res.Source)
	assert.Equal(t, "es", gotOpts.Language)
}

func TestProcessAudioFailures(t *testing.T) {
	failing := transcribe.Func(func(context.Context, []byte, string, transcribe.Opts) (*transcribe.Result, error) {
		return nil, errors.New("connection refused")
	})
	garbage := transcribe.Func(func(context.Context, []byte, string, transcribe.Opts) (*transcribe.Result, error) {
		return &transcribe.Result{Text: "\xff"}, nil
	})

	tests := []struct {
		name  string
		p     *Processor
		audio []byte
		kind  ErrorKind
	}{
		{"no transcriber", newProcessor(t), []byte{1}, KindNoTranscriber},
		{"empty audio", newProcessor(t, WithTranscriber(failing)), nil, KindEmptyAudio},
		{"transcriber error", newProcessor(t, WithTranscriber(failing)), []byte{1}, KindTranscription},
		{"transcript not utf8", newProcessor(t, WithTranscriber(garbage)), []byte{1}, KindMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.p.ProcessAudio(context.Background(), tt.audio, "audio/wav")

			assert.Equal(t, message.ActionError, res.Action)
			assert.Equal(t, ConfidenceError, res.Confidence, "audio override never applies to errors")
			assert.Equal(t, message.SourceAudio, res.Source)
			assert.Equal(t, string(tt.kind), res.Details.(*message.ErrorDetails).Kind)
		})
	}
}

func TestLocation(t *testing.T) {
	santiago, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	// 01:30 UTC on the 15th is still the 14th in Santiago.
	late := time.Date(2025, time.March, 15, 1, 30, 0, 0, time.UTC)
	p, err := New(WithClock(func() time.Time { return late }), WithLocation(santiago))
	require.NoError(t, err)

	res := p.ProcessText("pagué 1000 de pan")
	require.Equal(t, message.ActionAddExpense, res.Action)
	assert.Equal(t, "2025-03-14", res.Details.(*message.ExpenseDetails).Date)
}

func TestLargeAmountFitsInt64(t *testing.T) {
	p := newProcessor(t)

	res := p.ProcessText("agregar gasto 9999999999999999 en comida")
	require.Equal(t, message.ActionAddExpense, res.Action)
	assert.Equal(t, int64(9999999999999999), res.Details.(*message.ExpenseDetails).Amount)
}

func TestTaskPriorityMatchesInsideWords(t *testing.T) {
	p := newProcessor(t)

	res := p.ProcessText("tarea ir a la playa")
	require.Equal(t, message.ActionAddTask, res.Action)
	assert.Equal(t, ConfidenceTask, res.Confidence)
	assert.Equal(t, "alta", res.Details.(*message.TaskDetails).Priority)
}

func TestConcurrentUse(t *testing.T) {
	p := newProcessor(t)
	inputs := []string{
		"agregar gasto variable 50000 en comida",
		"nueva tarea comprar pan mañana",
		"recordatorio pagar luz el viernes",
		"ingreso 500 lucas de sueldo",
		"blah blah nothing matches",
		"agregar gasto 99999999999999999999 en comida",
	}
	want := make([]message.Result, len(inputs))
	for i, in := range inputs {
		want[i] = p.ProcessText(in)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 100*len(inputs))
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, in := range inputs {
				got := p.ProcessText(in)
				if !assert.ObjectsAreEqual(want[i], got) {
					errs <- in
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for in := range errs {
		t.Errorf("concurrent result differs for %q", in)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindTranscription, KindOf(errors.Join(ErrTranscription, errors.New("x"))))
}
