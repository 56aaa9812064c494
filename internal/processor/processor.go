// Package processor runs the command interpretation pipeline:
//
//	raw text -> normalize -> classify -> extract -> build result
//
// Audio goes through the injected transcription capability first and then
// re-enters the text pipeline. Every call terminates in a well-formed
// message.Result; failures become results with action "error" and never
// escape to the caller.
//
// A Processor only reads immutable tables during a call, so one instance can
// serve every connected client concurrently.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/nadzzz/dictado/internal/extract"
	"github.com/nadzzz/dictado/internal/intent"
	"github.com/nadzzz/dictado/internal/message"
	"github.com/nadzzz/dictado/internal/normalize"
	"github.com/nadzzz/dictado/internal/taxonomy"
	"github.com/nadzzz/dictado/internal/transcribe"
)

// Version is reported in every result.
const Version = "1.0.0"

// Fixed confidence per code path. They are not scores.
const (
	ConfidenceExact    = 0.95
	ConfidenceTask     = 0.92
	ConfidenceReminder = 0.90
	ConfidenceGeneric  = 0.75
	ConfidenceUnknown  = 0.60
	ConfidenceError    = 0.0

	// ConfidenceAudio replaces the text pipeline's confidence for
	// transcribed commands.
	ConfidenceAudio = 0.85
)

// MaxInputRunes bounds the length of a command.
const MaxInputRunes = 1000

// audioPlaceholder is the recognized text of audio that never became text.
const audioPlaceholder = "audio_command"

// Processor interprets commands. Construct it with New.
type Processor struct {
	normalizer  *normalize.Normalizer
	classifier  *intent.Classifier
	extractor   *extract.Extractor
	transcriber transcribe.Transcriber

	tables   *taxonomy.Tables
	now      func() time.Time
	location *time.Location
	currency string
	language string
}

// Option configures a Processor.
type Option func(*Processor)

// WithTables replaces the embedded taxonomy tables.
func WithTables(t *taxonomy.Tables) Option {
	return func(p *Processor) { p.tables = t }
}

// WithClassifier replaces the built-in intent rules.
func WithClassifier(c *intent.Classifier) Option {
	return func(p *Processor) { p.classifier = c }
}

// WithTranscriber sets the speech-to-text capability used by ProcessAudio.
func WithTranscriber(t transcribe.Transcriber) Option {
	return func(p *Processor) { p.transcriber = t }
}

// WithClock sets the time source for dates and timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithLocation sets the time zone calendar dates are computed in.
func WithLocation(loc *time.Location) Option {
	return func(p *Processor) { p.location = loc }
}

// WithCurrency sets the ISO 4217 code stamped on money results.
func WithCurrency(code string) Option {
	return func(p *Processor) { p.currency = code }
}

// WithLanguage sets the language hint passed to the transcriber.
func WithLanguage(lang string) Option {
	return func(p *Processor) { p.language = lang }
}

// New creates a Processor. Tables and rules are compiled here, once.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		now:      time.Now,
		location: time.Local,
		currency: "CLP",
		language: "es",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tables == nil {
		p.tables = taxonomy.Default()
	}
	if p.classifier == nil {
		p.classifier = intent.Default()
	}

	n, err := normalize.New(p.tables.Substitutions())
	if err != nil {
		return nil, fmt.Errorf("building normalizer: %w", err)
	}
	p.normalizer = n
	p.extractor = extract.New(p.tables)
	return p, nil
}

// Tables returns the taxonomy the processor was built with.
func (p *Processor) Tables() *taxonomy.Tables {
	return p.tables
}

// TranscriptionAvailable reports whether ProcessAudio can transcribe.
func (p *Processor) TranscriptionAvailable() bool {
	return p.transcriber != nil
}

// Normalize exposes the processor's normalizer.
func (p *Processor) Normalize(text string) string {
	return p.normalizer.Normalize(text)
}

// Command is a raw command and its normalized form. It is immutable.
type Command struct {
	raw        string
	normalized string
}

// Raw returns the text as received.
func (c Command) Raw() string { return c.raw }

// Normalized returns the canonical text the pipeline matches on.
func (c Command) Normalized() string { return c.normalized }

// NewCommand normalizes text into a Command.
func (p *Processor) NewCommand(text string) Command {
	return Command{raw: text, normalized: p.normalizer.Normalize(text)}
}

// Classify normalizes text and returns the intent match.
func (p *Processor) Classify(text string) intent.Match {
	return p.classifier.Classify(p.normalizer.Normalize(text))
}

// ProcessText interprets a text command.
func (p *Processor) ProcessText(text string) message.Result {
	now := p.clock()
	slog.Info("processing command", "text_length", len(text))

	res, err := p.process(text, now)
	if err != nil {
		slog.Warn("command failed", "kind", KindOf(err), "error", err)
		return p.errorResult(text, err, now)
	}

	slog.Info("command processed", "action", res.Action, "confidence", res.Confidence)
	return res
}

// ProcessAudio transcribes audio and interprets the resulting text. The
// result is tagged with source "audio" and, unless it is an error, carries
// the fixed audio confidence.
func (p *Processor) ProcessAudio(ctx context.Context, audio []byte, contentType string) message.Result {
	now := p.clock()
	slog.Info("processing audio command", "content_type", contentType, "bytes", len(audio))

	if p.transcriber == nil {
		return p.audioError(ErrNoTranscriber, now)
	}
	if len(audio) == 0 {
		return p.audioError(transcribe.ErrEmptyAudio, now)
	}

	tr, err := p.transcriber.Transcribe(ctx, audio, contentType, transcribe.Opts{Language: p.language})
	if err != nil {
		return p.audioError(fmt.Errorf("%w: %w", ErrTranscription, err), now)
	}
	slog.Debug("transcription complete", "backend", p.transcriber.Name(), "text_length", len(tr.Text), "language", tr.Language)

	res := p.ProcessText(tr.Text)
	res.Source = message.SourceAudio
	if !res.IsError() {
		res.Confidence = ConfidenceAudio
	}
	return res
}

func (p *Processor) audioError(err error, now time.Time) message.Result {
	slog.Warn("audio command failed", "kind", KindOf(err), "error", err)
	res := p.errorResult(audioPlaceholder, err, now)
	res.Source = message.SourceAudio
	return res
}

func (p *Processor) clock() time.Time {
	return p.now().In(p.location)
}

func (p *Processor) process(text string, now time.Time) (message.Result, error) {
	if !utf8.ValidString(text) {
		return message.Result{}, ErrMalformedInput
	}
	if n := utf8.RuneCountInString(text); n > MaxInputRunes {
		return message.Result{}, fmt.Errorf("%w: %d runes, limit %d", ErrInputTooLong, n, MaxInputRunes)
	}

	cmd := p.NewCommand(text)
	match := p.classifier.Classify(cmd.Normalized())
	slog.Debug("command classified", "normalized", cmd.Normalized(), "match", match.String())

	var (
		res message.Result
		err error
	)
	switch match.Intent {
	case intent.Expense:
		res, err = p.buildExpense(cmd, now)
	case intent.Income:
		res, err = p.buildIncome(cmd, now)
	case intent.Task:
		res = p.buildTask(cmd, now)
	case intent.Reminder:
		res = p.buildReminder(cmd, now)
	default:
		res = unknownResult(cmd)
	}
	if err != nil {
		return message.Result{}, err
	}

	res.OriginalText = cmd.Raw()
	res.NormalizedText = cmd.Normalized()
	res.ProcessedAt = now
	res.ProcessorVersion = Version
	return res, nil
}
