// Package transcribe defines the speech-to-text capability the command
// pipeline consumes.
//
// The pipeline only depends on the Transcriber interface; it never ships a
// default implementation. Dictado includes two adapters for self-hosted
// engines: a Whisper-compatible HTTP client (whisper.cpp server,
// faster-whisper, whisper-asr-webservice) and a Wyoming protocol client
// (wyoming-faster-whisper, Home Assistant add-ons).
package transcribe

import (
	"context"
	"errors"
)

// ErrEmptyAudio is returned when there is nothing to transcribe.
var ErrEmptyAudio = errors.New("empty audio payload")

// Opts controls transcription behavior.
type Opts struct {
	// Language is the ISO-639-1 code (e.g., "es") to guide transcription.
	Language string

	// Prompt provides context to improve recognition of domain-specific terms.
	Prompt string
}

// Result holds the output of a transcription.
type Result struct {
	// Text is the recognized utterance.
	Text string

	// Language is the ISO-639-1 code reported by the engine, if any.
	Language string
}

// Transcriber converts audio to text.
type Transcriber interface {
	// Name returns the backend identifier (e.g., "whisper", "wyoming").
	Name() string

	// Transcribe converts audio bytes to text.
	Transcribe(ctx context.Context, audio []byte, contentType string, opts Opts) (*Result, error)

	// Close releases any resources held by the transcriber.
	Close() error
}

// Func adapts a plain function to the Transcriber interface.
type Func func(ctx context.Context, audio []byte, contentType string, opts Opts) (*Result, error)

// Name returns "func".
func (f Func) Name() string { return "func" }

// Transcribe calls f.
func (f Func) Transcribe(ctx context.Context, audio []byte, contentType string, opts Opts) (*Result, error) {
	return f(ctx, audio, contentType, opts)
}

// Close is a no-op.
func (f Func) Close() error { return nil }
