package processor

import (
	"errors"

	"github.com/nadzzz/dictado/internal/extract"
	"github.com/nadzzz/dictado/internal/transcribe"
)

// Failures the processor turns into "error" results.
var (
	ErrMalformedInput = errors.New("malformed input: text is not valid UTF-8")
	ErrInputTooLong   = errors.New("input too long")
	ErrNoTranscriber  = errors.New("no transcriber configured")
	ErrTranscription  = errors.New("transcription failed")
)

// ErrorKind is the machine-readable class of an error result.
type ErrorKind string

const (
	KindMalformedInput   ErrorKind = "malformed_input"
	KindInputTooLong     ErrorKind = "input_too_long"
	KindAmountOutOfRange ErrorKind = "amount_out_of_range"
	KindNoTranscriber    ErrorKind = "transcriber_unavailable"
	KindEmptyAudio       ErrorKind = "empty_audio"
	KindTranscription    ErrorKind = "transcription_failed"
	KindInternal         ErrorKind = "internal"
)

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrMalformedInput):
		return KindMalformedInput
	case errors.Is(err, ErrInputTooLong):
		return KindInputTooLong
	case errors.Is(err, extract.ErrAmountOutOfRange):
		return KindAmountOutOfRange
	case errors.Is(err, ErrNoTranscriber):
		return KindNoTranscriber
	case errors.Is(err, transcribe.ErrEmptyAudio):
		return KindEmptyAudio
	case errors.Is(err, ErrTranscription):
		return KindTranscription
	default:
		return KindInternal
	}
}
