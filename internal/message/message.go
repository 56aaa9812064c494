// Package message defines the core data types flowing through the dictado pipeline.
package message

import (
	"time"
)

// CommandType tells the dispatcher which field of a Message carries the command.
type CommandType string

const (
	// CommandTypeText carries a typed or pre-transcribed command in Text.
	CommandTypeText CommandType = "text"

	// CommandTypeAudio carries a recorded command in Audio.
	CommandTypeAudio CommandType = "audio"

	// CommandTypeSimulation replays SimulationText through the text pipeline.
	// Front-ends use it to demo the flow without a microphone.
	CommandTypeSimulation CommandType = "simulation"
)

// Message represents an incoming request from any transport.
type Message struct {
	// ID is a unique identifier for this message (UUID).
	ID string `json:"id,omitempty"`

	// Source identifies the sender (e.g., a WebSocket client id or a remote address).
	Source string `json:"source,omitempty"`

	// Type selects how the command is read: "text", "audio" or "simulation".
	Type CommandType `json:"type"`

	// Text is the spoken command as text (bypasses transcription).
	Text string `json:"text,omitempty"`

	// Audio is the raw audio payload. Nil if the message is text-only.
	Audio []byte `json:"audio,omitempty"`

	// ContentType is the MIME type of the audio (e.g., "audio/wav", "audio/ogg").
	ContentType string `json:"content_type,omitempty"`

	// SimulationText is the command replayed for "simulation" messages.
	SimulationText string `json:"simulationText,omitempty"`

	// Timestamp is when the message was received by dictado.
	Timestamp time.Time `json:"timestamp"`
}

// HasAudio returns true if the message contains an audio payload.
func (m *Message) HasAudio() bool {
	return len(m.Audio) > 0
}

// Status is the outcome of handling a message at the transport level.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Response is the envelope returned to the sender for every message.
//
// A "success" status only means the message was well-formed: the Result may
// still carry action "error" when the pipeline could not interpret it.
type Response struct {
	Status      Status    `json:"status"`
	Result      *Result   `json:"result,omitempty"`
	Error       string    `json:"error,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}
