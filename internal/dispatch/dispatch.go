// Package dispatch turns transport messages into pipeline calls.
//
// The dispatcher validates the message, runs it through the processor
// (transcribing audio first) and wraps the action result in a response
// envelope. The sender always receives a response: malformed messages get an
// error envelope, never a dropped connection.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/dictado/internal/message"
)

// DefaultSimulationText is replayed when a simulation message has no text.
const DefaultSimulationText = "agregar gasto variable 30000 en comida"

// ErrInvalidMessage marks messages that cannot be dispatched.
var ErrInvalidMessage = errors.New("invalid message")

// Pipeline is the part of the processor the dispatcher needs.
type Pipeline interface {
	ProcessText(text string) message.Result
	ProcessAudio(ctx context.Context, audio []byte, contentType string) message.Result
}

// Dispatcher is the central routing engine.
type Dispatcher struct {
	pipeline          Pipeline
	transcribeTimeout time.Duration
	now               func() time.Time
}

// New creates a new Dispatcher. transcribeTimeout bounds audio commands; zero
// means no bound beyond the caller's context.
func New(pipeline Pipeline, transcribeTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		pipeline:          pipeline,
		transcribeTimeout: transcribeTimeout,
		now:               time.Now,
	}
}

// Handle processes a single message through the pipeline.
// This function is passed as the transport.Handler to each transport.
func (d *Dispatcher) Handle(ctx context.Context, msg *message.Message) (*message.Response, error) {
	start := d.now()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = start
	}
	logger := slog.With("message_id", msg.ID, "source", msg.Source)
	logger.Info("dispatch started", "type", msg.Type)

	result, err := d.run(ctx, msg)
	if err != nil {
		logger.Warn("message rejected", "error", err)
		return &message.Response{
			Status:      message.StatusError,
			Error:       err.Error(),
			ProcessedAt: d.now(),
		}, nil
	}

	logger.Info("dispatch complete",
		"action", result.Action,
		"confidence", result.Confidence,
		"duration", time.Since(start))

	return &message.Response{
		Status:      message.StatusSuccess,
		Result:      &result,
		ProcessedAt: d.now(),
	}, nil
}

func (d *Dispatcher) run(ctx context.Context, msg *message.Message) (message.Result, error) {
	switch msg.Type {
	case message.CommandTypeText:
		if msg.Text == "" {
			return message.Result{}, fmt.Errorf("%w: text command without text", ErrInvalidMessage)
		}
		return d.pipeline.ProcessText(msg.Text), nil

	case message.CommandTypeAudio:
		if !msg.HasAudio() {
			return message.Result{}, fmt.Errorf("%w: audio command without audio", ErrInvalidMessage)
		}
		if d.transcribeTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.transcribeTimeout)
			defer cancel()
		}
		return d.pipeline.ProcessAudio(ctx, msg.Audio, msg.ContentType), nil

	case message.CommandTypeSimulation:
		text := msg.SimulationText
		if text == "" {
			text = DefaultSimulationText
		}
		return d.pipeline.ProcessText(text), nil

	default:
		return message.Result{}, fmt.Errorf("%w: unsupported command type %q", ErrInvalidMessage, msg.Type)
	}
}
