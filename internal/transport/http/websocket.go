package http

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/net/websocket"

	"github.com/nadzzz/dictado/internal/message"
	"github.com/nadzzz/dictado/internal/transport"
)

// WebSocket event names.
const (
	EventConnectionStatus = "connection_status"
	EventVoiceCommand     = "voice_command"
	EventVoiceResponse    = "voice_response"
	EventTestConnection   = "test_connection"
	EventTestResponse     = "test_response"
	EventError            = "error"
)

var errOriginNotAllowed = errors.New("origin not allowed")

// Frame is one WebSocket message in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ConnectionStatus is sent once, right after the handshake.
type ConnectionStatus struct {
	Status         string    `json:"status"`
	ClientID       string    `json:"client_id"`
	ServerTime     time.Time `json:"server_time"`
	VoiceAvailable bool      `json:"voice_available"`
}

// ConnectionTest answers test_connection.
type ConnectionTest struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type errorEvent struct {
	Error string `json:"error"`
}

// registry tracks open WebSocket clients by ULID.
type registry struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	clients map[string]time.Time
}

func newRegistry() *registry {
	return &registry{
		entropy: ulid.Monotonic(rand.Reader, 0),
		clients: make(map[string]time.Time),
	}
}

func (r *registry) add(now time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(now), r.entropy).String()
	r.clients[id] = now
	return id
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (t *Transport) websocketServer(handler transport.Handler) http.Handler {
	return websocket.Server{
		Handshake: func(cfg *websocket.Config, r *http.Request) error {
			origin := r.Header.Get("Origin")
			if !t.originAllowed(origin) {
				slog.Warn("websocket origin rejected", "origin", origin)
				return errOriginNotAllowed
			}
			return nil
		},
		Handler: func(ws *websocket.Conn) {
			t.serveClient(ws, handler)
		},
	}
}

// serveClient runs one WebSocket session. Frames are handled in order; a bad
// frame gets an error reply and the session continues.
func (t *Transport) serveClient(ws *websocket.Conn, handler transport.Handler) {
	defer ws.Close()

	id := t.clients.add(t.now())
	logger := slog.With("client_id", id)
	defer func() {
		t.clients.remove(id)
		t.limiter.Forget(id)
		logger.Info("websocket client disconnected", "connected_clients", t.clients.count())
	}()
	logger.Info("websocket client connected", "connected_clients", t.clients.count())

	if err := send(ws, EventConnectionStatus, ConnectionStatus{
		Status:         "connected",
		ClientID:       id,
		ServerTime:     t.now(),
		VoiceAvailable: t.info.TranscriptionAvailable,
	}); err != nil {
		logger.Warn("websocket send failed", "error", err)
		return
	}

	ctx := ws.Request().Context()
	for {
		var frame Frame
		if err := websocket.JSON.Receive(ws, &frame); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if err := send(ws, EventError, errorEvent{Error: "invalid frame: " + err.Error()}); err != nil {
					return
				}
				continue
			}
			if !errors.Is(err, io.EOF) {
				logger.Debug("websocket receive failed", "error", err)
			}
			return
		}

		var err error
		switch frame.Event {
		case EventVoiceCommand:
			err = send(ws, EventVoiceResponse, t.voiceCommand(ctx, id, frame.Data, handler))
		case EventTestConnection:
			err = send(ws, EventTestResponse, ConnectionTest{
				Status:    "ok",
				Message:   "Conexión WebSocket funcionando correctamente",
				Timestamp: t.now(),
			})
		default:
			err = send(ws, EventError, errorEvent{Error: fmt.Sprintf("unknown event %q", frame.Event)})
		}
		if err != nil {
			logger.Warn("websocket send failed", "error", err)
			return
		}
	}
}

func (t *Transport) voiceCommand(ctx context.Context, clientID string, data json.RawMessage, handler transport.Handler) *message.Response {
	fail := func(err error) *message.Response {
		return &message.Response{Status: message.StatusError, Error: err.Error(), ProcessedAt: t.now()}
	}

	if err := t.limiter.Allow(clientID); err != nil {
		return fail(err)
	}

	var msg message.Message
	if len(data) == 0 {
		return fail(errors.New("voice_command without data"))
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return fail(fmt.Errorf("invalid voice_command: %w", err))
	}
	msg.Source = clientID

	resp, err := handler(ctx, &msg)
	if err != nil {
		slog.Error("voice command failed", "client_id", clientID, "error", err)
		return fail(err)
	}
	return resp
}

func send(ws *websocket.Conn, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", event, err)
	}
	return websocket.JSON.Send(ws, Frame{Event: event, Data: data})
}
