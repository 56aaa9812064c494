// Package http implements the HTTP/WebSocket transport for dictado.
//
// This transport exposes a small REST API (status, sample commands, the
// vocabulary and one-shot command processing) and a WebSocket endpoint that
// browser front-ends keep open while the user dictates.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/dictado/internal/message"
	"github.com/nadzzz/dictado/internal/ratelimit"
	"github.com/nadzzz/dictado/internal/taxonomy"
	"github.com/nadzzz/dictado/internal/transport"
)

// SourceHeader names the sender of a raw audio upload.
const SourceHeader = "X-Dictado-Source"

// maxBody bounds request bodies (raw audio or JSON with base64 audio).
const maxBody = 25 << 20

// Info is the static service description served by the REST endpoints.
type Info struct {
	Version                string
	TranscriptionAvailable bool
	SampleCommands         []string
	Vocabulary             taxonomy.Vocabulary
}

// Options configures the transport.
type Options struct {
	// AllowedOrigins restricts CORS and WebSocket origins. Empty allows any.
	AllowedOrigins []string

	// Limiter bounds commands per client. Nil disables limiting.
	Limiter *ratelimit.Limiter

	Info Info
}

// Transport implements transport.Transport over HTTP and WebSocket.
type Transport struct {
	port           int
	allowedOrigins []string
	origins        map[string]struct{}
	limiter        *ratelimit.Limiter
	info           Info
	clients        *registry
	server         *http.Server
	now            func() time.Time
}

// New creates a new HTTP transport on the given port.
func New(port int, opts Options) *Transport {
	var origins map[string]struct{}
	if len(opts.AllowedOrigins) > 0 {
		origins = make(map[string]struct{}, len(opts.AllowedOrigins))
		for _, o := range opts.AllowedOrigins {
			origins[o] = struct{}{}
		}
	}
	return &Transport{
		port:           port,
		allowedOrigins: opts.AllowedOrigins,
		origins:        origins,
		limiter:        opts.Limiter,
		info:           opts.Info,
		clients:        newRegistry(),
		now:            time.Now,
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// ConnectedClients returns the number of open WebSocket connections.
func (t *Transport) ConnectedClients() int { return t.clients.count() }

// Handler builds the routing tree. Listen serves it; tests mount it on httptest.
func (t *Transport) Handler(handler transport.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", t.handleStatus)
	mux.HandleFunc("GET /test", t.handleTest)
	mux.HandleFunc("GET /vocabulary", t.handleVocabulary)

	mux.HandleFunc("POST /process", func(w http.ResponseWriter, r *http.Request) {
		t.handleProcess(w, r, handler)
	})

	// GET /ws: WebSocket endpoint for live dictation sessions.
	mux.Handle("GET /ws", t.websocketServer(handler))

	// Swagger UI serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return t.withCORS(mux)
}

// Listen starts the HTTP server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Handler(handler),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Status                 string            `json:"status"`
	Service                string            `json:"service"`
	Version                string            `json:"version"`
	Timestamp              time.Time         `json:"timestamp"`
	ConnectedClients       int               `json:"connected_clients"`
	TranscriptionAvailable bool              `json:"transcription_available"`
	Endpoints              map[string]string `json:"endpoints"`
}

// TestResponse is the body of GET /test.
type TestResponse struct {
	Message      string   `json:"message"`
	TestCommands []string `json:"test_commands"`
}

// handleStatus reports that the server is up.
//
// @Summary     Server status
// @Description Reports the service version, connected WebSocket clients and whether audio commands can be transcribed.
// @Tags        status
// @Produce     json
// @Success     200  {object}  StatusResponse
// @Router      / [get]
func (t *Transport) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:                 "running",
		Service:                "dictado",
		Version:                t.info.Version,
		Timestamp:              t.now(),
		ConnectedClients:       t.clients.count(),
		TranscriptionAvailable: t.info.TranscriptionAvailable,
		Endpoints: map[string]string{
			"websocket":  "/ws",
			"process":    "/process",
			"test":       "/test",
			"vocabulary": "/vocabulary",
			"docs":       "/swagger/index.html",
		},
	})
}

// handleTest lists commands a client can send to try the pipeline.
//
// @Summary     Sample commands
// @Tags        status
// @Produce     json
// @Success     200  {object}  TestResponse
// @Router      /test [get]
func (t *Transport) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TestResponse{
		Message:      "Servidor funcionando correctamente",
		TestCommands: t.info.SampleCommands,
	})
}

// handleVocabulary returns the recognized categories, priorities and dates.
//
// @Summary     Recognized vocabulary
// @Description Lists the categories, priorities, date expressions and slang numerals the interpreter understands.
// @Tags        status
// @Produce     json
// @Success     200  {object}  taxonomy.Vocabulary
// @Router      /vocabulary [get]
func (t *Transport) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, t.info.Vocabulary)
}

// handleProcess interprets a single command.
//
// @Summary     Interpret a voice or text command
// @Description Accepts a JSON message (type text, audio with base64 payload, or simulation) or raw audio bytes.
// @Description The command is interpreted into a structured action (expense, income, task, reminder).
// @Description A success envelope may still carry an "error" action when the command could not be interpreted.
// @Tags        process
// @Accept      json
// @Accept      audio/wav
// @Accept      audio/ogg
// @Produce     json
// @Param       message  body      message.Message  true  "Command (JSON). For raw audio, POST the bytes directly with the appropriate Content-Type."
// @Param       X-Dictado-Source  header  string  false  "Sender identifier (used with raw audio uploads)"
// @Success     200  {object}  message.Response  "Interpreted command"
// @Failure     400  {object}  message.Response  "Invalid request body or unsupported command"
// @Failure     429  {object}  message.Response  "Rate limit exceeded"
// @Failure     500  {object}  message.Response  "Internal processing error"
// @Router      /process [post]
func (t *Transport) handleProcess(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	if err := t.limiter.Allow(clientIP(r)); err != nil {
		t.writeError(w, http.StatusTooManyRequests, err)
		return
	}

	var msg message.Message
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	body := http.MaxBytesReader(w, r.Body, maxBody)

	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(body).Decode(&msg); err != nil {
			t.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
			return
		}
	default:
		// Treat body as raw audio.
		audio, err := io.ReadAll(body)
		if err != nil {
			t.writeError(w, http.StatusBadRequest, fmt.Errorf("reading audio: %w", err))
			return
		}
		msg.Type = message.CommandTypeAudio
		msg.Audio = audio
		msg.ContentType = r.Header.Get("Content-Type")
		msg.Source = r.Header.Get(SourceHeader)
	}
	if msg.Source == "" {
		msg.Source = clientIP(r)
	}

	resp, err := handler(r.Context(), &msg)
	if err != nil {
		slog.Error("process failed", "error", err)
		t.writeError(w, http.StatusInternalServerError, err)
		return
	}

	status := http.StatusOK
	if resp.Status == message.StatusError {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

func (t *Transport) writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, message.Response{
		Status:      message.StatusError,
		Error:       err.Error(),
		ProcessedAt: t.now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
