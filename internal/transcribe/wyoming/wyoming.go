// Package wyoming implements transcribe.Transcriber using a Wyoming protocol
// speech-to-text server such as wyoming-faster-whisper (TCP port 10300).
//
// One connection is opened per command:
//
//	-> transcribe {language}
//	-> audio-start {rate, width, channels}
//	-> audio-chunk* (PCM payload)
//	-> audio-stop
//	<- transcript {text}
package wyoming

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/nadzzz/dictado/internal/config"
	"github.com/nadzzz/dictado/internal/transcribe"
)

const (
	dialTimeout     = 10 * time.Second
	fallbackTimeout = 30 * time.Second

	// samplesPerChunk matches the chunking of Wyoming satellites.
	samplesPerChunk = 1024
)

// Transcriber speaks the Wyoming ASR exchange.
type Transcriber struct {
	endpoint string // host:port
}

// New creates a Wyoming transcriber from config.
func New(cfg config.WyomingConfig) *Transcriber {
	ep := strings.TrimPrefix(cfg.Endpoint, "tcp://")
	return &Transcriber{endpoint: ep}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "wyoming" }

// Transcribe streams audio to the server and waits for the transcript.
// WAV input is unwrapped; other content is sent as 16 kHz 16-bit mono PCM.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType string, opts transcribe.Opts) (*transcribe.Result, error) {
	if len(audio) == 0 {
		return nil, transcribe.ErrEmptyAudio
	}
	if t.endpoint == "" {
		return nil, fmt.Errorf("no wyoming endpoint configured")
	}

	pcm, format, err := DecodePCM(audio)
	if err != nil {
		return nil, err
	}
	slog.Debug("wyoming transcribe", "endpoint", t.endpoint, "content_type", contentType,
		"pcm_bytes", len(pcm), "rate", format.Rate, "width", format.Width, "channels", format.Channels)

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to wyoming server: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(fallbackTimeout))
	}

	// Unblock reads when the caller gives up.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	w := bufio.NewWriter(conn)
	if err := sendAudio(w, pcm, format, opts.Language); err != nil {
		return nil, fmt.Errorf("sending audio: %w", err)
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("sending audio: %w", err)
	}

	r := bufio.NewReader(conn)
	for {
		evt, _, err := ReadEvent(r)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("reading wyoming event: %w", err)
		}

		switch evt.Type {
		case eventTranscript:
			text, _ := evt.Data["text"].(string)
			lang, _ := evt.Data["language"].(string)
			if lang == "" {
				lang = opts.Language
			}
			text = strings.TrimSpace(text)
			slog.Debug("wyoming transcription complete", "text_length", len(text))
			return &transcribe.Result{Text: text, Language: lang}, nil

		case eventError:
			msg := "unknown error"
			if text, ok := evt.Data["text"].(string); ok {
				msg = text
			}
			return nil, fmt.Errorf("wyoming error: %s", msg)

		default:
			slog.Debug("wyoming event ignored", "type", evt.Type)
		}
	}
}

// Close is a no-op; connections are per-request.
func (t *Transcriber) Close() error { return nil }

func sendAudio(w *bufio.Writer, pcm []byte, format Format, language string) error {
	transcribeData := map[string]any{}
	if language != "" {
		transcribeData["language"] = language
	}
	if err := WriteEvent(w, Event{Type: eventTranscribe, Data: transcribeData}, nil); err != nil {
		return err
	}
	if err := WriteEvent(w, Event{Type: eventAudioStart, Data: audioFormat(format)}, nil); err != nil {
		return err
	}

	chunkBytes := samplesPerChunk * format.Width * format.Channels
	if chunkBytes <= 0 {
		chunkBytes = samplesPerChunk * 2
	}
	for start := 0; start < len(pcm); start += chunkBytes {
		end := min(start+chunkBytes, len(pcm))
		if err := WriteEvent(w, Event{Type: eventAudioChunk, Data: audioFormat(format)}, pcm[start:end]); err != nil {
			return err
		}
	}

	return WriteEvent(w, Event{Type: eventAudioStop}, nil)
}
