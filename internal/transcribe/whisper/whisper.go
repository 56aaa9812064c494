// Package whisper implements transcribe.Transcriber against a self-hosted
// Whisper-compatible HTTP endpoint.
//
// Two flavors are supported:
//   - "openai": OpenAI-compatible API (whisper.cpp server, faster-whisper, speaches)
//   - "asr":    ahmetoner/whisper-asr-webservice (POST /asr with query params)
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/nadzzz/dictado/internal/config"
	"github.com/nadzzz/dictado/internal/transcribe"
)

// Flavors of the HTTP API.
const (
	TypeOpenAI = "openai"
	TypeASR    = "asr"
)

// Transcriber posts audio to a Whisper endpoint.
type Transcriber struct {
	endpoint  string
	flavor    string
	model     string
	vadFilter bool
	apiKey    string
	client    *http.Client
}

// New creates a Whisper transcriber from config. A nil client uses a default
// one; request deadlines come from the caller's context.
func New(cfg config.WhisperConfig, client *http.Client) *Transcriber {
	flavor := cfg.Type
	if flavor == "" {
		flavor = TypeOpenAI
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Transcriber{
		endpoint:  cfg.Endpoint,
		flavor:    flavor,
		model:     cfg.Model,
		vadFilter: cfg.VADFilter,
		apiKey:    cfg.APIKey,
		client:    client,
	}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "whisper" }

// Transcribe sends audio to the configured endpoint.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType string, opts transcribe.Opts) (*transcribe.Result, error) {
	if len(audio) == 0 {
		return nil, transcribe.ErrEmptyAudio
	}

	var (
		req *http.Request
		err error
	)
	switch t.flavor {
	case TypeASR:
		req, err = t.asrRequest(ctx, audio, contentType, opts)
	default:
		req, err = t.openAIRequest(ctx, audio, contentType, opts)
	}
	if err != nil {
		return nil, err
	}
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper %s request: %w", t.flavor, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("whisper %s transcription failed (status %d): %s", t.flavor, resp.StatusCode, respBody)
	}

	// Both flavors answer {"text": "...", "language": "..."} for verbose_json.
	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}

	text := strings.TrimSpace(result.Text)
	slog.Debug("whisper transcription complete", "flavor", t.flavor, "text_length", len(text), "language", result.Language)
	return &transcribe.Result{Text: text, Language: result.Language}, nil
}

// asrRequest builds a whisper-asr-webservice request.
// API: POST /asr?task=transcribe&language=es&output=json&vad_filter=true
// Body: multipart/form-data with field "audio_file"
func (t *Transcriber) asrRequest(ctx context.Context, audio []byte, contentType string, opts transcribe.Opts) (*http.Request, error) {
	body, formType, err := multipartAudio("audio_file", audio, contentType, nil)
	if err != nil {
		return nil, err
	}

	q := make(url.Values)
	q.Set("task", "transcribe")
	q.Set("output", "json")
	q.Set("encode", "true")
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.Prompt != "" {
		q.Set("initial_prompt", opts.Prompt)
	}
	if t.vadFilter {
		q.Set("vad_filter", "true")
	}

	reqURL := t.endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", formType)
	slog.Debug("whisper-asr request", "url", reqURL)
	return req, nil
}

// openAIRequest builds an OpenAI-compatible /v1/audio/transcriptions request.
func (t *Transcriber) openAIRequest(ctx context.Context, audio []byte, contentType string, opts transcribe.Opts) (*http.Request, error) {
	fields := map[string]string{"response_format": "verbose_json"}
	if t.model != "" {
		fields["model"] = t.model
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	if opts.Prompt != "" {
		fields["prompt"] = opts.Prompt
	}

	body, formType, err := multipartAudio("file", audio, contentType, fields)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", formType)
	return req, nil
}

// Close is a no-op; connections belong to the http.Client.
func (t *Transcriber) Close() error { return nil }

func multipartAudio(field string, audio []byte, contentType string, fields map[string]string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(field, "audio"+extFromContentType(contentType))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("writing audio: %w", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	default:
		return ".wav"
	}
}
