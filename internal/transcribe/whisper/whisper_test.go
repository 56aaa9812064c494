package whisper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/dictado/internal/config"
	"github.com/nadzzz/dictado/internal/transcribe"
)

func TestTranscribeOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "es", r.FormValue("language"))
		assert.Equal(t, "gasto, ingreso", r.FormValue("prompt"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "audio.ogg", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, []byte("OggS-audio"), data)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"text": "  agregar gasto 5000 en pan ", "language": "es"})
	}))
	defer srv.Close()

	tr := New(config.WhisperConfig{Endpoint: srv.URL, Model: "whisper-1", APIKey: "sk-test"}, srv.Client())
	assert.Equal(t, "whisper", tr.Name())

	res, err := tr.Transcribe(context.Background(), []byte("OggS-audio"), "audio/ogg",
		transcribe.Opts{Language: "es", Prompt: "gasto, ingreso"})
	require.NoError(t, err)
	assert.Equal(t, "agregar gasto 5000 en pan", res.Text)
	assert.Equal(t, "es", res.Language)
	assert.NoError(t, tr.Close())
}

func TestTranscribeASR(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "transcribe", q.Get("task"))
		assert.Equal(t, "json", q.Get("output"))
		assert.Equal(t, "es", q.Get("language"))
		assert.Equal(t, "true", q.Get("vad_filter"))
		assert.Empty(t, r.Header.Get("Authorization"))

		f, hdr, err := r.FormFile("audio_file")
		require.NoError(t, err)
		f.Close()
		assert.Equal(t, "audio.wav", hdr.Filename)

		_, _ = io.WriteString(w, `{"text":"nueva tarea comprar pan","language":"es"}`)
	}))
	defer srv.Close()

	tr := New(config.WhisperConfig{Endpoint: srv.URL + "/asr", Type: TypeASR, VADFilter: true}, nil)
	res, err := tr.Transcribe(context.Background(), []byte("RIFF"), "audio/wav", transcribe.Opts{Language: "es"})
	require.NoError(t, err)
	assert.Equal(t, "nueva tarea comprar pan", res.Text)
}

func TestTranscribeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := New(config.WhisperConfig{Endpoint: srv.URL}, srv.Client())

	_, err := tr.Transcribe(context.Background(), nil, "audio/wav", transcribe.Opts{})
	require.ErrorIs(t, err, transcribe.ErrEmptyAudio)

	_, err = tr.Transcribe(context.Background(), []byte{1, 2}, "audio/wav", transcribe.Opts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestTranscribeHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := New(config.WhisperConfig{Endpoint: srv.URL}, srv.Client())
	_, err := tr.Transcribe(ctx, []byte{1}, "audio/wav", transcribe.Opts{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtFromContentType(t *testing.T) {
	tests := map[string]string{
		"audio/wav":              ".wav",
		"audio/ogg; codecs=opus": ".ogg",
		"audio/mpeg":             ".mp3",
		"audio/flac":             ".flac",
		"audio/webm":             ".webm",
		"":                       ".wav",
	}
	for ct, want := range tests {
		assert.Equal(t, want, extFromContentType(ct), ct)
	}
}
