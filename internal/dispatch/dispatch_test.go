package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/dictado/internal/message"
)

type fakePipeline struct {
	mu       sync.Mutex
	texts    []string
	audio    [][]byte
	deadline time.Time
	hasDL    bool
}

func (f *fakePipeline) ProcessText(text string) message.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return message.Result{RecognizedText: text, Action: message.ActionUnknown, Confidence: 0.6}
}

func (f *fakePipeline) ProcessAudio(ctx context.Context, audio []byte, _ string) message.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audio = append(f.audio, audio)
	f.deadline, f.hasDL = ctx.Deadline()
	return message.Result{RecognizedText: "desde audio", Action: message.ActionUnknown, Source: message.SourceAudio}
}

func TestHandleText(t *testing.T) {
	p := &fakePipeline{}
	d := New(p, 0)

	msg := &message.Message{Type: message.CommandTypeText, Text: "agregar gasto fijo 20000 en luz"}
	resp, err := d.Handle(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, message.StatusSuccess, resp.Status)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "agregar gasto fijo 20000 en luz", resp.Result.RecognizedText)
	assert.False(t, resp.ProcessedAt.IsZero())
	assert.Equal(t, []string{"agregar gasto fijo 20000 en luz"}, p.texts)

	_, perr := uuid.Parse(msg.ID)
	assert.NoError(t, perr, "dispatcher assigns a UUID")
	assert.False(t, msg.Timestamp.IsZero())
}

func TestHandleKeepsCallerID(t *testing.T) {
	d := New(&fakePipeline{}, 0)
	msg := &message.Message{ID: "fixed", Type: message.CommandTypeText, Text: "hola"}
	_, err := d.Handle(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "fixed", msg.ID)
}

func TestHandleSimulation(t *testing.T) {
	p := &fakePipeline{}
	d := New(p, 0)

	_, err := d.Handle(context.Background(), &message.Message{Type: message.CommandTypeSimulation})
	require.NoError(t, err)
	_, err = d.Handle(context.Background(), &message.Message{
		Type:           message.CommandTypeSimulation,
		SimulationText: "nueva tarea lavar el auto",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultSimulationText, "nueva tarea lavar el auto"}, p.texts)
}

func TestHandleAudioAppliesTimeout(t *testing.T) {
	p := &fakePipeline{}
	d := New(p, 5*time.Second)

	before := time.Now()
	resp, err := d.Handle(context.Background(), &message.Message{
		Type:        message.CommandTypeAudio,
		Audio:       []byte{1, 2, 3},
		ContentType: "audio/wav",
	})
	require.NoError(t, err)

	assert.Equal(t, message.StatusSuccess, resp.Status)
	assert.Equal(t, message.SourceAudio, resp.Result.Source)
	require.True(t, p.hasDL)
	assert.WithinDuration(t, before.Add(5*time.Second), p.deadline, time.Second)
}

func TestHandleAudioWithoutTimeout(t *testing.T) {
	p := &fakePipeline{}
	d := New(p, 0)

	_, err := d.Handle(context.Background(), &message.Message{Type: message.CommandTypeAudio, Audio: []byte{1}})
	require.NoError(t, err)
	assert.False(t, p.hasDL)
}

func TestHandleInvalid(t *testing.T) {
	tests := []struct {
		name    string
		msg     message.Message
		wantErr string
	}{
		{"unsupported type", message.Message{Type: "video"}, "unsupported command type"},
		{"missing type", message.Message{Text: "hola"}, "unsupported command type"},
		{"text without text", message.Message{Type: message.CommandTypeText}, "without text"},
		{"audio without audio", message.Message{Type: message.CommandTypeAudio}, "without audio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePipeline{}
			resp, err := New(p, 0).Handle(context.Background(), &tt.msg)
			require.NoError(t, err)

			assert.Equal(t, message.StatusError, resp.Status)
			assert.Nil(t, resp.Result)
			assert.Contains(t, resp.Error, tt.wantErr)
			assert.Empty(t, p.texts)
			assert.Empty(t, p.audio)
		})
	}
}
