package message

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultJSONShape(t *testing.T) {
	res := Result{
		RecognizedText: "agregar gasto variable 50000 en comida",
		Confidence:     0.95,
		Action:         ActionAddExpense,
		Details: &ExpenseDetails{
			Type:        "variable",
			Amount:      50000,
			Category:    "alimentación",
			Description: "comida",
			Date:        "2025-03-14",
			Currency:    "CLP",
		},
		ProcessedAt:      time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC),
		ProcessorVersion: "1.0.0",
	}

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "add_expense", raw["action"])
	assert.NotContains(t, raw, "source", "source is only set for audio")

	details := raw["details"].(map[string]any)
	assert.Equal(t, float64(50000), details["amount"])
	assert.Equal(t, "alimentación", details["category"])
}

func TestResultDecodesTypedDetails(t *testing.T) {
	payload := `{
		"recognized_text": "nueva tarea comprar pan manana",
		"confidence": 0.92,
		"action": "add_task",
		"details": {"title": "comprar pan", "priority": "media", "due_date": "2025-03-15", "completed": false},
		"processed_at": "2025-03-14T10:00:00Z",
		"processor_version": "1.0.0",
		"source": "audio"
	}`

	var res Result
	require.NoError(t, json.Unmarshal([]byte(payload), &res))

	assert.Equal(t, ActionAddTask, res.Action)
	assert.Equal(t, SourceAudio, res.Source)
	d, ok := res.Details.(*TaskDetails)
	require.True(t, ok)
	assert.Equal(t, "comprar pan", d.Title)
	assert.Equal(t, ActionAddTask, ActionOf(d))
}

func TestResultDecodeRejectsUnknownAction(t *testing.T) {
	var res Result
	err := json.Unmarshal([]byte(`{"action": "launch_rocket", "details": {}}`), &res)
	require.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"action": "launch_rocket"}`), &res))
	assert.Nil(t, res.Details)
}

func TestResponseEnvelope(t *testing.T) {
	resp := Response{Status: StatusError, Error: "unsupported command type", ProcessedAt: time.Now()}
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "error", raw["status"])
	assert.NotContains(t, raw, "result")
	assert.Contains(t, raw, "processed_at")
}

func TestMessageAudioIsBase64(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"type":"audio","audio":"AQID","content_type":"audio/wav"}`), &msg))
	assert.Equal(t, []byte{1, 2, 3}, msg.Audio)
	assert.True(t, msg.HasAudio())
	assert.Equal(t, CommandTypeAudio, msg.Type)
}
