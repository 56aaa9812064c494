package wyoming

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Event types used by the ASR exchange.
const (
	eventTranscribe = "transcribe"
	eventAudioStart = "audio-start"
	eventAudioChunk = "audio-chunk"
	eventAudioStop  = "audio-stop"
	eventTranscript = "transcript"
	eventError      = "error"
)

// maxEventJSON bounds the header of one event.
const maxEventJSON = 1 << 20

// maxEventPayload bounds the binary payload of one event.
const maxEventPayload = 16 << 20

// Event is one Wyoming protocol message.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// WriteEvent sends an event and its optional payload.
//
// Wire format:
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)
func WriteEvent(w io.Writer, evt Event, payload []byte) error {
	jsonBytes, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	if _, err := fmt.Fprintf(w, "%d %d\n", len(jsonBytes), len(payload)); err != nil {
		return err
	}
	if _, err := w.Write(jsonBytes); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// ReadEvent reads one event and its payload.
func ReadEvent(r *bufio.Reader) (*Event, []byte, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	parts := strings.Fields(header)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid wyoming header: %q", strings.TrimSpace(header))
	}
	jsonLen, err := strconv.Atoi(parts[0])
	if err != nil || jsonLen < 0 || jsonLen > maxEventJSON {
		return nil, nil, fmt.Errorf("invalid json_length %q", parts[0])
	}
	payloadLen, err := strconv.Atoi(parts[1])
	if err != nil || payloadLen < 0 || payloadLen > maxEventPayload {
		return nil, nil, fmt.Errorf("invalid payload_length %q", parts[1])
	}

	jsonBuf := make([]byte, jsonLen+1) // +1 for the \n
	if _, err := io.ReadFull(r, jsonBuf); err != nil {
		return nil, nil, fmt.Errorf("reading json: %w", err)
	}

	var evt Event
	if err := json.Unmarshal(jsonBuf[:jsonLen], &evt); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("reading payload: %w", err)
		}
	}
	return &evt, payload, nil
}

func audioFormat(f Format) map[string]any {
	return map[string]any{
		"rate":     f.Rate,
		"width":    f.Width,
		"channels": f.Channels,
	}
}
