package wyoming

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/dictado/internal/config"
	"github.com/nadzzz/dictado/internal/transcribe"
)

func TestEventRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEvent(&buf, Event{Type: eventAudioChunk, Data: map[string]any{"rate": 16000}}, []byte{1, 2, 3}))
	require.NoError(t, WriteEvent(&buf, Event{Type: eventAudioStop}, nil))

	r := bufio.NewReader(&buf)
	evt, payload, err := ReadEvent(r)
	require.NoError(t, err)
	assert.Equal(t, eventAudioChunk, evt.Type)
	assert.Equal(t, float64(16000), evt.Data["rate"])
	assert.Equal(t, []byte{1, 2, 3}, payload)

	evt, payload, err = ReadEvent(r)
	require.NoError(t, err)
	assert.Equal(t, eventAudioStop, evt.Type)
	assert.Nil(t, payload)
}

func TestReadEventRejectsBadHeader(t *testing.T) {
	for _, header := range []string{
		"garbage\n", "1\n", "-1 0\n", "10 x\n",
		"10 9223372036854775807\n",
		"10 16777217\n",
	} {
		_, _, err := ReadEvent(bufio.NewReader(bytes.NewBufferString(header)))
		assert.Error(t, err, header)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	pcm := make([]byte, 3200)
	for i := range pcm {
		pcm[i] = byte(i)
	}
	format := Format{Rate: 22050, Width: 2, Channels: 1}

	got, gotFormat, err := DecodePCM(EncodeWAV(pcm, format))
	require.NoError(t, err)
	assert.Equal(t, format, gotFormat)
	assert.Equal(t, pcm, got)
}

func TestDecodePCMRaw(t *testing.T) {
	raw := []byte{0, 1, 2, 3}
	got, format, err := DecodePCM(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
	assert.Equal(t, DefaultFormat, format)
}

func TestDecodePCMRejectsCompressed(t *testing.T) {
	wav := EncodeWAV([]byte{0, 0}, DefaultFormat)
	binary.LittleEndian.PutUint16(wav[20:22], 3) // IEEE float

	_, _, err := DecodePCM(wav)
	require.ErrorIs(t, err, ErrUnsupportedWAV)

	// Header only, no data chunk.
	_, _, err = DecodePCM(EncodeWAV(nil, DefaultFormat)[:36])
	require.ErrorIs(t, err, ErrUnsupportedWAV)
}

// fakeServer accepts one connection, collects the client's events until
// audio-stop and answers with reply.
func fakeServer(t *testing.T, reply Event) (string, <-chan []Event, <-chan []byte) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { lis.Close() })

	events := make(chan []Event, 1)
	audio := make(chan []byte, 1)
	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		var (
			got []Event
			pcm []byte
		)
		r := bufio.NewReader(conn)
		for {
			evt, payload, err := ReadEvent(r)
			if err != nil {
				return
			}
			got = append(got, *evt)
			pcm = append(pcm, payload...)
			if evt.Type == eventAudioStop {
				break
			}
		}
		events <- got
		audio <- pcm
		_ = WriteEvent(conn, Event{Type: "info"}, nil)
		_ = WriteEvent(conn, reply, nil)
	}()
	return lis.Addr().String(), events, audio
}

func TestTranscribe(t *testing.T) {
	addr, events, audio := fakeServer(t, Event{Type: eventTranscript, Data: map[string]any{"text": " pagar la luz mañana "}})

	pcm := make([]byte, 5000)
	tr := New(config.WyomingConfig{Endpoint: "tcp://" + addr})
	assert.Equal(t, "wyoming", tr.Name())

	res, err := tr.Transcribe(context.Background(), EncodeWAV(pcm, DefaultFormat), "audio/wav", transcribe.Opts{Language: "es"})
	require.NoError(t, err)
	assert.Equal(t, "pagar la luz mañana", res.Text)
	assert.Equal(t, "es", res.Language)

	got := <-events
	require.Len(t, got, 6) // transcribe, audio-start, 3 chunks, audio-stop
	assert.Equal(t, eventTranscribe, got[0].Type)
	assert.Equal(t, "es", got[0].Data["language"])
	assert.Equal(t, eventAudioStart, got[1].Type)
	assert.Equal(t, float64(16000), got[1].Data["rate"])
	for _, e := range got[2:5] {
		assert.Equal(t, eventAudioChunk, e.Type)
	}
	assert.Equal(t, eventAudioStop, got[5].Type)
	assert.Equal(t, pcm, <-audio)
}

func TestTranscribeServerError(t *testing.T) {
	addr, _, _ := fakeServer(t, Event{Type: eventError, Data: map[string]any{"text": "model crashed"}})

	tr := New(config.WyomingConfig{Endpoint: addr})
	_, err := tr.Transcribe(context.Background(), []byte{0, 0, 0, 0}, "audio/pcm", transcribe.Opts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")
}

func TestTranscribeEmpty(t *testing.T) {
	tr := New(config.WyomingConfig{Endpoint: "127.0.0.1:1"})
	_, err := tr.Transcribe(context.Background(), nil, "audio/wav", transcribe.Opts{})
	require.ErrorIs(t, err, transcribe.ErrEmptyAudio)
}
