package wyoming

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnsupportedWAV is returned for WAV files that are not plain PCM.
var ErrUnsupportedWAV = errors.New("unsupported wav file")

// Format describes raw PCM audio.
type Format struct {
	Rate     int // samples per second
	Width    int // bytes per sample
	Channels int
}

// DefaultFormat is assumed for headerless audio: 16 kHz, 16-bit, mono.
var DefaultFormat = Format{Rate: 16000, Width: 2, Channels: 1}

// DecodePCM returns the PCM samples of audio. RIFF/WAVE input is unwrapped;
// anything else is taken as raw PCM in DefaultFormat.
func DecodePCM(audio []byte) ([]byte, Format, error) {
	if len(audio) < 12 || !bytes.Equal(audio[0:4], []byte("RIFF")) || !bytes.Equal(audio[8:12], []byte("WAVE")) {
		return audio, DefaultFormat, nil
	}

	var (
		format  Format
		haveFmt bool
	)
	rest := audio[12:]
	for len(rest) >= 8 {
		id := string(rest[0:4])
		size := int(binary.LittleEndian.Uint32(rest[4:8]))
		rest = rest[8:]
		if size > len(rest) {
			// Streamed WAVs may carry a placeholder size on the data chunk.
			size = len(rest)
		}
		chunk := rest[:size]

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, Format{}, fmt.Errorf("%w: short fmt chunk", ErrUnsupportedWAV)
			}
			if encoding := binary.LittleEndian.Uint16(chunk[0:2]); encoding != 1 {
				return nil, Format{}, fmt.Errorf("%w: encoding %d is not PCM", ErrUnsupportedWAV, encoding)
			}
			format = Format{
				Channels: int(binary.LittleEndian.Uint16(chunk[2:4])),
				Rate:     int(binary.LittleEndian.Uint32(chunk[4:8])),
				Width:    int(binary.LittleEndian.Uint16(chunk[14:16])) / 8,
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, Format{}, fmt.Errorf("%w: data chunk before fmt chunk", ErrUnsupportedWAV)
			}
			return chunk, format, nil
		}

		// Chunks are word aligned.
		if size%2 == 1 && size < len(rest) {
			size++
		}
		rest = rest[size:]
	}
	return nil, Format{}, fmt.Errorf("%w: no data chunk", ErrUnsupportedWAV)
}

// EncodeWAV wraps raw PCM data in a WAV container.
func EncodeWAV(pcm []byte, f Format) []byte {
	dataLen := len(pcm)

	buf := &bytes.Buffer{}
	buf.Grow(44 + dataLen)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.Channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(f.Rate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(f.Rate*f.Channels*f.Width))
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.Channels*f.Width))
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.Width*8))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(pcm)

	return buf.Bytes()
}
