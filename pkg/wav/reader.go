// Package wav reads and writes RIFF/WAVE files containing 16-bit signed
// little-endian PCM, the only on-disk format the measurement rigs produce.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/xaionaro-go/stereolag/pkg/audio"
)

const (
	formatPCM = 1

	bitsPerSample = 16
)

// ReadFile decodes a 16-bit PCM WAV file into a planar buffer.
func ReadFile(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	buf, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decode '%s': %w", path, err)
	}
	return buf, nil
}

// Decode parses a RIFF/WAVE stream. Only format tag 1 (integer PCM) with
// 16 bits per sample is supported.
func Decode(r io.Reader) (*audio.Buffer, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("unable to read the RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var (
		sampleRate audio.SampleRate
		channels   audio.Channel
		haveFmt    bool
	)

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("reached the end of the stream without a 'data' chunk")
			}
			return nil, fmt.Errorf("unable to read a chunk header: %w", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			fmtChunk := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, fmtChunk); err != nil {
				return nil, fmt.Errorf("unable to read the 'fmt ' chunk: %w", err)
			}
			if len(fmtChunk) < 16 {
				return nil, fmt.Errorf("'fmt ' chunk is too short: %d bytes", len(fmtChunk))
			}
			formatTag := binary.LittleEndian.Uint16(fmtChunk[0:2])
			if formatTag != formatPCM {
				return nil, fmt.Errorf("unsupported format tag %d (only integer PCM is supported)", formatTag)
			}
			channels = audio.Channel(binary.LittleEndian.Uint16(fmtChunk[2:4]))
			sampleRate = audio.SampleRate(binary.LittleEndian.Uint32(fmtChunk[4:8]))
			if bits := binary.LittleEndian.Uint16(fmtChunk[14:16]); bits != bitsPerSample {
				return nil, fmt.Errorf("unsupported bit depth %d (only %d-bit PCM is supported)", bits, bitsPerSample)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("'data' chunk appeared before the 'fmt ' chunk")
			}
			data := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("unable to read the 'data' chunk: %w", err)
			}
			buf, err := audio.DecodeS16LE(sampleRate, channels, data)
			if err != nil {
				return nil, fmt.Errorf("unable to decode the PCM payload: %w", err)
			}
			return buf, nil
		default:
			// Skip unknown chunks (LIST, fact, ...), honoring word alignment.
			skip := int64(chunkSize)
			if skip%2 != 0 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("unable to skip the '%s' chunk: %w", chunkID, err)
			}
		}
	}
}
