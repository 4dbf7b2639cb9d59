package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/xaionaro-go/stereolag/pkg/audio"
)

// WriteFile encodes a buffer as a 16-bit PCM WAV file. The file appears
// atomically: it is written to a temporary sibling first and renamed into
// place, so readers never observe a partially written output.
func WriteFile(path string, buf *audio.Buffer) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("unable to create '%s': %w", tmpPath, err)
	}
	if err := Encode(f, buf); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("unable to encode '%s': %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("unable to close '%s': %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("unable to rename '%s' to '%s': %w", tmpPath, path, err)
	}
	return nil
}

// Encode writes a buffer as a RIFF/WAVE stream with 16-bit PCM payload.
func Encode(w io.Writer, buf *audio.Buffer) error {
	channels := buf.NumChannels()
	if channels == 0 {
		return fmt.Errorf("cannot encode a buffer with no channels")
	}
	if buf.SampleRate == 0 {
		return fmt.Errorf("cannot encode a buffer without a sample rate")
	}

	data := audio.EncodeS16LE(buf)

	blockAlign := uint16(channels) * bitsPerSample / 8
	byteRate := uint32(buf.SampleRate) * uint32(blockAlign)

	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(data)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(buf.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(data)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("unable to write the header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("unable to write the PCM payload: %w", err)
	}
	return nil
}
