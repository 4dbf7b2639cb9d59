package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

const s16SampleSize = 2

// DecodeS16LE converts interleaved signed 16-bit little-endian PCM into a
// planar float64 buffer scaled to [-1, 1).
func DecodeS16LE(sampleRate SampleRate, channels Channel, data []byte) (*Buffer, error) {
	if channels == 0 {
		return nil, fmt.Errorf("channels must be greater than 0: got %d", channels)
	}
	frameSize := int(channels) * s16SampleSize
	if len(data)%frameSize != 0 {
		return nil, fmt.Errorf("expected a data length that is a multiple of %d, but received %d", frameSize, len(data))
	}

	numFrames := len(data) / frameSize
	samples := make([][]float64, channels)
	for ch := range samples {
		samples[ch] = make([]float64, numFrames)
	}
	for frame := 0; frame < numFrames; frame++ {
		base := frame * frameSize
		for ch := Channel(0); ch < channels; ch++ {
			raw := int16(binary.LittleEndian.Uint16(data[base+int(ch)*s16SampleSize:]))
			samples[ch][frame] = float64(raw) / 32768
		}
	}
	return NewBuffer(sampleRate, samples...), nil
}

// EncodeS16LE converts a planar float64 buffer back to interleaved signed
// 16-bit little-endian PCM. Values outside [-1, 1) are clipped.
func EncodeS16LE(b *Buffer) []byte {
	channels := b.NumChannels()
	numFrames := b.Len()
	data := make([]byte, numFrames*int(channels)*s16SampleSize)
	for frame := 0; frame < numFrames; frame++ {
		base := frame * int(channels) * s16SampleSize
		for ch := Channel(0); ch < channels; ch++ {
			val := math.Round(b.Samples[ch][frame] * 32768)
			if val > 32767 {
				val = 32767
			}
			if val < -32768 {
				val = -32768
			}
			binary.LittleEndian.PutUint16(data[base+int(ch)*s16SampleSize:], uint16(int16(val)))
		}
	}
	return data
}
