package audio

type SampleRate uint32

type Channel uint16

// Buffer is a planar multi-channel chunk of samples tagged with the rate it
// was captured at. Transforms never modify a Buffer in place; they return a
// new one.
type Buffer struct {
	SampleRate SampleRate
	Samples    [][]float64
}

func NewBuffer(sampleRate SampleRate, samples ...[]float64) *Buffer {
	return &Buffer{
		SampleRate: sampleRate,
		Samples:    samples,
	}
}

func (b *Buffer) NumChannels() Channel {
	return Channel(len(b.Samples))
}

// Len returns the per-channel sample count (the length of the shortest
// channel, if they ever diverge).
func (b *Buffer) Len() int {
	if len(b.Samples) == 0 {
		return 0
	}
	l := len(b.Samples[0])
	for _, ch := range b.Samples[1:] {
		if len(ch) < l {
			l = len(ch)
		}
	}
	return l
}

func (b *Buffer) Channel(idx Channel) []float64 {
	return b.Samples[idx]
}

// RequireStereo returns a NotStereoError unless the buffer has exactly
// two channels.
func (b *Buffer) RequireStereo() error {
	if b.NumChannels() != 2 {
		return NotStereoError{Channels: int(b.NumChannels())}
	}
	return nil
}

// Slice returns a new buffer referencing samples [start:end) of every
// channel. It does not copy; callers that mutate must Clone first.
func (b *Buffer) Slice(start, end int) *Buffer {
	samples := make([][]float64, len(b.Samples))
	for i, ch := range b.Samples {
		samples[i] = ch[start:end]
	}
	return &Buffer{
		SampleRate: b.SampleRate,
		Samples:    samples,
	}
}

func (b *Buffer) Clone() *Buffer {
	samples := make([][]float64, len(b.Samples))
	for i, ch := range b.Samples {
		samples[i] = append([]float64(nil), ch...)
	}
	return &Buffer{
		SampleRate: b.SampleRate,
		Samples:    samples,
	}
}
