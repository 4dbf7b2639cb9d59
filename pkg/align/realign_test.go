package align

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaionaro-go/stereolag/pkg/audio"
	"github.com/xaionaro-go/stereolag/pkg/dsp"
)

// delayedStereo builds a stereo buffer where channel 0 carries base delayed
// by `delay` samples and channel 1 carries base itself.
func delayedStereo(sampleRate audio.SampleRate, base []float64, delay int) *audio.Buffer {
	ch0 := make([]float64, len(base))
	copy(ch0[delay:], base[:len(base)-delay])
	ch1 := append([]float64(nil), base...)
	return audio.NewBuffer(sampleRate, ch0, ch1)
}

func burstSignal(length, burstAt, burstLen int) []float64 {
	s := make([]float64, length)
	for i := 0; i < burstLen; i++ {
		if i%2 == 0 {
			s[burstAt+i] = 0.8
		} else {
			s[burstAt+i] = -0.8
		}
	}
	return s
}

func TestRealign(t *testing.T) {
	t.Run("zero lag returns the input unchanged", func(t *testing.T) {
		buf := audio.NewBuffer(1000, make([]float64, 10), make([]float64, 10))
		out, err := Realign(buf, 0)
		require.NoError(t, err)
		assert.Same(t, buf, out)
	})

	t.Run("output length shrinks by the lag magnitude", func(t *testing.T) {
		buf := audio.NewBuffer(1000, make([]float64, 100), make([]float64, 100))
		for _, lag := range []int{7, -7} {
			out, err := Realign(buf, lag)
			require.NoError(t, err)
			assert.Equal(t, 93, out.Len())
			assert.Equal(t, audio.Channel(2), out.NumChannels())
			assert.Equal(t, buf.SampleRate, out.SampleRate)
		}
	})

	t.Run("realignment cancels a known delay", func(t *testing.T) {
		base := burstSignal(1000, 300, 64)
		buf := delayedStereo(44100, base, 50)

		lag, err := dsp.EstimateOffset(buf.Channel(0), buf.Channel(1))
		require.NoError(t, err)
		require.Equal(t, 50, lag)

		out, err := Realign(buf, lag)
		require.NoError(t, err)
		assert.Equal(t, 950, out.Len())

		residual, err := dsp.EstimateOffset(out.Channel(0), out.Channel(1))
		require.NoError(t, err)
		assert.Equal(t, 0, residual)
	})

	t.Run("lag too large", func(t *testing.T) {
		buf := audio.NewBuffer(1000, make([]float64, 10), make([]float64, 10))
		for _, lag := range []int{10, -10, 11} {
			_, err := Realign(buf, lag)
			var lengthErr audio.InsufficientLengthError
			assert.ErrorAs(t, err, &lengthErr)
		}
	})

	t.Run("mono input", func(t *testing.T) {
		buf := audio.NewBuffer(1000, make([]float64, 10))
		_, err := Realign(buf, 1)
		var stereoErr audio.NotStereoError
		assert.ErrorAs(t, err, &stereoErr)
	})
}

func TestEstimateSyncOffset(t *testing.T) {
	t.Run("estimates the lag from the leading window only", func(t *testing.T) {
		// The delayed burst sits inside the first 100ms; the payload later in
		// the buffer is deliberately misleading and must be ignored.
		base := burstSignal(44100, 1000, 64)
		buf := delayedStereo(44100, base, 50)
		buf.Channel(0)[20000] = 1.0

		lag, err := EstimateSyncOffset(buf, 100*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 50, lag)
	})

	t.Run("buffer shorter than the sync window", func(t *testing.T) {
		buf := audio.NewBuffer(44100, make([]float64, 100), make([]float64, 100))
		_, err := EstimateSyncOffset(buf, 100*time.Millisecond)
		var lengthErr audio.InsufficientLengthError
		assert.ErrorAs(t, err, &lengthErr)
	})

	t.Run("non-positive window", func(t *testing.T) {
		buf := audio.NewBuffer(44100, make([]float64, 100), make([]float64, 100))
		_, err := EstimateSyncOffset(buf, 0)
		assert.Error(t, err)
	})
}

func TestTrimHead(t *testing.T) {
	buf := audio.NewBuffer(1000, []float64{1, 2, 3, 4}, []float64{5, 6, 7, 8})

	out, err := TrimHead(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, out.Channel(0))
	assert.Equal(t, []float64{7, 8}, out.Channel(1))

	_, err = TrimHead(buf, 5)
	assert.Error(t, err)

	same, err := TrimHead(buf, 0)
	require.NoError(t, err)
	assert.Same(t, buf, same)
}
