package clicks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaionaro-go/stereolag/pkg/audio"
)

// testDetector uses a 1kHz sample rate so milliseconds map 1:1 to samples.
func testDetector() *Detector {
	return &Detector{
		Threshold:     0.2,
		PeakWindow:    30 * time.Millisecond,
		SegmentMargin: 10 * time.Millisecond,
	}
}

func stereoWithSpikes(length int, spikes map[int]float64) *audio.Buffer {
	ch0 := make([]float64, length)
	ch1 := make([]float64, length)
	for idx, amp := range spikes {
		ch0[idx] = amp
		ch1[idx] = amp / 2
	}
	return audio.NewBuffer(1000, ch0, ch1)
}

func TestDetect(t *testing.T) {
	t.Run("quiet buffer yields no events", func(t *testing.T) {
		buf := stereoWithSpikes(500, nil)
		detected, err := testDetector().Detect(buf)
		require.NoError(t, err)
		assert.Empty(t, detected)
	})

	t.Run("sub-threshold content yields no events", func(t *testing.T) {
		// After normalization the peak is 1.0 and everything else is 0.1;
		// only the single peak crosses the 0.2 threshold.
		buf := stereoWithSpikes(500, map[int]float64{100: 1.0})
		for i := range buf.Channel(0) {
			if i != 100 {
				buf.Channel(0)[i] = 0.1
			}
		}
		detected, err := testDetector().Detect(buf)
		require.NoError(t, err)
		require.Len(t, detected, 1)
		assert.Equal(t, 100, detected[0].PeakIndex)
	})

	t.Run("single spike", func(t *testing.T) {
		buf := stereoWithSpikes(500, map[int]float64{100: 0.8})
		detected, err := testDetector().Detect(buf)
		require.NoError(t, err)
		require.Len(t, detected, 1)

		click := detected[0]
		assert.Equal(t, 100, click.PeakIndex)
		assert.Equal(t, 1.0, click.PeakAmplitude)
		assert.Equal(t, 20, click.Segment.Len())
		assert.Equal(t, audio.Channel(2), click.Segment.NumChannels())
	})

	t.Run("peak refinement picks the local maximum", func(t *testing.T) {
		// The crossing happens at 100, but the true peak sits at 115,
		// inside the 30ms refinement window.
		buf := stereoWithSpikes(500, map[int]float64{100: 0.5, 115: 0.9})
		detected, err := testDetector().Detect(buf)
		require.NoError(t, err)
		require.Len(t, detected, 1)
		assert.Equal(t, 115, detected[0].PeakIndex)
		assert.Equal(t, 1.0, detected[0].PeakAmplitude)
	})

	t.Run("segment clips at the buffer start", func(t *testing.T) {
		buf := stereoWithSpikes(500, map[int]float64{3: 0.9})
		detected, err := testDetector().Detect(buf)
		require.NoError(t, err)
		require.Len(t, detected, 1)
		assert.Equal(t, 3, detected[0].PeakIndex)
		assert.Equal(t, 13, detected[0].Segment.Len())
	})

	t.Run("segment clips at the buffer end", func(t *testing.T) {
		buf := stereoWithSpikes(500, map[int]float64{495: 0.9})
		detected, err := testDetector().Detect(buf)
		require.NoError(t, err)
		require.Len(t, detected, 1)
		assert.Equal(t, 15, detected[0].Segment.Len())
	})

	t.Run("two close transients stay distinct", func(t *testing.T) {
		// 30 samples apart: closer than peak window + margin (40), yet the
		// cursor jump after the first segment keeps them separate events.
		buf := stereoWithSpikes(500, map[int]float64{100: 1.0, 130: 0.9})
		detected, err := testDetector().Detect(buf)
		require.NoError(t, err)
		require.Len(t, detected, 2)
		assert.Equal(t, 100, detected[0].PeakIndex)
		assert.Equal(t, 130, detected[1].PeakIndex)
		assert.Less(t, detected[0].PeakIndex, detected[1].PeakIndex)
	})

	t.Run("same input always yields the same events", func(t *testing.T) {
		buf := stereoWithSpikes(2000, map[int]float64{100: 1.0, 500: 0.5, 900: 0.8, 1500: 0.3})
		first, err := testDetector().Detect(buf)
		require.NoError(t, err)
		second, err := testDetector().Detect(buf)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("segment carries both channels", func(t *testing.T) {
		buf := stereoWithSpikes(500, map[int]float64{100: 0.8})
		detected, err := testDetector().Detect(buf)
		require.NoError(t, err)
		require.Len(t, detected, 1)
		// Segment spans [90, 110); the spike is at local index 10.
		assert.Equal(t, 0.8, detected[0].Segment.Channel(0)[10])
		assert.Equal(t, 0.4, detected[0].Segment.Channel(1)[10])
	})

	t.Run("mono input", func(t *testing.T) {
		buf := audio.NewBuffer(1000, make([]float64, 100))
		_, err := testDetector().Detect(buf)
		var stereoErr audio.NotStereoError
		assert.ErrorAs(t, err, &stereoErr)
	})
}
