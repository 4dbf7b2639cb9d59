package dsp

import (
	"fmt"

	"github.com/xaionaro-go/stereolag/pkg/audio"
)

// EstimateOffset returns the integer sample lag that best aligns two
// equal-length signals.
//
// Sign convention (fixed across the whole repository): a positive lag means
// signal a lags signal b, i.e. the same event arrives on a `lag` samples
// later than on b. For a stereo buffer correlated as (channel 0, channel 1),
// positive lag therefore means channel 0 lags channel 1.
//
// Both inputs are peak-normalized before correlating, so a level mismatch
// between the microphones does not bias the estimate.
func EstimateOffset(a, b []float64) (int, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, audio.InvalidInputError{Reason: "cannot estimate an offset of an empty signal"}
	}
	if len(a) != len(b) {
		return 0, audio.InvalidInputError{
			Reason: fmt.Sprintf("signal lengths differ: %d != %d", len(a), len(b)),
		}
	}

	corr, err := Correlate(Normalize(a), Normalize(b))
	if err != nil {
		return 0, fmt.Errorf("unable to correlate: %w", err)
	}
	peakIdx, _ := FindPeak(corr)
	return peakIdx - len(corr)/2, nil
}
