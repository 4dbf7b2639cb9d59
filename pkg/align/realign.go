// Package align brings the two channels of a stereo recording into time
// coincidence: it estimates the inter-channel lag from a leading sync tone
// and trims the channels so the lag becomes zero.
package align

import (
	"github.com/xaionaro-go/stereolag/pkg/audio"
)

// Realign applies an integer lag to a stereo buffer and returns a new,
// time-aligned buffer of length len-|lag|.
//
// The lag follows the repository-wide convention (see dsp.EstimateOffset):
// positive lag means channel 0 lags channel 1. Realignment therefore drops
// the first `lag` samples of channel 0 (its copy of the signal starts late)
// and the last `lag` samples of channel 1, keeping both channels the same
// length and time-coincident. A negative lag performs the mirrored trim.
// A zero lag returns the input unchanged.
func Realign(buf *audio.Buffer, lag int) (*audio.Buffer, error) {
	if err := buf.RequireStereo(); err != nil {
		return nil, err
	}
	if lag == 0 {
		return buf, nil
	}

	length := buf.Len()
	abs := lag
	if abs < 0 {
		abs = -abs
	}
	if abs >= length {
		return nil, audio.InsufficientLengthError{Required: abs + 1, Actual: length}
	}

	ch0 := buf.Channel(0)
	ch1 := buf.Channel(1)
	if lag > 0 {
		return audio.NewBuffer(buf.SampleRate, ch0[abs:length], ch1[:length-abs]), nil
	}
	return audio.NewBuffer(buf.SampleRate, ch0[:length-abs], ch1[abs:length]), nil
}
