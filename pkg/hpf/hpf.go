// Package hpf applies a zero-phase Butterworth high-pass filter to an
// already-aligned buffer. The filter runs forward and then backward over
// each channel, so the net group delay is zero and the sample alignment
// established by the realigner is preserved exactly.
package hpf

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design/pass"

	"github.com/xaionaro-go/stereolag/pkg/audio"
)

const (
	// DefaultCutoffHz keeps only the ultrasonic band the click rig emits in;
	// everything audible is treated as background.
	DefaultCutoffHz = 20000

	DefaultOrder = 5
)

// HighPass filters every channel of the buffer independently with a
// Butterworth high-pass of the given cutoff and order, forward-backward.
// The output has the same channel count, sample rate and length as the
// input. The cutoff must lie strictly below the Nyquist frequency.
func HighPass(buf *audio.Buffer, cutoffHz float64, order int) (*audio.Buffer, error) {
	nyquist := float64(buf.SampleRate) / 2
	if cutoffHz <= 0 || cutoffHz >= nyquist {
		return nil, audio.InvalidCutoffError{CutoffHz: cutoffHz, SampleRate: buf.SampleRate}
	}
	if order <= 0 {
		order = DefaultOrder
	}

	coeffs := pass.ButterworthHP(cutoffHz, order, float64(buf.SampleRate))

	out := buf.Clone()
	for _, ch := range out.Samples {
		filtfilt(coeffs, ch)
	}
	return out, nil
}

// filtfilt runs the cascade over the samples forward, then over the reversed
// samples with a fresh delay line, then restores the original order. Each
// pass starts from zero state.
func filtfilt(coeffs []biquad.Coefficients, samples []float64) {
	biquad.NewChain(coeffs).ProcessBlock(samples)
	reverse(samples)
	biquad.NewChain(coeffs).ProcessBlock(samples)
	reverse(samples)
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
