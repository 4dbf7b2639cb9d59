package dsp

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/xaionaro-go/stereolag/pkg/audio"
)

// fftThreshold is the input length above which correlation switches from the
// direct O(N*M) loop to the FFT-based path.
const fftThreshold = 4096

// Correlate computes the full linear cross-correlation of a and b.
// The result has length len(a)+len(b)-1; output index k corresponds to
// lag k - (len(b) - 1):
//
//	c[k] = Σ a[i]·b[i-k+len(b)-1]
//
// Short inputs use the direct loop, long inputs go through the FFT.
func Correlate(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, audio.InvalidInputError{Reason: "correlation of an empty signal"}
	}
	if len(a) > fftThreshold || len(b) > fftThreshold {
		return correlateFFT(a, b), nil
	}
	return correlateDirect(a, b), nil
}

func correlateDirect(a, b []float64) []float64 {
	n := len(a)
	m := len(b)
	out := make([]float64, n+m-1)
	for k := range out {
		lag := k - (m - 1)
		lo := 0
		if lag > 0 {
			lo = lag
		}
		hi := n
		if lag+m < hi {
			hi = lag + m
		}
		var sum float64
		for i := lo; i < hi; i++ {
			sum += a[i] * b[i-lag]
		}
		out[k] = sum
	}
	return out
}

// correlateFFT computes the same linear correlation via
// IFFT(FFT(a)·conj(FFT(b))) on a zero-padded power-of-two window, then
// rearranges the circular result into linear-lag order.
func correlateFFT(a, b []float64) []float64 {
	n := len(a)
	m := len(b)
	size := 1
	for size < n+m-1 {
		size <<= 1
	}

	fa := make([]complex128, size)
	fb := make([]complex128, size)
	for i, v := range a {
		fa[i] = complex(v, 0)
	}
	for i, v := range b {
		fb[i] = complex(v, 0)
	}

	ffa := fft.FFT(fa)
	ffb := fft.FFT(fb)
	for i := range ffa {
		ffa[i] *= cmplx.Conj(ffb[i])
	}
	timeDomain := fft.IFFT(ffa)

	// Positive lags sit at the head of the circular result, negative lags
	// wrap around to its tail.
	out := make([]float64, n+m-1)
	for i := 0; i < n; i++ {
		out[m-1+i] = real(timeDomain[i])
	}
	for i := 0; i < m-1; i++ {
		out[i] = real(timeDomain[size-m+1+i])
	}
	return out
}

// FindPeak returns the index and value of the maximum of a correlation
// series. Ties resolve to the lowest index, which keeps lag estimation
// reproducible.
func FindPeak(corr []float64) (int, float64) {
	if len(corr) == 0 {
		return -1, 0
	}
	idx := 0
	val := corr[0]
	for i, v := range corr {
		if v > val {
			idx = i
			val = v
		}
	}
	return idx, val
}
