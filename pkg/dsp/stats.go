package dsp

import (
	"math"
)

// Stats summarizes the amplitude distribution of a signal; the scan
// pipeline logs it per file to help tune the detection threshold.
type Stats struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func Summarize(signal []float64) Stats {
	if len(signal) == 0 {
		return Stats{}
	}

	s := Stats{
		Count: len(signal),
		Min:   signal[0],
		Max:   signal[0],
	}
	var sum float64
	for _, v := range signal {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = sum / float64(len(signal))

	var sqDiff float64
	for _, v := range signal {
		d := v - s.Mean
		sqDiff += d * d
	}
	s.StdDev = math.Sqrt(sqDiff / float64(len(signal)))
	return s
}
