// Package distance maps an inter-channel sample lag to the physical
// path-length difference between the two microphones.
package distance

import (
	"math"

	"github.com/xaionaro-go/stereolag/pkg/audio"
)

// DefaultSpeedOfSound is the propagation speed in air at ~20°C, in m/s.
const DefaultSpeedOfSound = 343.0

// Measurement is a lag together with the distance it corresponds to.
// The sign of DistanceMM follows the sign of the lag.
type Measurement struct {
	Lag        int
	DistanceMM int
}

// Converter turns sample lags into distances. The zero value is not usable;
// construct it with NewConverter.
type Converter struct {
	SpeedOfSound float64 // m/s
}

func NewConverter(speedOfSound float64) *Converter {
	if speedOfSound <= 0 {
		speedOfSound = DefaultSpeedOfSound
	}
	return &Converter{SpeedOfSound: speedOfSound}
}

// Convert computes distance_mm = round(speed * lag/sampleRate * 1000).
// It is total over all integer lags and positive sample rates.
func (c *Converter) Convert(lag int, sampleRate audio.SampleRate) Measurement {
	timeDelay := float64(lag) / float64(sampleRate)
	distanceMM := math.Round(c.SpeedOfSound * timeDelay * 1000)
	return Measurement{
		Lag:        lag,
		DistanceMM: int(distanceMM),
	}
}
