package audio

import (
	"fmt"
)

// NotStereoError is returned where a stage requires exactly two channels.
type NotStereoError struct {
	Channels int
}

func (e NotStereoError) Error() string {
	return fmt.Sprintf("expected a stereo signal, got %d channel(s)", e.Channels)
}

// InvalidInputError is returned when correlation inputs are empty or differ
// in length.
type InvalidInputError struct {
	Reason string
}

func (e InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// InsufficientLengthError is returned when a buffer is too short for the
// requested operation (realignment lag, sync window or segment window).
type InsufficientLengthError struct {
	Required int
	Actual   int
}

func (e InsufficientLengthError) Error() string {
	return fmt.Sprintf("insufficient signal length: need at least %d samples, got %d", e.Required, e.Actual)
}

// InvalidCutoffError is returned when a filter cutoff is not below the
// Nyquist frequency.
type InvalidCutoffError struct {
	CutoffHz   float64
	SampleRate SampleRate
}

func (e InvalidCutoffError) Error() string {
	return fmt.Sprintf("cutoff %vHz is not below the Nyquist frequency %vHz", e.CutoffHz, float64(e.SampleRate)/2)
}
