package align

import (
	"fmt"
	"time"

	"github.com/xaionaro-go/stereolag/pkg/audio"
	"github.com/xaionaro-go/stereolag/pkg/dsp"
)

// WindowSamples converts a duration to a sample count at the given rate.
func WindowSamples(sampleRate audio.SampleRate, window time.Duration) int {
	return int(float64(sampleRate) * window.Seconds())
}

// EstimateSyncOffset estimates the inter-channel lag of a stereo buffer from
// its leading sync window (the portion assumed to contain the shared
// reference tone). The window keeps the correlation cheap and avoids letting
// the payload signal bias the estimate.
func EstimateSyncOffset(buf *audio.Buffer, syncDuration time.Duration) (int, error) {
	if err := buf.RequireStereo(); err != nil {
		return 0, err
	}

	syncLen := WindowSamples(buf.SampleRate, syncDuration)
	if syncLen <= 0 {
		return 0, fmt.Errorf("sync window %v is not positive at %d samples/s", syncDuration, buf.SampleRate)
	}
	if buf.Len() < syncLen {
		return 0, audio.InsufficientLengthError{Required: syncLen, Actual: buf.Len()}
	}

	segment := buf.Slice(0, syncLen)
	lag, err := dsp.EstimateOffset(segment.Channel(0), segment.Channel(1))
	if err != nil {
		return 0, fmt.Errorf("unable to estimate the sync-window offset: %w", err)
	}
	return lag, nil
}

// TrimHead drops the first n samples of every channel (used to cut the sync
// tone off the payload once the lag is known).
func TrimHead(buf *audio.Buffer, n int) (*audio.Buffer, error) {
	if n == 0 {
		return buf, nil
	}
	if n < 0 || n > buf.Len() {
		return nil, audio.InsufficientLengthError{Required: n, Actual: buf.Len()}
	}
	return buf.Slice(n, buf.Len()), nil
}
