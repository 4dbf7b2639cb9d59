// Package clicks locates short high-amplitude transients on the reference
// channel of a stereo recording and cuts a fixed-width stereo segment around
// each of them.
package clicks

import (
	"time"

	"github.com/xaionaro-go/stereolag/pkg/audio"
	"github.com/xaionaro-go/stereolag/pkg/dsp"
)

const (
	DefaultThreshold = 0.2

	DefaultPeakWindow = 30 * time.Millisecond

	DefaultSegmentMargin = 10 * time.Millisecond
)

// Click is one detected transient: the index of its refined peak in the
// source buffer, the peak amplitude on the normalized reference channel,
// and the stereo segment cut around it.
type Click struct {
	PeakIndex     int
	PeakAmplitude float64
	Segment       *audio.Buffer
}

// Detector scans the reference channel (channel 0) for threshold crossings.
type Detector struct {
	// Threshold is the detection level on the peak-normalized reference
	// channel, in (0, 1).
	Threshold float64
	// PeakWindow bounds the forward search for the true peak after a
	// threshold crossing.
	PeakWindow time.Duration
	// SegmentMargin is the half-width of the segment cut around each peak.
	SegmentMargin time.Duration
}

func NewDetector() *Detector {
	return &Detector{
		Threshold:     DefaultThreshold,
		PeakWindow:    DefaultPeakWindow,
		SegmentMargin: DefaultSegmentMargin,
	}
}

// Detect performs a single forward scan over the buffer and returns the
// detected clicks in ascending peak order. The scan is deterministic: the
// same buffer and parameters always produce the same sequence.
//
// After each detection the cursor jumps to the end of the extracted segment,
// so one transient can never trigger twice.
func (d *Detector) Detect(buf *audio.Buffer) ([]Click, error) {
	if err := buf.RequireStereo(); err != nil {
		return nil, err
	}

	length := buf.Len()
	normalized := dsp.Normalize(buf.Channel(0))

	windowSamples := int(float64(buf.SampleRate) * d.PeakWindow.Seconds())
	marginSamples := int(float64(buf.SampleRate) * d.SegmentMargin.Seconds())

	var result []Click
	i := 0
	for i < length {
		if normalized[i] <= d.Threshold {
			i++
			continue
		}

		// Refine to the local maximum within the peak window (inclusive).
		searchEnd := i + windowSamples
		peakIdx := i
		peakVal := 0.0
		for i <= searchEnd && i < length {
			if normalized[i] > peakVal {
				peakVal = normalized[i]
				peakIdx = i
			}
			i++
		}

		startCut := peakIdx - marginSamples
		if startCut < 0 {
			startCut = 0
		}
		endCut := peakIdx + marginSamples
		if endCut > length {
			endCut = length
		}

		result = append(result, Click{
			PeakIndex:     peakIdx,
			PeakAmplitude: peakVal,
			Segment:       buf.Slice(startCut, endCut).Clone(),
		})
		// Resume right after the extracted segment. The guard keeps the scan
		// progressing even with a zero margin.
		i = endCut
		if i <= peakIdx {
			i = peakIdx + 1
		}
	}
	return result, nil
}
