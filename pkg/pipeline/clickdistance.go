package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/xaionaro-go/stereolag/pkg/align"
	"github.com/xaionaro-go/stereolag/pkg/audio"
	"github.com/xaionaro-go/stereolag/pkg/distance"
	"github.com/xaionaro-go/stereolag/pkg/dsp"
	"github.com/xaionaro-go/stereolag/pkg/wav"
)

// DistanceReport carries the microphone path-length difference measured at
// the start and at the end of one recording. Comparing the two exposes
// drift over the take.
type DistanceReport struct {
	Path  string
	Start distance.Measurement
	End   distance.Measurement
}

// ClickDistance correlates the leading and trailing windows of each
// recording and converts the lags to physical distances.
type ClickDistance struct {
	Config Config
	Runner Runner

	converter *distance.Converter

	reportsLocker sync.Mutex
	reports       []DistanceReport
}

func NewClickDistance(cfg Config) *ClickDistance {
	return &ClickDistance{
		Config: cfg,
		Runner: Runner{
			Workers:      cfg.Workers,
			PollInterval: cfg.PollInterval(),
		},
		converter: distance.NewConverter(cfg.SpeedOfSound),
	}
}

// Measure computes the start and end distance of one decoded buffer.
func (p *ClickDistance) Measure(buf *audio.Buffer) (start, end distance.Measurement, err error) {
	if err := buf.RequireStereo(); err != nil {
		return start, end, err
	}
	p.Config.normalizeRate(buf)

	windowLen := align.WindowSamples(buf.SampleRate, p.Config.DistanceWindow())
	length := buf.Len()
	if windowLen <= 0 || length < windowLen {
		return start, end, audio.InsufficientLengthError{Required: windowLen, Actual: length}
	}

	startLag, err := dsp.EstimateOffset(
		buf.Channel(0)[:windowLen],
		buf.Channel(1)[:windowLen],
	)
	if err != nil {
		return start, end, fmt.Errorf("unable to correlate the leading window: %w", err)
	}
	endLag, err := dsp.EstimateOffset(
		buf.Channel(0)[length-windowLen:length],
		buf.Channel(1)[length-windowLen:length],
	)
	if err != nil {
		return start, end, fmt.Errorf("unable to correlate the trailing window: %w", err)
	}

	return p.converter.Convert(startLag, buf.SampleRate), p.converter.Convert(endLag, buf.SampleRate), nil
}

// ProcessFile measures one recording and records its report.
func (p *ClickDistance) ProcessFile(ctx context.Context, path string) FileResult {
	buf, err := wav.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	start, end, err := p.Measure(buf)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	// The report keeps the signed values; the log line shows magnitudes,
	// which is what the operator compares against the rig geometry.
	logger.Infof(ctx, "file '%s': start distance %3d mm, end distance %3d mm",
		path, abs(start.DistanceMM), abs(end.DistanceMM))

	p.reportsLocker.Lock()
	defer p.reportsLocker.Unlock()
	p.reports = append(p.reports, DistanceReport{Path: path, Start: start, End: end})
	return FileResult{Path: path}
}

// Run measures every recording under dir and returns the collected reports.
func (p *ClickDistance) Run(ctx context.Context, dir string) ([]DistanceReport, []FileResult, error) {
	paths, err := ListWAVFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof(ctx, "found %d WAV file(s) in '%s'", len(paths), dir)

	results := p.Runner.Batch(ctx, paths, p.ProcessFile)
	_, _, batchErr := Summary(results)
	if batchErr != nil {
		logger.Warnf(ctx, "distance measurement finished with failures: %v", batchErr)
	}

	p.reportsLocker.Lock()
	defer p.reportsLocker.Unlock()
	return p.reports, results, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
