package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/xaionaro-go/stereolag/pkg/clicks"
	"github.com/xaionaro-go/stereolag/pkg/dsp"
	"github.com/xaionaro-go/stereolag/pkg/wav"
)

// ClickScan detects transients in already-processed recordings and writes
// one stereo segment file per click, named after the source file and the
// detected peak index so every finding stays traceable to its origin.
type ClickScan struct {
	Config Config
	Runner Runner

	clicksDir string
}

func NewClickScan(cfg Config) *ClickScan {
	return &ClickScan{
		Config: cfg,
		Runner: Runner{
			Workers:      cfg.Workers,
			PollInterval: cfg.PollInterval(),
		},
	}
}

func (p *ClickScan) detector() *clicks.Detector {
	return &clicks.Detector{
		Threshold:     p.Config.Threshold,
		PeakWindow:    p.Config.PeakWindow(),
		SegmentMargin: p.Config.SegmentMargin(),
	}
}

// SegmentPath names the output file for a click detected at peakIndex in
// the given input file.
func (p *ClickScan) SegmentPath(inputPath string, peakIndex int) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(p.clicksDir, fmt.Sprintf("%s_click_%d.wav", base, peakIndex))
}

// ProcessFile scans one processed recording for clicks and writes the
// isolated segments. Segments whose output file already exists are left
// untouched.
func (p *ClickScan) ProcessFile(ctx context.Context, path string) FileResult {
	buf, err := wav.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	if err := buf.RequireStereo(); err != nil {
		return FileResult{Path: path, Err: err}
	}
	p.Config.normalizeRate(buf)

	stats := dsp.Summarize(buf.Channel(0))
	logger.Debugf(ctx, "'%s': %d samples, mean=%v, stddev=%v, min=%v, max=%v",
		path, stats.Count, stats.Mean, stats.StdDev, stats.Min, stats.Max)

	detected, err := p.detector().Detect(buf)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	written := 0
	var totalBytes uint64
	for _, click := range detected {
		outPath := p.SegmentPath(path, click.PeakIndex)
		if fileExists(outPath) {
			continue
		}
		n, err := writeWAV(outPath, click.Segment)
		if err != nil {
			return FileResult{Path: path, Err: fmt.Errorf("unable to save the segment at peak %d: %w", click.PeakIndex, err)}
		}
		totalBytes += n
		written++
	}
	logger.Infof(ctx, "'%s': %d click(s) detected, %d segment(s) written (%d bytes)",
		path, len(detected), written, totalBytes)
	return FileResult{Path: path, Skipped: len(detected) > 0 && written == 0}
}

// Run scans every processed recording under dir once.
func (p *ClickScan) Run(ctx context.Context, dir string) ([]FileResult, error) {
	inDir := filepath.Join(dir, p.Config.ProcessedDirName)
	p.clicksDir = filepath.Join(dir, p.Config.ClicksDirName)
	if err := os.MkdirAll(p.clicksDir, 0750); err != nil {
		return nil, fmt.Errorf("unable to create the clicks directory: %w", err)
	}

	paths, err := ListWAVFiles(inDir)
	if err != nil {
		return nil, err
	}
	logger.Infof(ctx, "found %d processed WAV file(s) in '%s'", len(paths), inDir)

	results := p.Runner.Batch(ctx, paths, p.ProcessFile)
	processed, skipped, batchErr := Summary(results)
	logger.Infof(ctx, "scan done: %d processed, %d skipped, %d failed", processed, skipped, len(results)-processed-skipped)
	if batchErr != nil {
		logger.Warnf(ctx, "scan finished with failures: %v", batchErr)
	}
	return results, nil
}

// Watch keeps re-scanning dir until the context is canceled.
func (p *ClickScan) Watch(ctx context.Context, dir string) error {
	return p.Runner.Watch(ctx, func(ctx context.Context) error {
		_, err := p.Run(ctx, dir)
		return err
	})
}
