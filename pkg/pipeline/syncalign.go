package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/xaionaro-go/stereolag/pkg/align"
	"github.com/xaionaro-go/stereolag/pkg/audio"
	"github.com/xaionaro-go/stereolag/pkg/hpf"
	"github.com/xaionaro-go/stereolag/pkg/wav"
)

// SyncAlign is the channel-alignment pipeline: estimate the inter-channel
// lag from the leading sync tone, trim the tone, realign the channels and
// high-pass the result, then write it next to the input under the processed
// subdirectory.
type SyncAlign struct {
	Config Config
	Runner Runner
}

func NewSyncAlign(cfg Config) *SyncAlign {
	return &SyncAlign{
		Config: cfg,
		Runner: Runner{
			Workers:      cfg.Workers,
			PollInterval: cfg.PollInterval(),
		},
	}
}

// OutputPath maps an input WAV path to its processed output path.
func (p *SyncAlign) OutputPath(inputPath string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(filepath.Dir(inputPath), p.Config.ProcessedDirName, base+"_processed.wav")
}

// Process transforms one decoded buffer. It is the in-memory core of the
// pipeline, separated from file I/O so it can be exercised directly.
func (p *SyncAlign) Process(ctx context.Context, buf *audio.Buffer) (*audio.Buffer, error) {
	if err := buf.RequireStereo(); err != nil {
		return nil, err
	}
	p.Config.normalizeRate(buf)

	lag, err := align.EstimateSyncOffset(buf, p.Config.SyncDuration())
	if err != nil {
		return nil, fmt.Errorf("unable to estimate the sync offset: %w", err)
	}
	logger.Debugf(ctx, "estimated sync lag: %d samples", lag)

	syncLen := align.WindowSamples(buf.SampleRate, p.Config.SyncDuration())
	payload, err := align.TrimHead(buf, syncLen)
	if err != nil {
		return nil, fmt.Errorf("unable to trim the sync tone: %w", err)
	}

	aligned, err := align.Realign(payload, lag)
	if err != nil {
		return nil, fmt.Errorf("unable to realign the channels: %w", err)
	}

	filtered, err := hpf.HighPass(aligned, p.Config.CutoffHz, p.Config.FilterOrder)
	if err != nil {
		return nil, fmt.Errorf("unable to high-pass the aligned signal: %w", err)
	}
	return filtered, nil
}

// ProcessFile runs the pipeline for a single input file. An already-existing
// output makes it a no-op (the idempotency rule that also dedups concurrent
// workers and watch-mode re-scans).
func (p *SyncAlign) ProcessFile(ctx context.Context, path string) FileResult {
	outPath := p.OutputPath(path)
	if fileExists(outPath) {
		logger.Debugf(ctx, "skipping '%s': processed version already exists", path)
		return FileResult{Path: path, Skipped: true}
	}

	buf, err := wav.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	filtered, err := p.Process(ctx, buf)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	n, err := writeWAV(outPath, filtered)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	logger.Infof(ctx, "processed '%s' -> '%s' (%d bytes)", path, outPath, n)
	return FileResult{Path: path}
}

// Run performs one batch pass over dir.
func (p *SyncAlign) Run(ctx context.Context, dir string) ([]FileResult, error) {
	paths, err := ListWAVFiles(dir)
	if err != nil {
		return nil, err
	}
	logger.Infof(ctx, "found %d WAV file(s) in '%s'", len(paths), dir)

	if err := os.MkdirAll(filepath.Join(dir, p.Config.ProcessedDirName), 0750); err != nil {
		return nil, fmt.Errorf("unable to create the output directory: %w", err)
	}

	results := p.Runner.Batch(ctx, paths, p.ProcessFile)
	processed, skipped, batchErr := Summary(results)
	logger.Infof(ctx, "batch done: %d processed, %d skipped, %d failed", processed, skipped, len(results)-processed-skipped)
	if batchErr != nil {
		logger.Warnf(ctx, "batch finished with failures: %v", batchErr)
	}
	return results, nil
}

// Watch keeps re-scanning dir on the configured poll interval until the
// context is canceled, processing only inputs that have no output yet.
func (p *SyncAlign) Watch(ctx context.Context, dir string) error {
	return p.Runner.Watch(ctx, func(ctx context.Context) error {
		_, err := p.Run(ctx, dir)
		return err
	})
}
