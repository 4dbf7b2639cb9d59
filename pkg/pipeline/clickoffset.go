package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/xaionaro-go/stereolag/pkg/dsp"
	"github.com/xaionaro-go/stereolag/pkg/wav"
)

// offsetMarker in a segment filename records that its inter-channel offset
// has already been measured; such files are excluded from further passes,
// which makes the rename itself the dedup key.
const offsetMarker = "_offset_"

// ClickOffset measures the inter-channel lag of every isolated click
// segment and encodes the result into the filename
// (<base>_offset_<lag>.wav), so detection and measurement can run as
// separate stages.
type ClickOffset struct {
	Config Config
	Runner Runner
}

func NewClickOffset(cfg Config) *ClickOffset {
	return &ClickOffset{
		Config: cfg,
		Runner: Runner{
			Workers:      cfg.Workers,
			PollInterval: cfg.PollInterval(),
		},
	}
}

// ProcessFile measures one segment and renames it in place.
func (p *ClickOffset) ProcessFile(ctx context.Context, path string) FileResult {
	buf, err := wav.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	if err := buf.RequireStereo(); err != nil {
		return FileResult{Path: path, Err: err}
	}

	lag, err := dsp.EstimateOffset(buf.Channel(0), buf.Channel(1))
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("unable to measure the segment offset: %w", err)}
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	newPath := filepath.Join(filepath.Dir(path), fmt.Sprintf("%s%s%d.wav", base, offsetMarker, lag))
	if err := os.Rename(path, newPath); err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("unable to rename to '%s': %w", newPath, err)}
	}
	logger.Infof(ctx, "measured '%s': lag %d sample(s)", path, lag)
	return FileResult{Path: path}
}

// Run measures every not-yet-measured segment under dir's clicks directory.
func (p *ClickOffset) Run(ctx context.Context, dir string) ([]FileResult, error) {
	clicksDir := filepath.Join(dir, p.Config.ClicksDirName)
	paths, err := ListWAVFiles(clicksDir)
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, path := range paths {
		if strings.Contains(filepath.Base(path), offsetMarker) {
			continue
		}
		pending = append(pending, path)
	}
	logger.Infof(ctx, "found %d unmeasured segment(s) in '%s'", len(pending), clicksDir)

	results := p.Runner.Batch(ctx, pending, p.ProcessFile)
	processed, skipped, batchErr := Summary(results)
	logger.Infof(ctx, "measurement done: %d measured, %d skipped, %d failed", processed, skipped, len(results)-processed-skipped)
	if batchErr != nil {
		logger.Warnf(ctx, "measurement finished with failures: %v", batchErr)
	}
	return results, nil
}
