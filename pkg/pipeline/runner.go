package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// FileResult is the per-file outcome of a batch pass. A failed file never
// aborts the batch; its error is recorded here and surfaced in the summary.
type FileResult struct {
	Path    string
	Skipped bool
	Err     error
}

// ProcessFunc handles a single input file end to end. It must be safe to
// call concurrently for distinct paths.
type ProcessFunc func(ctx context.Context, path string) FileResult

// Runner executes a ProcessFunc over a set of files with bounded
// parallelism, and optionally keeps re-scanning a directory forever.
type Runner struct {
	Workers      int
	PollInterval time.Duration
}

// Batch processes all paths through a worker pool and returns one result
// per path, in input order. Only context cancellation stops the batch
// early; per-file failures are recorded and skipped over.
func (r *Runner) Batch(ctx context.Context, paths []string, process ProcessFunc) []FileResult {
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]FileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for idx, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[idx] = FileResult{Path: path, Err: ctx.Err()}
				return ctx.Err()
			default:
			}
			result := process(ctx, path)
			if result.Err != nil {
				logger.Errorf(ctx, "error processing file '%s': %v", path, result.Err)
			}
			results[idx] = result
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Watch runs scan immediately and then on every poll tick until the context
// is canceled. Output existence is the dedup key, so a crashed and
// restarted watcher never reprocesses finished inputs.
func (r *Runner) Watch(ctx context.Context, scan func(ctx context.Context) error) error {
	interval := r.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	if err := scan(ctx); err != nil {
		return err
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := scan(ctx); err != nil {
				return err
			}
		}
	}
}

// Summary condenses batch results into counters and an aggregated error.
func Summary(results []FileResult) (processed, skipped int, err error) {
	var mErr *multierror.Error
	for _, r := range results {
		switch {
		case r.Err != nil:
			mErr = multierror.Append(mErr, fmt.Errorf("%s: %w", r.Path, r.Err))
		case r.Skipped:
			skipped++
		default:
			processed++
		}
	}
	return processed, skipped, mErr.ErrorOrNil()
}

// ListWAVFiles returns the sorted *.wav paths directly inside dir.
func ListWAVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to list '%s': %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(entry.Name()), ".wav") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}
