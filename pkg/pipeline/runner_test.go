package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerBatch(t *testing.T) {
	t.Run("results keep input order", func(t *testing.T) {
		r := Runner{Workers: 4}
		paths := []string{"a.wav", "b.wav", "c.wav", "d.wav"}
		results := r.Batch(context.Background(), paths, func(_ context.Context, path string) FileResult {
			return FileResult{Path: path}
		})
		require.Len(t, results, len(paths))
		for idx, result := range results {
			assert.Equal(t, paths[idx], result.Path)
		}
	})

	t.Run("a failed file does not stop the others", func(t *testing.T) {
		r := Runner{Workers: 2}
		failure := errors.New("broken take")
		results := r.Batch(context.Background(), []string{"good.wav", "bad.wav", "also-good.wav"},
			func(_ context.Context, path string) FileResult {
				if path == "bad.wav" {
					return FileResult{Path: path, Err: failure}
				}
				return FileResult{Path: path}
			})
		require.Len(t, results, 3)
		assert.NoError(t, results[0].Err)
		assert.ErrorIs(t, results[1].Err, failure)
		assert.NoError(t, results[2].Err)
	})

	t.Run("parallelism is bounded by Workers", func(t *testing.T) {
		r := Runner{Workers: 2}
		var active, peak int64
		var peakLocker sync.Mutex
		paths := make([]string, 16)
		for i := range paths {
			paths[i] = "x.wav"
		}
		r.Batch(context.Background(), paths, func(_ context.Context, path string) FileResult {
			n := atomic.AddInt64(&active, 1)
			peakLocker.Lock()
			if n > peak {
				peak = n
			}
			peakLocker.Unlock()
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&active, -1)
			return FileResult{Path: path}
		})
		assert.LessOrEqual(t, peak, int64(2))
	})
}

func TestRunnerWatch(t *testing.T) {
	r := Runner{PollInterval: 5 * time.Millisecond}

	t.Run("keeps scanning until canceled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		var scans int64
		err := r.Watch(ctx, func(context.Context) error {
			atomic.AddInt64(&scans, 1)
			return nil
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.GreaterOrEqual(t, atomic.LoadInt64(&scans), int64(2))
	})

	t.Run("a scan error stops the watch", func(t *testing.T) {
		failure := errors.New("scan failed")
		err := r.Watch(context.Background(), func(context.Context) error {
			return failure
		})
		assert.ErrorIs(t, err, failure)
	})
}

func TestSummary(t *testing.T) {
	results := []FileResult{
		{Path: "a.wav"},
		{Path: "b.wav", Skipped: true},
		{Path: "c.wav", Err: errors.New("bad header")},
		{Path: "d.wav", Err: errors.New("not stereo")},
	}
	processed, skipped, err := Summary(results)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, skipped)
	require.Error(t, err)

	var mErr *multierror.Error
	require.ErrorAs(t, err, &mErr)
	assert.Len(t, mErr.Errors, 2)

	t.Run("no results means no error", func(t *testing.T) {
		processed, skipped, err := Summary(nil)
		assert.Zero(t, processed)
		assert.Zero(t, skipped)
		assert.NoError(t, err)
	})
}

func TestListWAVFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.wav", "a.WAV", "notes.txt", "c.wav"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0640))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.wav"), 0750))

	paths, err := ListWAVFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.WAV"),
		filepath.Join(dir, "b.wav"),
		filepath.Join(dir, "c.wav"),
	}, paths)

	t.Run("missing directory is an error", func(t *testing.T) {
		_, err := ListWAVFiles(filepath.Join(dir, "does-not-exist"))
		assert.Error(t, err)
	})
}
