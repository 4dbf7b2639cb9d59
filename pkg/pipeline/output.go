package pipeline

import (
	"fmt"
	"os"

	"github.com/xaionaro-go/datacounter"

	"github.com/xaionaro-go/stereolag/pkg/audio"
	"github.com/xaionaro-go/stereolag/pkg/wav"
)

// writeWAV writes a buffer to path atomically (temp file + rename) and
// returns the number of bytes written. The rename-last order guarantees the
// output path never names a partially written file, which is what makes
// output existence a safe dedup key.
func writeWAV(path string, buf *audio.Buffer) (uint64, error) {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("unable to create '%s': %w", tmpPath, err)
	}
	wc := datacounter.NewWriterCounter(f)
	if err := wav.Encode(wc, buf); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("unable to encode '%s': %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("unable to close '%s': %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("unable to rename '%s' to '%s': %w", tmpPath, path, err)
	}
	return wc.Count(), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
