// Package pipeline wires the signal-processing primitives into per-file
// pipelines and runs them over directories of WAV recordings: a batch pass
// or a continuous poll, a bounded worker pool across files, and strictly
// sequential processing within one file.
package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xaionaro-go/stereolag/pkg/audio"
	"github.com/xaionaro-go/stereolag/pkg/clicks"
	"github.com/xaionaro-go/stereolag/pkg/distance"
	"github.com/xaionaro-go/stereolag/pkg/hpf"
)

// Config is the single knob surface for every historical pipeline variant;
// which stages run is decided by the pipeline type, not by the config.
type Config struct {
	// Threshold is the click-detection level on the normalized reference
	// channel.
	Threshold float64 `yaml:"threshold"`
	// FallbackSampleRate is used when a raw input carries no rate of its own.
	FallbackSampleRate audio.SampleRate `yaml:"sample_rate"`
	// PeakWindowMS bounds the forward peak search after a threshold crossing.
	PeakWindowMS int `yaml:"peak_detect_window_ms"`
	// SegmentMarginMS is the half-width of the segment cut around each peak.
	SegmentMarginMS int `yaml:"segment_margin_ms"`
	// SyncDurationMS is the length of the leading sync tone used for the
	// alignment lag estimate (and trimmed from the output).
	SyncDurationMS int `yaml:"sync_duration_ms"`
	// CutoffHz and FilterOrder parametrize the zero-phase high-pass.
	CutoffHz    float64 `yaml:"cutoff_hz"`
	FilterOrder int     `yaml:"filter_order"`
	// SpeedOfSound is used by the distance conversion, in m/s.
	SpeedOfSound float64 `yaml:"speed_of_sound_m_s"`
	// DistanceWindowMS is the length of the leading/trailing windows the
	// distance report correlates.
	DistanceWindowMS int `yaml:"distance_window_ms"`

	// Workers bounds the across-file parallelism of a batch pass.
	Workers int `yaml:"workers"`
	// PollIntervalMS is the directory re-scan period in watch mode.
	PollIntervalMS int `yaml:"poll_interval_ms"`

	// ProcessedDirName and ClicksDirName are the output subdirectories,
	// relative to the input directory.
	ProcessedDirName string `yaml:"processed_dir"`
	ClicksDirName    string `yaml:"clicks_dir"`
}

func DefaultConfig() Config {
	return Config{
		Threshold:          clicks.DefaultThreshold,
		FallbackSampleRate: 44100,
		PeakWindowMS:       30,
		SegmentMarginMS:    10,
		SyncDurationMS:     100,
		CutoffHz:           hpf.DefaultCutoffHz,
		FilterOrder:        hpf.DefaultOrder,
		SpeedOfSound:       distance.DefaultSpeedOfSound,
		DistanceWindowMS:   200,
		Workers:            1,
		PollIntervalMS:     5000,
		ProcessedDirName:   "processed",
		ClicksDirName:      "potential_clicks",
	}
}

// LoadFile overlays YAML values from path on top of the receiver and
// returns the merged config. Fields absent from the file keep their
// current values.
func (cfg Config) LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("unable to read the config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse the config file '%s': %w", path, err)
	}
	return cfg, nil
}

// normalizeRate substitutes the fallback sample rate when a decoded input
// does not carry one (a zero rate field in the header).
func (cfg Config) normalizeRate(buf *audio.Buffer) {
	if buf.SampleRate == 0 {
		buf.SampleRate = cfg.FallbackSampleRate
	}
}

func (cfg Config) SyncDuration() time.Duration {
	return time.Duration(cfg.SyncDurationMS) * time.Millisecond
}

func (cfg Config) PeakWindow() time.Duration {
	return time.Duration(cfg.PeakWindowMS) * time.Millisecond
}

func (cfg Config) SegmentMargin() time.Duration {
	return time.Duration(cfg.SegmentMarginMS) * time.Millisecond
}

func (cfg Config) DistanceWindow() time.Duration {
	return time.Duration(cfg.DistanceWindowMS) * time.Millisecond
}

func (cfg Config) PollInterval() time.Duration {
	return time.Duration(cfg.PollIntervalMS) * time.Millisecond
}
