package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"

	"github.com/xaionaro-go/stereolag/pkg/audio"
	"github.com/xaionaro-go/stereolag/pkg/pipeline"
)

func main() {
	cfg := pipeline.DefaultConfig()

	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	pflag.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "click detection threshold on the normalized reference channel")
	pflag.IntVar(&cfg.PeakWindowMS, "peak-window-ms", cfg.PeakWindowMS, "peak refinement window, in milliseconds")
	pflag.IntVar(&cfg.SegmentMarginMS, "segment-margin-ms", cfg.SegmentMarginMS, "segment half-width around each peak, in milliseconds")
	sampleRate := pflag.Uint32("sample-rate", uint32(cfg.FallbackSampleRate), "sample rate to assume for inputs that do not declare one")
	pflag.IntVar(&cfg.Workers, "workers", cfg.Workers, "how many files to process in parallel")
	watch := pflag.Bool("watch", false, "keep polling for newly processed files until interrupted")
	pflag.IntVar(&cfg.PollIntervalMS, "poll-interval-ms", cfg.PollIntervalMS, "directory re-scan period in watch mode, in milliseconds")
	pflag.Parse()

	if pflag.NArg() != 1 {
		panic(fmt.Errorf("expected exactly one argument: <base-directory>"))
	}
	dir := pflag.Arg(0)
	cfg.FallbackSampleRate = audio.SampleRate(*sampleRate)

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	p := pipeline.NewClickScan(cfg)
	if *watch {
		ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer cancel()
		err := p.Watch(ctx, dir)
		if err != nil && ctx.Err() == nil {
			assertNoError(err)
		}
		logger.Infof(ctx, "watch stopped: %v", err)
		return
	}

	results, err := p.Run(ctx, dir)
	assertNoError(err)
	if _, _, batchErr := pipeline.Summary(results); batchErr != nil {
		os.Exit(1)
	}
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
