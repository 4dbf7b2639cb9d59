package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"

	"github.com/xaionaro-go/stereolag/pkg/pipeline"
)

func main() {
	cfg := pipeline.DefaultConfig()

	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	configPath := pflag.String("config", "", "path to a YAML config file (flags take precedence)")
	pflag.IntVar(&cfg.SyncDurationMS, "sync-duration-ms", cfg.SyncDurationMS, "length of the leading sync tone, in milliseconds")
	pflag.Float64Var(&cfg.CutoffHz, "cutoff-hz", cfg.CutoffHz, "high-pass cutoff frequency")
	pflag.IntVar(&cfg.FilterOrder, "filter-order", cfg.FilterOrder, "high-pass Butterworth order")
	pflag.IntVar(&cfg.Workers, "workers", cfg.Workers, "how many files to process in parallel")
	watch := pflag.Bool("watch", false, "keep polling the directory for new files until interrupted")
	pflag.IntVar(&cfg.PollIntervalMS, "poll-interval-ms", cfg.PollIntervalMS, "directory re-scan period in watch mode, in milliseconds")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	pflag.Parse()

	if pflag.NArg() != 1 {
		panic(fmt.Errorf("expected exactly one argument: <directory-with-wav-files>"))
	}
	dir := pflag.Arg(0)

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	if *configPath != "" {
		flagCfg := cfg
		var err error
		cfg, err = pipeline.DefaultConfig().LoadFile(*configPath)
		assertNoError(err)
		mergeExplicitFlags(&cfg, flagCfg)
	}

	p := pipeline.NewSyncAlign(cfg)
	if *watch {
		ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer cancel()
		logger.Infof(ctx, "watching '%s' (poll interval %v)", dir, cfg.PollInterval())
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

// mergeExplicitFlags re-applies every flag the user actually set on top of
// the file-loaded config.
func mergeExplicitFlags(cfg *pipeline.Config, flagCfg pipeline.Config) {
	pflag.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "sync-duration-ms":
			cfg.SyncDurationMS = flagCfg.SyncDurationMS
		case "cutoff-hz":
			cfg.CutoffHz = flagCfg.CutoffHz
		case "filter-order":
			cfg.FilterOrder = flagCfg.FilterOrder
		case "workers":
			cfg.Workers = flagCfg.Workers
		case "poll-interval-ms":
			cfg.PollIntervalMS = flagCfg.PollIntervalMS
		}
	})
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
