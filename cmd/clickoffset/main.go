package main

import (
	"context"
	"fmt"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"

	"github.com/xaionaro-go/stereolag/pkg/pipeline"
)

func main() {
	cfg := pipeline.DefaultConfig()

	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	pflag.IntVar(&cfg.Workers, "workers", cfg.Workers, "how many segments to measure in parallel")
	pflag.Parse()

	if pflag.NArg() != 1 {
		panic(fmt.Errorf("expected exactly one argument: <base-directory>"))
	}
	dir := pflag.Arg(0)

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	results, err := pipeline.NewClickOffset(cfg).Run(ctx, dir)
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
