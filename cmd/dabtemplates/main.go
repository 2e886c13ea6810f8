package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bjaus/luatab/internal/catalog"
	"github.com/bjaus/luatab/internal/editrequest"
	"github.com/bjaus/luatab/internal/page"
	"github.com/bjaus/luatab/internal/updater"
)

var version string

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := afero.NewOsFs()
	cfg, err := parseConfig(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if cfg.showVersion {
		fmt.Printf("dabtemplates %s\n", versionString())
		return 0
	}

	logger := newLogger(cfg.verbose, cfg.silent)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Start dabtemplates task", zap.Any("options", cfg.opts), zap.String("pages", cfg.pages))
	tmpl, err := editrequest.Load(fs, cfg.opts.EditRequestTemplate)
	if err != nil {
		logger.Error("Failed to load edit request template", zap.Error(err))
		return 1
	}
	res, err := updater.Run(ctx, cfg.opts, updater.Deps{
		Records:  catalog.NewFileSource(fs, cfg.records),
		Pages:    page.NewFileStore(fs, cfg.pages),
		Template: tmpl,
		Logger:   logger,
	})
	if err != nil {
		if ctx.Err() != nil {
			logger.Error("Dabtemplates task interrupted by user")
			return 2
		}
		logger.Error("Error running dabtemplates task", zap.Error(err))
		return 1
	}
	logger.Info("End dabtemplates task",
		zap.Bool("sandbox-saved", res.SandboxSaved),
		zap.Bool("edit-requested", res.EditRequested))
	return 0
}

func newLogger(verbose, silent bool) *zap.Logger {
	al := zap.NewAtomicLevel()
	if verbose {
		al.SetLevel(zap.DebugLevel)
	}
	if silent {
		al.SetLevel(zap.FatalLevel)
	}
	ec := zap.NewDevelopmentEncoderConfig()
	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), al))
}

func versionString() string {
	if version == "" {
		return "(devel)"
	}
	return version
}
