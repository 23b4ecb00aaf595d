package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"pumon/internal/app"
	"pumon/internal/config"
	"pumon/pkg/logx"
)

func main() {
	var cfgPath string
	var daemonMode bool
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config file (yaml or json)")
	flag.BoolVar(&daemonMode, "daemon", false, "keep running and trigger passes on schedule.daemon_spec")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, closeLog := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	code := run(cfg, log, daemonMode)
	_ = closeLog.Close()
	os.Exit(code)
}

// run keeps os.Exit out of the deferred-recover path. Exit codes: 0 for a
// clean pass (including nothing-to-do), 2 for any unhandled failure.
func run(cfg *config.Config, log logx.Logger, daemonMode bool) (code int) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("unhandled panic",
				logx.Any("panic", r), logx.Stack(string(debug.Stack())))
			code = 2
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("startup failed", logx.Err(err))
		return 2
	}
	defer a.Close()

	if daemonMode {
		if err := a.RunDaemon(ctx); err != nil {
			log.Error("daemon failed", logx.Err(err))
			return 2
		}
		return 0
	}

	if err := a.RunOnce(ctx); err != nil {
		log.Error("pass failed", logx.Err(err))
		return 2
	}
	return 0
}
