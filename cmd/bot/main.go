package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hwbot/internal/app"
	"hwbot/internal/config"
	logx "hwbot/pkg/logx"
)

func main() {
	os.Exit(run())
}

func run() int {
	boot := logx.NewConsole("INFO").With(logx.String("comp", "main"))

	env, cfgm, err := config.Load()
	if err != nil {
		boot.Error("configuration error", logx.Err(err))
		return 1
	}

	a, err := app.New(env, cfgm)
	if err != nil {
		boot.Error("startup failed", logx.Err(err))
		return 1
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); err != nil {
		boot.Error("start failed", logx.Err(err))
		return 1
	}

	reason := app.StopUnknown
	select {
	case sig := <-sigs:
		reason = app.StopReasonFromSignal(sig)
	case <-a.Done():
		reason = app.StopFatalError
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := a.Stop(stopCtx, reason); err != nil {
		boot.Error("stopped with error", logx.Err(err))
		return 1
	}
	return 0
}
