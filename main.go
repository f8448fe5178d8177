package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardnew/tplc/cli"
	"github.com/ardnew/tplc/log"
)

func main() {
	// Interrupts cancel the context so in-flight compilations stop at
	// the next pipeline boundary instead of dying mid-write.
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}
