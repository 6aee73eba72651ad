package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tom1484/cmg-10m-thermal/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	os.Exit(cli.Run(ctx, os.Args[1:]))
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	cancel()
}
