package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)

	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr, telegramDialer)

	cancel()
	os.Exit(int(code))
}
