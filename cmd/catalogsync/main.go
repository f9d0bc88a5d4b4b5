// cmd/catalogsync/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/catalogsync/internal/cli"
)

func main() {
	// Cancel in-flight requests on interrupt; workers drain and the run returns
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
