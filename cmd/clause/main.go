// Command clause answers decision questions from ingested documents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/clause/internal/adapters/driving/cli"
	"github.com/custodia-labs/clause/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

func main() {
	// provider API keys may come from a local .env file
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrapper(app.New())

	// cobra has already printed the error
	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
