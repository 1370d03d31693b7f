// Command spoton is the SpotOn event catalog CLI. It browses the merged
// event view, records local edits and favorites, buys tickets, submits
// reviews, and looks up event-day weather.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spotonhq/spoton/cmd/spoton/app"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	app.ExitOnError(err)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = application.Execute(ctx, os.Args[1:])

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if shutdownErr := application.Shutdown(shutdownCtx); shutdownErr != nil {
		application.Logger().Error().Err(shutdownErr).Msg("Shutdown failed")
	}

	app.ExitOnError(err)
}
