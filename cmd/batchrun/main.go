package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/avinashk/batchrun/internal/cli"
	"github.com/avinashk/batchrun/internal/util"
)

func main() {
	// Setup signal handling for graceful shutdown
	ctx := util.SetupSignalHandler(context.Background())

	// Execute the CLI
	if err := cli.Execute(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
