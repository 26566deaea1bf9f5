package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pseudomuto/ndc-clickhouse/pkg/cmd"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	// A missing .env is fine; values already in the environment win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := cmd.Version{Version: version, Commit: commit, Timestamp: date}
	if err := cmd.Run(ctx, v, os.Args); err != nil {
		stop()
		log.Fatal(err)
	}
}
