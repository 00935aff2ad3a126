package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/taskdesk/internal/client/cli"
	"github.com/dmitrijs2005/taskdesk/internal/client/config"
	"github.com/dmitrijs2005/taskdesk/internal/flagx"
	"github.com/dmitrijs2005/taskdesk/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.LoadConfig()

	log, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	if z, ok := log.(*logging.ZapLogger); ok {
		defer func() { _ = z.Sync() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCommand(cfg, log)
	cmd.SetArgs(flagx.StripArgs(os.Args[1:], config.Flags))

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.ErrorText(err))
		return 1
	}
	return 0
}
