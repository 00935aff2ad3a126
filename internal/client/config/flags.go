package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/taskdesk/internal/flagx"
)

// Flags consumed by the config loader. The command tree never sees them.
var Flags = []string{"-a", "-t", "-s", "-c", "-config", "-e", "-env"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the task backend
//	-t int      request timeout in seconds
//	-s string   path of the local token database ("" disables it)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the task backend")
	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "local token database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
