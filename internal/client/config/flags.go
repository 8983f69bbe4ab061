package config

import (
	"flag"
	"os"

	"github.com/cryptobulldev/userdash/internal/flagx"
)

var knownFlags = []string{"-u", "-g", "-t", "-r", "-d", "-s", "-l", "-p"}

// parseFlags overlays cfg with command-line flags:
//
//	-u string     API base URL
//	-g string     gRPC address (host:port)
//	-t duration   per-request timeout
//	-r duration   refresh timeout
//	-d string     data directory
//	-s bool       seal the persisted session (use -s=false to disable)
//	-l string     log level
//	-p int        users per page
//
// Unknown arguments are filtered out with flagx.FilterArgs. Parse errors
// panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC address")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.DurationVar(&cfg.RefreshTimeout, "r", cfg.RefreshTimeout, "credential refresh timeout")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.BoolVar(&cfg.EncryptSession, "s", cfg.EncryptSession, "seal the persisted session")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "users per page")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
