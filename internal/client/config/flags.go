package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/authdesk/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   base URL of the Authentication API
//	-d string   path of the local credential database
//	-t int      request timeout (in seconds)
//	-k string   passphrase sealing the stored credential
//	-l string   log level
//	-i int      online status check interval (in seconds)
//
// Only these flags are picked out of args (see flagx.FilterArgs); a parse
// error panics, as with the JSON loader.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-t", "-k", "-l", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the authentication API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local credential database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.StorageKey, "k", cfg.StorageKey, "passphrase sealing the stored credential")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online status check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
}
