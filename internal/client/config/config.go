package config

import (
	"os"
	"time"
)

// StorageKeyEnv names the environment variable holding the storage passphrase.
const StorageKeyEnv = "AUTHDESK_STORAGE_KEY"

// Config holds runtime settings for the authdesk CLI.
//
// Fields:
//   - ServerURL: base URL of the Authentication API.
//   - DatabasePath: SQLite file holding the persisted credential.
//   - RequestTimeout: per-request HTTP timeout applied by the API client.
//   - StorageKey: optional passphrase sealing the persisted credential.
//   - LogLevel: debug, info, warn or error.
//   - OnlineCheckInterval: how often the REPL probes API reachability; zero
//     disables the probe.
type Config struct {
	ServerURL           string
	DatabasePath        string
	RequestTimeout      time.Duration
	StorageKey          string
	LogLevel            string
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.DatabasePath = "authdesk.db"
	c.RequestTimeout = 10 * time.Second
	c.StorageKey = ""
	c.LogLevel = "info"
	c.OnlineCheckInterval = 5 * time.Second
}

// LoadConfig constructs a Config from defaults, then overlays the JSON file
// (if any), the environment and finally command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}

func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(StorageKeyEnv); ok && v != "" {
		cfg.StorageKey = v
	}
}
