// Package config loads runtime configuration for the authdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. AUTHDESK_STORAGE_KEY from the environment.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the Authentication API
//	-d string   path of the local credential database
//	-t int      request timeout (seconds)
//	-k string   passphrase sealing the stored credential
//	-l string   log level
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10s" or integer
// nanoseconds:
//
//	{
//	  "server_url": "http://localhost:8000",
//	  "database_path": "authdesk.db",
//	  "request_timeout": "10s",
//	  "log_level": "debug",
//	  "online_check_interval": "5s"
//	}
package config
