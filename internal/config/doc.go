// Package config provides configuration parsing for vroute.
//
// The configuration is stored in vroute.json (or vroute.yaml) at the
// project root and read through viper. Every scalar key can be overridden
// from the environment with the VROUTE_ prefix, dots becoming underscores:
// VROUTE_SERVER_PORT=9000 overrides server.port.
//
// # Configuration File Structure
//
//	{
//	  "name": "journal",
//	  "routes": [
//	    {"path": "/", "redirect": "/write"},
//	    {"path": "/write", "name": "write", "view": "WriteJournaling"},
//	    {"path": "/daily", "name": "daily", "view": "DailyReport"},
//	    {"path": "/monthly", "name": "monthly", "view": "MonthlyReport"}
//	  ],
//	  "notFoundView": "NotFound",
//	  "maxRedirects": 10,
//	  "history": {"mode": "sqlite", "path": ".vroute/history.db", "key": "default"},
//	  "server": {"host": "localhost", "port": 8080, "writeTimeout": "10s", "metrics": true},
//	  "log": {"level": "info", "format": "text"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
