package config

import (
	"github.com/spf13/pflag"
)

const (
	flagConfig        = "config"
	flagDB            = "db"
	flagFactory       = "factory"
	flagHTTPAddr      = "http-addr"
	flagLogCalls      = "log-calls"
	flagIncludeBackup = "include-backup"
	flagRefresh       = "refresh"
)

// RegisterFlags adds the global configuration flags to fs. Only flags the
// user actually sets override lower-precedence sources.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(flagConfig, "c", "", "Path to a JSONC config file")
	fs.String(flagDB, "", "SQLite database path")
	fs.StringP(flagFactory, "f", "", "Factory code to scope metrics to")
	fs.String(flagHTTPAddr, "", "Listen address for the HTTP API")
	fs.Bool(flagLogCalls, false, "Log every scorer run to stderr")
	fs.Bool(flagIncludeBackup, false, "Count backup-PM projects toward capacity")
	fs.Duration(flagRefresh, 0, "Dashboard refresh interval")
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) {
	if fs.Changed(flagDB) {
		cfg.DBPath, _ = fs.GetString(flagDB)
	}
	if fs.Changed(flagFactory) {
		cfg.Factory, _ = fs.GetString(flagFactory)
	}
	if fs.Changed(flagHTTPAddr) {
		cfg.HTTPAddr, _ = fs.GetString(flagHTTPAddr)
	}
	if fs.Changed(flagLogCalls) {
		cfg.LogCalls, _ = fs.GetBool(flagLogCalls)
	}
	if fs.Changed(flagIncludeBackup) {
		cfg.IncludeBackupProjects, _ = fs.GetBool(flagIncludeBackup)
	}
	if fs.Changed(flagRefresh) {
		cfg.RefreshInterval.Duration, _ = fs.GetDuration(flagRefresh)
	}
}
