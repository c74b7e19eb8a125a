// Package procconfig resolves the process-level configuration: database
// path, listen port, root directory, tracing level and auth settings, from
// NUMTRACKER_* environment variables and their matching CLI flags.
package procconfig

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the resolved process configuration.
type Config struct {
	DBPath        string
	Port          int
	RootDirectory string
	TracingLevel  string
	AuthHost      string
	AuthAccess    string
	AuthAdmin     string
}

// BindFlags registers the flags procconfig resolves values from onto fs,
// and binds each one to its NUMTRACKER_* environment variable via viper.
// Call this once per command that needs process configuration, then call
// Resolve after fs has been parsed.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.String("db", "", "path to the sqlite database file (default: $HOME/.numtracker/numtracker.db)")
	fs.Int("port", 8000, "port to listen on")
	fs.String("root-directory", "", "root directory setting (resolved into Config.RootDirectory; no rendered path or tracker directory is placed under it)")
	fs.String("tracing-level", "info", "log level: debug, info, warn, error")
	fs.String("auth-host", "", "OIDC issuer host (resolved into Config.AuthHost; this binary does not validate bearer tokens)")
	fs.String("auth-access", "", "claim required for read access")
	fs.String("auth-admin", "", "claim required for write/admin access")

	v.SetEnvPrefix("NUMTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.BindPFlag("db", fs.Lookup("db"))
	v.BindPFlag("port", fs.Lookup("port"))
	v.BindPFlag("root-directory", fs.Lookup("root-directory"))
	v.BindPFlag("tracing-level", fs.Lookup("tracing-level"))
	v.BindPFlag("auth-host", fs.Lookup("auth-host"))
	v.BindPFlag("auth-access", fs.Lookup("auth-access"))
	v.BindPFlag("auth-admin", fs.Lookup("auth-admin"))
}

// Resolve reads the bound values back out of v into a Config.
func Resolve(v *viper.Viper) Config {
	return Config{
		DBPath:        v.GetString("db"),
		Port:          v.GetInt("port"),
		RootDirectory: v.GetString("root-directory"),
		TracingLevel:  v.GetString("tracing-level"),
		AuthHost:      v.GetString("auth-host"),
		AuthAccess:    v.GetString("auth-access"),
		AuthAdmin:     v.GetString("auth-admin"),
	}
}
