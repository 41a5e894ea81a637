package main

import (
	"github.com/spf13/pflag"

	"roomchat/internal/configs"
)

// cliFlags holds the command-line overrides. Only flags the user set are applied.
type cliFlags struct {
	set *pflag.FlagSet

	configPath string
	host       string
	port       int
	logLevel   string
	envelope   string
}

func newFlags() *cliFlags {
	f := &cliFlags{set: pflag.NewFlagSet("roomchat", pflag.ContinueOnError)}

	f.set.StringVar(&f.configPath, "config", "", "path to a YAML config file (default: $CONFIG_FILE)")
	f.set.StringVar(&f.host, "host", "", "listen host (default 0.0.0.0)")
	f.set.IntVarP(&f.port, "port", "p", 0, "listen port (default 6142)")
	f.set.StringVar(&f.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	f.set.StringVar(&f.envelope, "envelope", "", "broadcast envelope: json or text")

	return f
}

func (f *cliFlags) parse(args []string) error {
	return f.set.Parse(args)
}

// apply copies explicitly set flags onto cfg and revalidates it.
func (f *cliFlags) apply(cfg *configs.AppConfig) error {
	if f.set.Changed("host") {
		cfg.Host = f.host
	}
	if f.set.Changed("port") {
		cfg.Port = f.port
	}
	if f.set.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if f.set.Changed("envelope") {
		cfg.Envelope = f.envelope
	}

	return cfg.Validate()
}
