package cmd

import (
	"github.com/spf13/cobra"

	"squash/internal/config"
)

// runFlags are shared by every command that discovers files.
type runFlags struct {
	configPath string
	dmi        bool
	ogg        bool
	threads    int
	fast       bool
	noProgress bool
	logLevel   string
	logFormat  string
}

func (f *runFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "path to a TOML config file (default ~/.config/squash/config.toml)")
	flags.BoolVarP(&f.dmi, "dmi", "d", false, "optimize dmi and png files")
	flags.BoolVarP(&f.ogg, "ogg", "o", false, "optimize ogg files")
	flags.IntVarP(&f.threads, "threads", "t", 0, "number of worker threads (default: logical cores - 1)")
	flags.BoolVarP(&f.fast, "fast", "f", false, "optimize dmi and png files faster, possibly with larger output")
	flags.BoolVar(&f.noProgress, "no-progress", false, "disable the live progress view")
	flags.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&f.logFormat, "log-format", "", "log format: console or json")
}

// load reads the config file and lays explicitly set flags over it.
func (f *runFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, _, _, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dmi") {
		cfg.Targets.DMI = f.dmi
	}
	if flags.Changed("ogg") {
		cfg.Targets.OGG = f.ogg
	}
	if flags.Changed("threads") {
		cfg.Threads = f.threads
	}
	if flags.Changed("fast") {
		cfg.Fast = f.fast
	}
	if f.noProgress {
		cfg.Progress = false
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
