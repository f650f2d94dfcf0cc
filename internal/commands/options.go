package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/banketl/banketl/internal/config"
)

// ConfigFile is the default config file name.
const ConfigFile = "banketl.yaml"

// configFlags are shared by commands that read a configuration.
type configFlags struct {
	path         string
	url          string
	ratesPath    string
	csvPath      string
	dbPath       string
	table        string
	progressPath string
	logLevel     string
	logJSON      bool
}

func (f *configFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.path, "config", "c", ConfigFile, "config file (defaults are used if it does not exist)")
	fs.StringVar(&f.url, "url", "", "source document URL")
	fs.StringVar(&f.ratesPath, "rates", "", "exchange rate CSV path")
	fs.StringVar(&f.csvPath, "csv", "", "output CSV path")
	fs.StringVar(&f.dbPath, "db", "", "SQLite database path")
	fs.StringVar(&f.table, "table", "", "database table name")
	fs.StringVar(&f.progressPath, "progress-log", "", "progress log path")
	fs.StringVar(&f.logLevel, "log-level", "", "diagnostic log level (trace, debug, info, warn, error, off)")
	fs.BoolVar(&f.logJSON, "log-json", false, "emit diagnostic logs as JSON")
}

// resolve layers defaults, the config file, BANKETL_* variables and flags.
func (f *configFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config"):
		cfg = config.Default()
	default:
		return nil, err
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	overrides := []struct {
		flag   string
		value  string
		target *string
	}{
		{"url", f.url, &cfg.Source.URL},
		{"rates", f.ratesPath, &cfg.Rates.Path},
		{"csv", f.csvPath, &cfg.Output.CSVPath},
		{"db", f.dbPath, &cfg.Output.DBPath},
		{"table", f.table, &cfg.Output.Table},
		{"progress-log", f.progressPath, &cfg.Log.ProgressPath},
		{"log-level", f.logLevel, &cfg.Log.Level},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.target = o.value
		}
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = f.logJSON
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("resolving configuration: %w", err)
	}
	return cfg, nil
}
