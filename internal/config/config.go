package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/banketl/banketl/internal/sink"
)

// ErrInvalid is returned when a configuration is incomplete.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the top-level banketl.yaml configuration.
type Config struct {
	Source SourceConfig `yaml:"source"`
	Rates  RatesConfig  `yaml:"rates"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// SourceConfig locates the document holding the banks table.
type SourceConfig struct {
	URL string `yaml:"url" env:"URL"`
	// Timeout bounds the fetch. Zero means no limit.
	Timeout time.Duration `yaml:"timeout,omitempty" env:"TIMEOUT"`
}

// RatesConfig points at the exchange rate CSV.
type RatesConfig struct {
	Path string `yaml:"path" env:"RATES_PATH"`
}

// OutputConfig names the file and relational sinks.
type OutputConfig struct {
	CSVPath string `yaml:"csv_path" env:"CSV_PATH"`
	DBPath  string `yaml:"db_path" env:"DB_PATH"`
	Table   string `yaml:"table" env:"TABLE"`
}

// LogConfig controls the progress log and diagnostics.
type LogConfig struct {
	ProgressPath string `yaml:"progress_path" env:"PROGRESS_LOG"`
	Level        string `yaml:"level" env:"LOG_LEVEL"`
	JSON         bool   `yaml:"json" env:"LOG_JSON"`
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BANKETL_"

// DefaultURL is an archived snapshot of the largest banks list.
const DefaultURL = "https://web.archive.org/web/20230908091635/https://en.wikipedia.org/wiki/List_of_largest_banks"

// Load reads a banketl.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL: DefaultURL,
		},
		Rates: RatesConfig{
			Path: "./exchange_rate.csv",
		},
		Output: OutputConfig{
			CSVPath: "./Largest_banks_data.csv",
			DBPath:  "./Banks.db",
			Table:   "Largest_banks",
		},
		Log: LogConfig{
			ProgressPath: "./code_log.txt",
			Level:        "info",
		},
	}
}

// ApplyEnv overrides fields from BANKETL_* environment variables.
// Unset variables leave the current value alone.
func ApplyEnv(cfg *Config) error {
	return ApplyEnvFrom(cfg, nil)
}

// ApplyEnvFrom is ApplyEnv reading from vars instead of the process
// environment when vars is non-nil.
func ApplyEnvFrom(cfg *Config, vars map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if vars != nil {
		opts.Environment = vars
	}
	for _, target := range []any{&cfg.Source, &cfg.Rates, &cfg.Output, &cfg.Log} {
		if err := env.ParseWithOptions(target, opts); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalid, err.Error())
		}
	}
	return nil
}

// Validate checks that every field a run needs is set.
func (c *Config) Validate() error {
	var problems []string
	required := []struct {
		name  string
		value string
	}{
		{"source.url", c.Source.URL},
		{"rates.path", c.Rates.Path},
		{"output.csv_path", c.Output.CSVPath},
		{"output.db_path", c.Output.DBPath},
		{"output.table", c.Output.Table},
		{"log.progress_path", c.Log.ProgressPath},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.name+" is required")
		}
	}

	u := c.Source.URL
	if u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		problems = append(problems, "source.url must be an http(s) URL")
	}
	if t := c.Output.Table; strings.TrimSpace(t) != "" {
		if _, err := sink.QuoteIdent(t); err != nil {
			problems = append(problems, "output.table: "+err.Error())
		}
	}
	if c.Source.Timeout < 0 {
		problems = append(problems, "source.timeout must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, ", "))
	}
	return nil
}
