package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/banketl/banketl/internal/config"
	"github.com/banketl/banketl/internal/model"
	"github.com/banketl/banketl/internal/rates"
)

// sampleRates seeds exchange_rate.csv for a new project.
var sampleRates = model.RateTable{
	model.EUR: decimal.RequireFromString("0.93"),
	model.GBP: decimal.RequireFromString("0.8"),
	model.INR: decimal.RequireFromString("82.95"),
	model.EGP: decimal.RequireFromString("30.9"),
}

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default config and exchange rate file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized banketl project at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")

	return cmd
}

func runInit(dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	cfgPath := filepath.Join(dir, ConfigFile)
	ratesPath := filepath.Join(dir, "exchange_rate.csv")
	if !force {
		for _, p := range []string{cfgPath, ratesPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", p)
			}
		}
	}

	// Write banketl.yaml.
	if err := config.Save(cfgPath, config.Default()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write exchange_rate.csv.
	f, err := os.Create(ratesPath)
	if err != nil {
		return fmt.Errorf("creating exchange rate file: %w", err)
	}
	defer f.Close()

	codes := []string{model.EUR, model.GBP, model.INR, model.EGP}
	if err := rates.Write(f, sampleRates, codes); err != nil {
		return fmt.Errorf("writing exchange rate file: %w", err)
	}
	return f.Close()
}
