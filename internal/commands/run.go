package commands

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/banketl/banketl/internal/logger"
	"github.com/banketl/banketl/internal/pipeline"
)

func newRunCommand() *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full extract, transform, load and query pipeline",
		Long: heredoc.Doc(`
			Fetch the source table, convert market caps with the exchange rate
			file, replace the CSV output and the database table, then print the
			results of the report queries.

			Settings come from the config file, then BANKETL_* environment
			variables, then flags.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			log := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.JSON)
			report, err := pipeline.Run(cmd.Context(), cfg, pipeline.Options{
				Logger: log,
				Output: cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}

			log.Info("run complete", "run_id", report.RunID, "records", len(report.Records))
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d banks into %s (%s) and %s\n",
				len(report.Records), cfg.Output.DBPath, cfg.Output.Table, cfg.Output.CSVPath)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
