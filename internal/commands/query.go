package commands

import (
	"github.com/spf13/cobra"

	"github.com/banketl/banketl/internal/logger"
	"github.com/banketl/banketl/internal/pipeline"
)

func newQueryCommand() *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run the report queries against an existing database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			log := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.JSON)
			_, err = pipeline.Query(cmd.Context(), cfg, cmd.OutOrStdout(), log)
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
