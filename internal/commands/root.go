package commands

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/banketl/banketl/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "banketl",
		Short: "Extract, convert and load the largest banks by market cap",
		Long: heredoc.Doc(`
			banketl scrapes the largest banks table, converts each market cap
			from USD into GBP, EUR, INR and EGP, writes the result to a CSV
			file and a SQLite table, then runs the report queries.
		`),
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newQueryCommand())

	return rootCmd
}
