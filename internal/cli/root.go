package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/cli/commands"
	"github.com/folio-dev/folio/internal/logger"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Folio - Portfolio management from the command line",
	Long: `Folio CLI - Manage your portfolio account and session.

The CLI keeps your credential in the OS keychain and verifies it against
the Folio server, so a session survives across invocations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Keep command output clean unless the user asks for more
		level := os.Getenv("LOG_LEVEL")
		if level == "" {
			level = "warn"
		}
		logger.Init(level, "console")
	},
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("folio version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSetupCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewStatusCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
