package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var serverURL string
	var development bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a folio.json configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(serverURL, development)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Folio API base URL")
	cmd.Flags().BoolVar(&development, "dev", false, "Enable the development auto-login")

	return cmd
}

func runInit(serverURL string, development bool) error {
	if _, err := os.Stat(config.ConfigFileName); err == nil {
		return fmt.Errorf("%s already exists", config.ConfigFileName)
	}

	cfg := &config.Config{
		ServerURL:   serverURL,
		Development: development,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Printf("Created %s pointing at %s\n", config.ConfigFileName, serverURL)
	if development {
		fmt.Println("Development auto-login is enabled.")
	}
	return nil
}
