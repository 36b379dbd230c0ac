package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewSetupCmd creates the setup command
func NewSetupCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the first admin account on a fresh server",
		Long: `Performs first-run setup against the configured server.

Only works once per deployment: the server refuses setup after the first
admin account exists. The new credential is stored so you are logged in
immediately.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context(), email, password, name)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (or set FOLIO_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (or set FOLIO_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&name, "name", "", "Admin display name")

	return cmd
}

func runSetup(ctx context.Context, email, password, name string) error {
	if email == "" {
		email = os.Getenv("FOLIO_EMAIL")
	}
	if password == "" {
		password = os.Getenv("FOLIO_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or FOLIO_EMAIL env var)")
	}
	if name == "" {
		name = email
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}

	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or FOLIO_PASSWORD env var)")
		}
	}

	fmt.Printf("Setting up %s...\n", d.cfg.ServerURL)

	resp, err := d.api.Setup(ctx, email, password, name)
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	// Store the credential and log in against it so the session is usable
	// right away
	if err := d.store.SetToken(resp.Token); err != nil {
		return fmt.Errorf("setup succeeded but failed to store credential: %w", err)
	}
	if err := d.sessions.Startup(ctx); err != nil {
		return err
	}

	fmt.Println("✓ Setup complete!")
	fmt.Printf("  Admin: %s (%s)\n", resp.User.Name, resp.User.Email)

	return nil
}
