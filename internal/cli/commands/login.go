package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the Folio server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set FOLIO_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set FOLIO_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, email, password string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("FOLIO_EMAIL")
	}
	if password == "" {
		password = os.Getenv("FOLIO_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or FOLIO_EMAIL env var)")
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println() // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or FOLIO_PASSWORD env var)")
		}
	}

	fmt.Printf("Logging in to %s...\n", d.cfg.ServerURL)

	ok, err := d.sessions.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("login failed: invalid email or password")
	}

	sess := d.sessions.Current()
	fmt.Println("✓ Login successful!")
	if sess.User != nil {
		fmt.Printf("  User: %s (%s)\n", sess.User.Name, sess.User.Email)
		if sess.User.Role == "admin" {
			fmt.Println("  Role: Admin")
		}
	}

	return nil
}
