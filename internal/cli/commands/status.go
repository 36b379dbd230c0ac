package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/cli/guard"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

func runStatus(ctx context.Context) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	if err := d.sessions.Startup(ctx); err != nil {
		return err
	}

	// In development mode, try the silent login before reporting
	if err := d.auto.Attempt(ctx); err != nil {
		d.log.Debug().Err(err).Msg("Auto-login attempt did not complete")
	}

	sess := d.sessions.Current()
	if sess.Authenticated && sess.User != nil {
		fmt.Printf("Logged in as %s (%s)\n", sess.User.Name, sess.User.Email)
		fmt.Printf("  Role: %s\n", sess.User.Role)
		return nil
	}

	fmt.Println("Not logged in.")
	fmt.Println("\nAuthenticate with: folio login --email <email>")
	return nil
}

// NewWhoamiCmd creates the whoami command, a guard-protected view of the
// current account
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the authenticated account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context())
		},
	}
}

func runWhoami(ctx context.Context) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	if err := d.sessions.Startup(ctx); err != nil {
		return err
	}

	decision := guard.Evaluate(ctx, d.sessions, guard.Options{
		RequireAuth:   true,
		RedirectDelay: guard.DefaultRedirectDelay,
	})

	switch decision {
	case guard.ShowContent:
		sess := d.sessions.Current()
		fmt.Println(sess.User.Email)
		return nil
	case guard.ShowLoading:
		return fmt.Errorf("session verification still in progress; try again")
	default:
		return fmt.Errorf("not logged in")
	}
}
