package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Long: `End the current session.

The stored credential is removed immediately and the development
auto-login is disabled until the next explicit login.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd)
		},
	}
}

func runLogout(cmd *cobra.Command) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	d.sessions.Logout(cmd.Context())

	fmt.Println("✓ Logged out.")
	return nil
}
