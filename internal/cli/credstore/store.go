// Package credstore persists the API credential and its control flags on
// the local machine. The token lives in the OS keychain/credential manager;
// the flags live in a small JSON state file. The two are keyed
// independently: clearing the token never touches the flags.
package credstore

// Control flag names
const (
	// FlagAutoAuthDisabled permanently stops the development auto-login
	// from injecting tokens until it is explicitly cleared.
	FlagAutoAuthDisabled = "auto_auth_disabled"

	// FlagManualLogout records an explicit logout. It distinguishes "the
	// user opted out" from "no session exists yet" and is cleared when a
	// later explicit login succeeds.
	FlagManualLogout = "manual_logout_performed"
)

// Store defines credential and flag persistence.
// Absent values are reported as absent, never as errors.
type Store interface {
	// Token returns the stored credential, or ok=false if none is stored
	Token() (token string, ok bool, err error)

	// SetToken overwrites the stored credential unconditionally
	SetToken(token string) error

	// ClearToken removes the credential only; flags are untouched
	ClearToken() error

	// Flag reports whether the named flag is set; unknown flags are false
	Flag(name string) (bool, error)

	// SetFlag sets the named flag
	SetFlag(name string) error

	// ClearFlag clears the named flag; clearing an unset flag is a no-op
	ClearFlag(name string) error
}
