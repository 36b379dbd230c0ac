// Package autologin implements the development convenience login: when no
// credential is stored and the user never opted out, it silently fetches a
// dev token and hands control back to the session manager. It is a
// convenience path, not a security boundary, and is fully disabled outside
// development mode.
package autologin

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/folio-dev/folio/internal/cli/client"
	"github.com/folio-dev/folio/internal/cli/credstore"
	"github.com/folio-dev/folio/internal/cli/session"
)

// TokenSource provides fresh development credentials
type TokenSource interface {
	DevToken(ctx context.Context) (*client.LoginResponse, error)
}

// Sessions is the slice of the session manager the runner needs
type Sessions interface {
	Current() session.Session
	Reverify(ctx context.Context) error
}

// Runner attempts silent development logins under strict guard conditions
type Runner struct {
	store    credstore.Store
	api      TokenSource
	sessions Sessions
	enabled  bool
	log      zerolog.Logger

	// retired is latched once an ordinary (non-admin) authenticated
	// session is observed; the runner never re-triggers after that.
	retired bool
}

// NewRunner creates a Runner. enabled must only be true in development
// builds; a disabled runner is inert.
func NewRunner(store credstore.Store, api TokenSource, sessions Sessions, enabled bool, log zerolog.Logger) *Runner {
	return &Runner{
		store:    store,
		api:      api,
		sessions: sessions,
		enabled:  enabled,
		log:      log,
	}
}

// Attempt runs one auto-login pass. All guard conditions must hold before
// it acts:
//
//  1. no manual logout is in effect (if one is, the runner is inert apart
//     from clearing a stray stored credential),
//  2. auto-auth has not been disabled,
//  3. the session is anonymous and not mid-verification,
//  4. once authenticated, only the privileged role keeps the runner armed.
//
// When a credential already exists but has not been verified yet, Attempt
// triggers re-verification instead of requesting another token, so
// repeated invocations never spawn duplicate requests.
func (r *Runner) Attempt(ctx context.Context) error {
	if !r.enabled || r.retired {
		return nil
	}

	sess := r.sessions.Current()

	// Never act mid-verification
	if sess.Loading {
		return nil
	}

	if sess.Authenticated {
		if sess.User == nil || sess.User.Role != session.RoleAdmin {
			r.retired = true
			r.log.Debug().Msg("Auto-login retired for ordinary session")
		}
		return nil
	}

	manualLogout, err := r.store.Flag(credstore.FlagManualLogout)
	if err != nil {
		return err
	}
	if manualLogout {
		// The user opted out. Stay inert, but do not leave a stray
		// credential behind in storage.
		if _, ok, _ := r.store.Token(); ok {
			if err := r.store.ClearToken(); err != nil {
				r.log.Error().Err(err).Msg("Failed to clear stray credential")
			}
		}
		return nil
	}

	disabled, err := r.store.Flag(credstore.FlagAutoAuthDisabled)
	if err != nil {
		return err
	}
	if disabled {
		return nil
	}

	if _, ok, err := r.store.Token(); err != nil {
		return err
	} else if ok {
		// A credential exists but verification has not run yet
		return r.sessions.Reverify(ctx)
	}

	resp, err := r.api.DevToken(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("Auto-login token request failed")
		return err
	}

	if err := r.store.SetToken(resp.Token); err != nil {
		return err
	}

	r.log.Info().Str("email", resp.User.Email).Msg("Auto-login stored development credential")

	return r.sessions.Reverify(ctx)
}
