// Package guard maps session state to a render decision for UI consumers.
// It is a read-only consumer of the session manager: it never mutates
// state, it only decides what to show.
package guard

import (
	"context"
	"time"

	"github.com/folio-dev/folio/internal/cli/session"
)

// Decision is the render outcome for a protected view
type Decision int

const (
	// ShowLoading while a verification is outstanding
	ShowLoading Decision = iota

	// ShowContent when the view may render
	ShowContent

	// Redirect to the login flow
	Redirect
)

func (d Decision) String() string {
	switch d {
	case ShowLoading:
		return "show-loading"
	case ShowContent:
		return "show-content"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// DefaultRedirectDelay absorbs the window between a consumer mounting and
// the first startup verification resolving, so an almost-authenticated
// session does not flash a redirect.
const DefaultRedirectDelay = 500 * time.Millisecond

// recheckInterval is how often a pending redirect re-reads the session
const recheckInterval = 20 * time.Millisecond

// SessionSource provides the current session snapshot
type SessionSource interface {
	Current() session.Session
}

// Options configures an evaluation
type Options struct {
	// RequireAuth redirects anonymous sessions instead of rendering
	RequireAuth bool

	// RedirectDelay postpones the redirect verdict, cancelling it if the
	// session becomes authenticated in the meantime. Zero means
	// DefaultRedirectDelay; negative means redirect immediately.
	RedirectDelay time.Duration
}

// Evaluate translates the session into a render decision. An anonymous
// session behind RequireAuth is given RedirectDelay to become authenticated
// (a login resolving on the same tick, the first verification completing)
// before Redirect is returned; if authentication arrives within the delay,
// the pending redirect is cancelled and ShowContent wins.
func Evaluate(ctx context.Context, src SessionSource, opts Options) Decision {
	sess := src.Current()

	if sess.Loading {
		return ShowLoading
	}
	if !opts.RequireAuth || sess.Authenticated {
		return ShowContent
	}

	delay := opts.RedirectDelay
	if delay == 0 {
		delay = DefaultRedirectDelay
	}
	if delay < 0 {
		return Redirect
	}

	deadline := time.NewTimer(delay)
	defer deadline.Stop()
	ticker := time.NewTicker(recheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sess = src.Current()
			if sess.Authenticated {
				return ShowContent
			}
		case <-deadline.C:
			sess = src.Current()
			switch {
			case sess.Loading:
				return ShowLoading
			case sess.Authenticated:
				return ShowContent
			default:
				return Redirect
			}
		case <-ctx.Done():
			// The consumer went away; the redirect verdict is moot but
			// remains the safe answer.
			return Redirect
		}
	}
}
