package e2e

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/folio-dev/folio/internal/cli/autologin"
	"github.com/folio-dev/folio/internal/cli/client"
	"github.com/folio-dev/folio/internal/cli/credstore"
	"github.com/folio-dev/folio/internal/cli/guard"
	"github.com/folio-dev/folio/internal/cli/session"
	"github.com/folio-dev/folio/internal/config"
	"github.com/folio-dev/folio/internal/server"
)

// startServer boots a development-mode Folio server on a fresh SQLite
// database and exposes it over an in-process HTTP listener.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Addr:      ":0",
			WebOrigin: "http://localhost:5173",
		},
		Database: config.DatabaseConfig{
			URL: filepath.Join(t.TempDir(), "folio.sqlite"),
		},
		Development: true,
	}

	s, err := server.New(cfg, zerolog.Nop(), "e2e")
	require.NoError(t, err)

	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	srv := startServer(t)
	api := client.New(srv.URL)
	ctx := context.Background()

	// First-run setup creates the admin account
	resp, err := api.Setup(ctx, "admin@example.com", "admin123", "Admin")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "admin", resp.User.Role)

	store := credstore.NewMemory()

	t.Run("StartupWithoutCredential", func(t *testing.T) {
		sessions := session.NewManager(store, api, zerolog.Nop())
		require.NoError(t, sessions.Startup(ctx))

		sess := sessions.Current()
		require.False(t, sess.Authenticated)
		require.False(t, sess.Loading)
	})

	t.Run("LoginAndVerify", func(t *testing.T) {
		sessions := session.NewManager(store, api, zerolog.Nop())

		ok, err := sessions.Login(ctx, "admin@example.com", "admin123")
		require.NoError(t, err)
		require.True(t, ok)

		sess := sessions.Current()
		require.True(t, sess.Authenticated)
		require.Equal(t, "admin@example.com", sess.User.Email)

		// The stored credential survives a fresh process
		restarted := session.NewManager(store, api, zerolog.Nop())
		require.NoError(t, restarted.Startup(ctx))
		require.True(t, restarted.Current().Authenticated)

		decision := guard.Evaluate(ctx, restarted, guard.Options{RequireAuth: true})
		require.Equal(t, guard.ShowContent, decision)
	})

	t.Run("BadCredentialsDoNotAuthenticate", func(t *testing.T) {
		fresh := credstore.NewMemory()
		sessions := session.NewManager(fresh, api, zerolog.Nop())

		ok, err := sessions.Login(ctx, "admin@example.com", "wrong")
		require.NoError(t, err)
		require.False(t, ok)
		require.False(t, sessions.Current().Authenticated)
	})

	t.Run("LogoutRevokesServerSide", func(t *testing.T) {
		sessions := session.NewManager(store, api, zerolog.Nop())
		require.NoError(t, sessions.Startup(ctx))
		require.True(t, sessions.Current().Authenticated)

		token, has, err := store.Token()
		require.NoError(t, err)
		require.True(t, has)

		sessions.Logout(ctx)
		require.False(t, sessions.Current().Authenticated)

		_, has, err = store.Token()
		require.NoError(t, err)
		require.False(t, has)

		manualLogout, err := store.Flag(credstore.FlagManualLogout)
		require.NoError(t, err)
		require.True(t, manualLogout)

		// Server-side revocation is asynchronous; poll until the token is
		// rejected
		require.Eventually(t, func() bool {
			_, err := api.Verify(ctx, token)
			return err != nil
		}, 5*time.Second, 50*time.Millisecond)

		decision := guard.Evaluate(ctx, sessions, guard.Options{
			RequireAuth:   true,
			RedirectDelay: -1,
		})
		require.Equal(t, guard.Redirect, decision)
	})

	t.Run("AutoLoginRespectsManualLogout", func(t *testing.T) {
		sessions := session.NewManager(store, api, zerolog.Nop())
		require.NoError(t, sessions.Startup(ctx))

		runner := autologin.NewRunner(store, api, sessions, true, zerolog.Nop())
		require.NoError(t, runner.Attempt(ctx))

		// The manual logout from the previous step keeps the runner inert
		require.False(t, sessions.Current().Authenticated)
	})

	t.Run("AdminReenablesAutoLogin", func(t *testing.T) {
		sessions := session.NewManager(store, api, zerolog.Nop())

		ok, err := sessions.Login(ctx, "admin@example.com", "admin123")
		require.NoError(t, err)
		require.True(t, ok)

		controls, isAdmin := sessions.Admin()
		require.True(t, isAdmin)
		require.NoError(t, controls.EnableAutoAuth())

		disabled, err := store.Flag(credstore.FlagAutoAuthDisabled)
		require.NoError(t, err)
		require.False(t, disabled)
	})

	t.Run("AutoLoginFetchesDevToken", func(t *testing.T) {
		fresh := credstore.NewMemory()
		sessions := session.NewManager(fresh, api, zerolog.Nop())
		require.NoError(t, sessions.Startup(ctx))
		require.False(t, sessions.Current().Authenticated)

		runner := autologin.NewRunner(fresh, api, sessions, true, zerolog.Nop())
		require.NoError(t, runner.Attempt(ctx))

		sess := sessions.Current()
		require.True(t, sess.Authenticated)
		require.Equal(t, "admin", sess.User.Role)

		_, has, err := fresh.Token()
		require.NoError(t, err)
		require.True(t, has)
	})
}
