package cli

import (
	"bufio"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BayerTobias/videoflix/internal/client/client"
	"github.com/BayerTobias/videoflix/internal/client/config"
	"github.com/BayerTobias/videoflix/internal/client/models"
	"github.com/BayerTobias/videoflix/internal/client/repositories/tokens"
	"github.com/BayerTobias/videoflix/internal/client/router"
	"github.com/BayerTobias/videoflix/internal/client/services"
)

func newTestApp(t *testing.T, b *fakeBackend) *App {
	t.Helper()
	srv := httptest.NewServer(b.router())
	t.Cleanup(srv.Close)

	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerURL = srv.URL

	a, err := newApp(cfg, db, nil)
	require.NoError(t, err)
	a.out = io.Discard
	t.Cleanup(a.Close)
	return a
}

// stubInputs answers text prompts and password prompts from two queues.
// An exhausted queue behaves like a closed stdin.
func stubInputs(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(_ string, _ io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		s := passwords[0]
		passwords = passwords[1:]
		return []byte(s), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func storedToken(t *testing.T, a *App) string {
	t.Helper()
	tok, err := tokens.NewStore(a.db).Token(context.Background())
	require.NoError(t, err)
	return tok
}

func currentView(t *testing.T, a *App) string {
	t.Helper()
	m, ok := a.router.Current()
	require.True(t, ok, "no current view")
	return m.Route.Name
}

func TestApp_LoginAndProtectedNavigation(t *testing.T) {
	out := silence(t)
	a := newTestApp(t, newFakeBackend())
	ctx := context.Background()

	stubInputs(t, []string{"alice", "n"}, []string{"secret123"})
	require.NoError(t, a.Login(ctx))

	assert.Equal(t, "abc123", storedToken(t, a))
	assert.Equal(t, services.StateAuthenticated, a.session.State())
	assert.Equal(t, router.RouteHome, currentView(t, a))
	assert.Contains(t, *out, "Welcome, alice")
	assert.Contains(t, *out, "#1 Big Buck Bunny [animation]")
	assert.Equal(t, "(alice home)", a.status())

	require.NoError(t, a.Videos(ctx, "private"))
	assert.Contains(t, *out, "#2 Holiday")

	creds, err := a.session.RememberedCredentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestApp_LoginWrongPassword(t *testing.T) {
	out := silence(t)
	a := newTestApp(t, newFakeBackend())

	stubInputs(t, []string{"alice", ""}, []string{"wrong-pass"})
	err := a.Login(context.Background())

	require.ErrorIs(t, err, client.ErrInvalidCredentials)
	assert.Equal(t, services.StateAnonymous, a.session.State())
	assert.Empty(t, storedToken(t, a))
	assert.Contains(t, *out, "Request failed")
	_, ok := a.router.Current()
	assert.False(t, ok, "failed login must not navigate")
}

func TestApp_LoginFormValidation(t *testing.T) {
	out := silence(t)
	b := newFakeBackend()
	a := newTestApp(t, b)

	stubInputs(t, []string{"", "n"}, []string{""})
	require.Error(t, a.Login(context.Background()))

	assert.Contains(t, *out, "username is required")
	assert.Contains(t, *out, "password is required")
	assert.Zero(t, b.count("POST /auth/token/login"))
}

func TestApp_RevokedTokenRedirectsToLogin(t *testing.T) {
	out := silence(t)
	b := newFakeBackend()
	a := newTestApp(t, b)
	ctx := context.Background()

	stubInputs(t, []string{"alice", "n"}, []string{"secret123"})
	require.NoError(t, a.Login(ctx))

	b.revoke("abc123")

	err := a.Videos(ctx, "private")
	require.ErrorIs(t, err, router.ErrNavigationDenied)
	require.ErrorIs(t, err, client.ErrUnauthorized)

	assert.Equal(t, services.StateAnonymous, a.session.State())
	assert.Empty(t, storedToken(t, a))
	assert.Equal(t, router.RouteLogin, currentView(t, a))
	assert.Contains(t, *out, "Please log in first")
}

func TestApp_StartRestoresSession(t *testing.T) {
	silence(t)
	b := newFakeBackend()
	b.tokens["abc123"] = "alice"
	a := newTestApp(t, b)
	ctx := context.Background()

	require.NoError(t, tokens.NewStore(a.db).SetToken(ctx, "abc123"))
	a.start(ctx)

	assert.True(t, a.isLoggedIn())
	assert.Equal(t, router.RouteHome, currentView(t, a))
	assert.Equal(t, "abc123", storedToken(t, a))
}

func TestApp_StartWithStaleToken(t *testing.T) {
	out := silence(t)
	a := newTestApp(t, newFakeBackend())
	ctx := context.Background()

	store := tokens.NewStore(a.db)
	require.NoError(t, store.SetToken(ctx, "stale"))
	require.NoError(t, store.SetCredentials(ctx, models.Credentials{Username: "alice", Password: "secret123"}))
	a.start(ctx)

	assert.False(t, a.isLoggedIn())
	assert.Equal(t, router.RouteLogin, currentView(t, a))
	assert.Empty(t, storedToken(t, a))
	assert.Contains(t, *out, "Remembered user: alice (type 'login' and press Enter to reuse)")
}

func TestApp_StartWithoutToken(t *testing.T) {
	silence(t)
	b := newFakeBackend()
	a := newTestApp(t, b)

	a.start(context.Background())

	assert.Equal(t, router.RouteLogin, currentView(t, a))
	assert.Zero(t, b.count("GET /auth/users/me/"), "no token, no round trip")
}

func TestApp_RememberMePrefill(t *testing.T) {
	silence(t)
	a := newTestApp(t, newFakeBackend())
	ctx := context.Background()

	stubInputs(t, []string{"alice", "y"}, []string{"secret123"})
	require.NoError(t, a.Login(ctx))
	require.NoError(t, a.Logout(ctx))

	creds, err := a.session.RememberedCredentials(ctx)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "alice", creds.Username)

	// empty answers reuse the remembered pair; "n" forgets it afterwards
	stubInputs(t, []string{"", "n"}, []string{""})
	require.NoError(t, a.Login(ctx))
	assert.True(t, a.isLoggedIn())

	creds, err = a.session.RememberedCredentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestApp_GuestLogin(t *testing.T) {
	out := silence(t)
	a := newTestApp(t, newFakeBackend())

	require.NoError(t, a.GuestLogin(context.Background()))
	assert.Equal(t, "tok-guestuser", storedToken(t, a))
	assert.Contains(t, *out, "Welcome, guestuser")
}

func TestApp_LogoutClearsEvenWhenServerFails(t *testing.T) {
	out := silence(t)
	b := newFakeBackend()
	a := newTestApp(t, b)
	ctx := context.Background()

	stubInputs(t, []string{"alice", "n"}, []string{"secret123"})
	require.NoError(t, a.Login(ctx))

	b.mu.Lock()
	b.logoutFails = true
	b.mu.Unlock()

	require.Error(t, a.Logout(ctx))
	assert.Empty(t, storedToken(t, a))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, router.RouteLogin, currentView(t, a))
	assert.Contains(t, *out, "Logged out locally (server did not confirm)")
}

func TestApp_Register(t *testing.T) {
	out := silence(t)
	b := newFakeBackend()
	a := newTestApp(t, b)
	ctx := context.Background()

	stubInputs(t, []string{"bob", "bob@example.com"}, []string{"password1", "password2"})
	require.Error(t, a.Register(ctx))
	assert.Contains(t, *out, "passwords do not match")
	assert.Zero(t, b.count("POST /auth/users/"))

	stubInputs(t, []string{"alice", "alice@example.com"}, []string{"password1", "password1"})
	err := a.Register(ctx)
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Contains(t, *out, "username: A user with that username already exists.")

	stubInputs(t, []string{"bob", "bob@example.com"}, []string{"password1", "password1"})
	require.NoError(t, a.Register(ctx))
	assert.Contains(t, *out, "Registration successful. Check your inbox to activate the account.")
	assert.Equal(t, router.RouteRegister, currentView(t, a))
}

func TestApp_Activate(t *testing.T) {
	out := silence(t)
	a := newTestApp(t, newFakeBackend())
	ctx := context.Background()

	err := a.Activate(ctx, "u1", "stale")
	require.ErrorIs(t, err, client.ErrInvalidOrExpiredToken)
	assert.Contains(t, *out, "Request failed")

	require.NoError(t, a.Activate(ctx, "u1", "t1"))
	assert.Contains(t, *out, "Email confirmed, you can log in now.")
	assert.Equal(t, router.RouteLogin, currentView(t, a))
}

func TestApp_ForgotPassword(t *testing.T) {
	out := silence(t)
	b := newFakeBackend()
	a := newTestApp(t, b)
	ctx := context.Background()

	stubInputs(t, []string{"not-an-email"}, nil)
	require.Error(t, a.ForgotPassword(ctx))
	assert.Contains(t, *out, "email must be a valid email address")

	stubInputs(t, []string{"alice@example.com"}, nil)
	require.NoError(t, a.ForgotPassword(ctx))
	assert.Equal(t, 1, b.count("POST /auth/users/reset_password/"))
	assert.Equal(t, router.RouteForgotPassword, currentView(t, a))
}

func TestApp_ResetPassword(t *testing.T) {
	out := silence(t)
	a := newTestApp(t, newFakeBackend())
	ctx := context.Background()

	stubInputs(t, nil, []string{"newpass1", "newpass1"})
	err := a.ResetPassword(ctx, "u1", "expired")
	require.ErrorIs(t, err, client.ErrInvalidOrExpiredToken)
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, *out, "Request failed")

	stubInputs(t, nil, []string{"newpass1", "newpass1"})
	require.NoError(t, a.ResetPassword(ctx, "u1", "t1"))
	assert.Contains(t, *out, "Password changed.")
	assert.Equal(t, router.RouteLogin, currentView(t, a))
}

func TestApp_MeAndRename(t *testing.T) {
	out := silence(t)
	b := newFakeBackend()
	a := newTestApp(t, b)
	ctx := context.Background()

	require.ErrorIs(t, a.Me(ctx), client.ErrNoSession)
	assert.Contains(t, *out, "Please log in first")
	assert.Zero(t, b.count("GET /auth/users/me/"))

	stubInputs(t, []string{"alice", "n", "Alice", "Liddell"}, []string{"secret123"})
	require.NoError(t, a.Login(ctx))
	require.NoError(t, a.Rename(ctx))
	assert.Contains(t, *out, "Profile updated: Alice Liddell")

	require.NoError(t, a.Me(ctx))
	assert.Contains(t, *out, "#1 alice <alice@example.com>")
	assert.Contains(t, *out, "Name: Alice Liddell")
}

func TestApp_DeleteAccount(t *testing.T) {
	out := silence(t)
	a := newTestApp(t, newFakeBackend())
	ctx := context.Background()

	stubInputs(t, []string{"alice", "y"}, []string{"secret123", "wrong-pass", "secret123"})
	require.NoError(t, a.Login(ctx))

	err := a.DeleteAccount(ctx)
	require.ErrorIs(t, err, client.ErrInvalidCredentials)
	assert.True(t, a.isLoggedIn(), "a wrong password keeps the session")

	require.NoError(t, a.DeleteAccount(ctx))
	assert.Contains(t, *out, "Account deleted.")
	assert.False(t, a.isLoggedIn())
	assert.Empty(t, storedToken(t, a))
	assert.Equal(t, router.RouteLogin, currentView(t, a))

	creds, err := a.session.RememberedCredentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds, "deletion wipes remembered credentials")
}

func TestApp_OpenUnknownPage(t *testing.T) {
	out := silence(t)
	a := newTestApp(t, newFakeBackend())

	require.ErrorIs(t, a.Open(context.Background(), "/nowhere"), router.ErrRouteNotFound)
	assert.Contains(t, *out, "Page not found")
}

func TestApp_VideosBadVisibility(t *testing.T) {
	out := silence(t)
	a := newTestApp(t, newFakeBackend())

	require.Error(t, a.Videos(context.Background(), "secret"))
	assert.Contains(t, *out, "Usage: videos [public|private]")
}

func TestApp_VideosOnCurrentViewRevalidates(t *testing.T) {
	silence(t)
	b := newFakeBackend()
	a := newTestApp(t, b)
	ctx := context.Background()

	stubInputs(t, []string{"alice", "n"}, []string{"secret123"})
	require.NoError(t, a.Login(ctx))
	require.Equal(t, "/home?visibility=public", a.config.HomeURL)
	checks := b.count("GET /auth/users/me/")

	require.NoError(t, a.Videos(ctx, ""))
	assert.Equal(t, checks+1, b.count("GET /auth/users/me/"))

	b.revoke("abc123")
	err := a.Videos(ctx, "")
	require.ErrorIs(t, err, router.ErrNavigationDenied)
	assert.Equal(t, router.RouteLogin, currentView(t, a))
	assert.Equal(t, services.StateAnonymous, a.session.State())
}

func TestApp_REPLSharesReaderWithPrompts(t *testing.T) {
	out := silence(t)
	b := newFakeBackend()
	a := newTestApp(t, b)
	a.reader = bufio.NewReader(strings.NewReader("register\nbob\nbob@example.com\nexit\n"))

	origGP := getPassword
	t.Cleanup(func() { getPassword = origGP })
	getPassword = func(_ string, _ io.Writer) ([]byte, error) {
		return []byte("password1"), nil
	}

	runREPL(context.Background(), a, a.status, a.reader)

	assert.Equal(t, 1, b.count("POST /auth/users/"))
	assert.Contains(t, *out, "Registration successful. Check your inbox to activate the account.")
	assert.NotContains(t, *out, "Unknown command: bob")
	assert.Contains(t, *out, "Bye!")
}

func TestApp_LoginWipesRememberedPassword(t *testing.T) {
	silence(t)
	a := newTestApp(t, newFakeBackend())
	ctx := context.Background()

	stubInputs(t, []string{"alice", "y"}, []string{"secret123"})
	require.NoError(t, a.Login(ctx))
	require.NoError(t, a.Logout(ctx))

	var wiped []string
	origWipe := wipeBytes
	t.Cleanup(func() { wipeBytes = origWipe })
	wipeBytes = func(b []byte) {
		wiped = append(wiped, string(b))
		origWipe(b)
	}

	stubInputs(t, []string{"", "y"}, []string{""})
	require.NoError(t, a.Login(ctx))

	assert.Equal(t, []string{"secret123"}, wiped)
}
