package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BayerTobias/videoflix/internal/client/client"
	"github.com/BayerTobias/videoflix/internal/client/models"
)

type fakeChecker struct {
	user  *models.User
	err   error
	calls int
}

func (f *fakeChecker) CheckCurrentUser(context.Context) (*models.User, error) {
	f.calls++
	return f.user, f.err
}

type recordingNavigator struct {
	redirects []string
}

func (n *recordingNavigator) Redirect(_ context.Context, rawURL string) {
	n.redirects = append(n.redirects, rawURL)
}

func TestAuthGuard_Allows(t *testing.T) {
	chk := &fakeChecker{user: &models.User{ID: 1, Username: "alice"}}
	nav := &recordingNavigator{}
	g := NewAuthGuard(chk, nav, "/login", nil)

	require.NoError(t, g.CanActivate(context.Background(), Match{Path: "/home"}))
	assert.Equal(t, 1, chk.calls)
	assert.Empty(t, nav.redirects)
}

func TestAuthGuard_DeniesOnAnyFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"no session", client.ErrNoSession},
		{"unauthorized", &client.Error{Op: "current user", Kind: client.ErrUnauthorized, Status: 401}},
		{"network", &client.Error{Op: "current user", Kind: client.ErrNetwork, Err: errors.New("connection refused")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chk := &fakeChecker{err: tc.err}
			nav := &recordingNavigator{}
			g := NewAuthGuard(chk, nav, "/login", nil)

			err := g.CanActivate(context.Background(), Match{Path: "/home"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, []string{"/login"}, nav.redirects)
		})
	}
}

func TestAuthGuard_NeverCaches(t *testing.T) {
	chk := &fakeChecker{user: &models.User{ID: 1}}
	g := NewAuthGuard(chk, nil, "/login", nil)
	ctx := context.Background()

	require.NoError(t, g.CanActivate(ctx, Match{}))
	chk.err = client.ErrUnauthorized
	require.Error(t, g.CanActivate(ctx, Match{}))
	assert.Equal(t, 2, chk.calls)
}

func TestAuthGuard_WithRouter(t *testing.T) {
	chk := &fakeChecker{err: client.ErrNoSession}
	r, err := New(DefaultRoutes(), Options{})
	require.NoError(t, err)
	r.SetGuard(NewAuthGuard(chk, r, "/login", nil))
	ctx := context.Background()

	_, err = r.NavigateByURL(ctx, "/home")
	require.ErrorIs(t, err, ErrNavigationDenied)
	cur, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, RouteLogin, cur.Route.Name)

	chk.err = nil
	chk.user = &models.User{ID: 1, Username: "alice"}
	m, err := r.NavigateByURL(ctx, "/home")
	require.NoError(t, err)
	assert.Equal(t, "/home?visibility=public", m.URL())
}
