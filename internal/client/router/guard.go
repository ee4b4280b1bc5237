package router

import (
	"context"
	"fmt"

	"github.com/BayerTobias/videoflix/internal/client/client"
	"github.com/BayerTobias/videoflix/internal/client/models"
	"github.com/BayerTobias/videoflix/internal/logging"
)

// UserChecker revalidates the stored session against the server.
type UserChecker interface {
	CheckCurrentUser(ctx context.Context) (*models.User, error)
}

// AuthGuard admits a navigation only after a successful current-user round
// trip. The result is never cached, so a token revoked on the server stops
// granting access at the next navigation.
type AuthGuard struct {
	checker  UserChecker
	nav      client.Navigator
	loginURL string
	logger   logging.Logger
}

var _ Guard = (*AuthGuard)(nil)

func NewAuthGuard(checker UserChecker, nav client.Navigator, loginURL string, logger logging.Logger) *AuthGuard {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AuthGuard{checker: checker, nav: nav, loginURL: loginURL, logger: logger.With("component", "guard")}
}

// CanActivate redirects to the login view on any failure, whatever its kind.
func (g *AuthGuard) CanActivate(ctx context.Context, m Match) error {
	if _, err := g.checker.CheckCurrentUser(ctx); err != nil {
		g.logger.Debug(ctx, "guard rejected", "url", m.URL(), "error", err)
		if g.nav != nil {
			g.nav.Redirect(ctx, g.loginURL)
		}
		return fmt.Errorf("check current user: %w", err)
	}
	return nil
}
