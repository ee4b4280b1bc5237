package client

import (
	"context"

	"github.com/BayerTobias/videoflix/internal/client/models"
)

// Client is the backend contract: one method per endpoint, one round trip
// each, no local recovery.
type Client interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	DeleteAccount(ctx context.Context, currentPassword string) error

	Register(ctx context.Context, req models.RegisterRequest) error
	ActivateEmail(ctx context.Context, uid, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) error

	ListVideos(ctx context.Context, visibility models.Visibility) ([]models.Video, error)
}

var _ Client = (*HTTPClient)(nil)
