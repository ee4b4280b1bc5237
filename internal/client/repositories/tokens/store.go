// Package tokens is the persistent token store: the session token slot and
// the optional remember-me credentials, kept in the metadata table under the
// keys "token", "username" and "password".
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/BayerTobias/videoflix/internal/client/models"
	"github.com/BayerTobias/videoflix/internal/client/repositories/metadata"
	"github.com/BayerTobias/videoflix/internal/common"
	"github.com/BayerTobias/videoflix/internal/dbx"
)

var ErrEmptyToken = errors.New("empty token")

// Store reads absent values as "" or nil without error, and clearing an
// absent value is a no-op. Token contents are never inspected.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *Store) Token(ctx context.Context) (string, error) {
	v, err := s.repo().Get(ctx, common.StorageKeyToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return s.repo().Set(ctx, common.StorageKeyToken, []byte(token))
}

func (s *Store) ClearToken(ctx context.Context) error {
	return s.repo().Delete(ctx, common.StorageKeyToken)
}

// Credentials returns nil unless both username and password are stored.
func (s *Store) Credentials(ctx context.Context) (*models.Credentials, error) {
	repo := s.repo()

	username, err := repo.Get(ctx, common.StorageKeyUsername)
	if err != nil {
		return nil, err
	}
	password, err := repo.Get(ctx, common.StorageKeyPassword)
	if err != nil {
		return nil, err
	}
	if len(username) == 0 || len(password) == 0 {
		return nil, nil
	}

	return &models.Credentials{Username: string(username), Password: string(password)}, nil
}

// SetCredentials writes both halves in one transaction.
func (s *Store) SetCredentials(ctx context.Context, creds models.Credentials) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.StorageKeyUsername, []byte(creds.Username)); err != nil {
			return err
		}
		return repo.Set(ctx, common.StorageKeyPassword, []byte(creds.Password))
	})
	if err != nil {
		return fmt.Errorf("remember credentials: %w", err)
	}
	return nil
}

func (s *Store) ClearCredentials(ctx context.Context) error {
	return s.repo().Delete(ctx, common.StorageKeyUsername, common.StorageKeyPassword)
}

// Clear wipes every stored key, token and credentials alike.
func (s *Store) Clear(ctx context.Context) error {
	return s.repo().Clear(ctx)
}
