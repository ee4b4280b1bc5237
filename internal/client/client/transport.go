package client

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/BayerTobias/videoflix/internal/common"
	"github.com/BayerTobias/videoflix/internal/logging"
)

// Session is what the interceptor needs from the session owner: a read-only
// view of the stored token and a way to report an authorization failure.
type Session interface {
	TokenSource(ctx context.Context) oauth2.TokenSource
	Invalidate(ctx context.Context, reason error)
}

// Navigator moves the UI to another view.
type Navigator interface {
	Redirect(ctx context.Context, rawURL string)
}

// AuthTransport attaches the stored token to every outgoing request and
// reacts to 401 responses by invalidating the session and redirecting to the
// login view. The response itself is always handed back unchanged.
//
// Session and Navigator are attached after construction because both depend
// on the API client that uses this transport.
type AuthTransport struct {
	base     http.RoundTripper
	loginURL string
	logger   logging.Logger

	mu        sync.RWMutex
	session   Session
	navigator Navigator
}

// NewAuthTransport wraps base (http.DefaultTransport when nil).
func NewAuthTransport(base http.RoundTripper, loginURL string, logger logging.Logger) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AuthTransport{base: base, loginURL: loginURL, logger: logger}
}

func (t *AuthTransport) SetSession(s Session) {
	t.mu.Lock()
	t.session = s
	t.mu.Unlock()
}

func (t *AuthTransport) SetNavigator(n Navigator) {
	t.mu.Lock()
	t.navigator = n
	t.mu.Unlock()
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	t.mu.RLock()
	session, navigator := t.session, t.navigator
	t.mu.RUnlock()

	out := req.Clone(ctx)
	reqID := out.Header.Get(common.RequestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
		out.Header.Set(common.RequestIDHeader, reqID)
	}

	authenticated := false
	if session != nil {
		if tok, err := session.TokenSource(ctx).Token(); err == nil && tok.Valid() {
			tok.SetAuthHeader(out)
			authenticated = true
		}
	}

	log := t.logger.With("request_id", reqID, "method", out.Method, "path", out.URL.Path)

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		log.Debug(ctx, "request failed", "error", err)
		return nil, err
	}
	log.Debug(ctx, "request done", "status", resp.StatusCode, "authenticated", authenticated)

	if resp.StatusCode == http.StatusUnauthorized {
		log.Warn(ctx, "authorization rejected, dropping session")
		if session != nil {
			session.Invalidate(ctx, ErrUnauthorized)
		}
		if navigator != nil && t.loginURL != "" {
			navigator.Redirect(ctx, t.loginURL)
		}
	}

	return resp, nil
}
