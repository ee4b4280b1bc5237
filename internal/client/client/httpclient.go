package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BayerTobias/videoflix/internal/client/models"
	"github.com/BayerTobias/videoflix/internal/logging"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// Options overrides HTTPClient dependencies. HTTPClient wins over Transport
// and Timeout when set.
type Options struct {
	HTTPClient *http.Client
	Transport  http.RoundTripper
	Timeout    time.Duration
	Logger     logging.Logger

	// Now feeds the cache-busting query parameter.
	Now func() time.Time
}

// HTTPClient talks to the Videoflix REST backend.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     logging.Logger
	now        func() time.Time
}

func New(baseURL string, opts Options) (*HTTPClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is empty")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse baseURL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("baseURL %q must be absolute", baseURL)
	}
	if parsed.Path == "" {
		parsed.Path = "/"
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Transport: opts.Transport, Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &HTTPClient{baseURL: parsed, httpClient: hc, logger: logger, now: now}, nil
}

// Login exchanges credentials for a session token.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	const op = "Login"
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/token/login", nil, models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return "", wrapError(op, ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.statusError(ctx, op, resp, map[int]error{
			http.StatusBadRequest:   ErrInvalidCredentials,
			http.StatusUnauthorized: ErrInvalidCredentials,
		})
	}

	var body models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &Error{Op: op, Kind: ErrUnexpectedStatus, Status: resp.StatusCode, Err: err}
	}
	if strings.TrimSpace(body.AuthToken) == "" {
		return "", &Error{Op: op, Kind: ErrInvalidCredentials, Status: resp.StatusCode, Err: errors.New("empty auth token")}
	}
	return body.AuthToken, nil
}

// Logout invalidates the server-side session of the token in use.
func (c *HTTPClient) Logout(ctx context.Context) error {
	const op = "Logout"
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/token/logout", nil, struct{}{})
	if err != nil {
		return wrapError(op, ErrNetwork, err)
	}
	return c.expectSuccess(ctx, op, resp, nil)
}

// CurrentUser validates the token by fetching the profile.
func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	const op = "CurrentUser"
	resp, err := c.do(ctx, http.MethodGet, "/auth/users/me/", c.cacheBust(nil), nil)
	if err != nil {
		return nil, wrapError(op, ErrNetwork, err)
	}
	var u models.User
	if err := c.decodeSuccess(ctx, op, resp, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	const op = "UpdateUser"
	resp, err := c.doJSON(ctx, http.MethodPatch, "/auth/users/me/", nil, upd)
	if err != nil {
		return nil, wrapError(op, ErrNetwork, err)
	}
	var u models.User
	if err := c.decodeSuccess(ctx, op, resp, map[int]error{http.StatusBadRequest: ErrValidation}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, currentPassword string) error {
	const op = "DeleteAccount"
	resp, err := c.doJSON(ctx, http.MethodDelete, "/auth/users/me/", nil, models.DeleteAccountRequest{CurrentPassword: currentPassword})
	if err != nil {
		return wrapError(op, ErrNetwork, err)
	}
	return c.expectSuccess(ctx, op, resp, map[int]error{http.StatusBadRequest: ErrInvalidCredentials})
}

// Register creates an inactive account; the server mails an activation link.
func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) error {
	const op = "Register"
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/users/", nil, req)
	if err != nil {
		return wrapError(op, ErrNetwork, err)
	}
	return c.expectSuccess(ctx, op, resp, map[int]error{http.StatusBadRequest: ErrValidation})
}

func (c *HTTPClient) ActivateEmail(ctx context.Context, uid, token string) error {
	const op = "ActivateEmail"
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/users/activation/", nil, models.ActivationRequest{UID: uid, Token: token})
	if err != nil {
		return wrapError(op, ErrNetwork, err)
	}
	return c.expectSuccess(ctx, op, resp, map[int]error{http.StatusBadRequest: ErrInvalidOrExpiredToken})
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "RequestPasswordReset"
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/users/reset_password/", nil, models.PasswordResetRequest{Email: email})
	if err != nil {
		return wrapError(op, ErrNetwork, err)
	}
	return c.expectSuccess(ctx, op, resp, map[int]error{http.StatusBadRequest: ErrValidation})
}

// ConfirmPasswordReset sets a new password. A 400 means the uid/token pair
// is stale, unless the server only rejected new_password itself.
func (c *HTTPClient) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) error {
	const op = "ConfirmPasswordReset"
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/users/reset_password_confirm/", nil,
		models.PasswordResetConfirm{UID: uid, Token: token, NewPassword: newPassword})
	if err != nil {
		return wrapError(op, ErrNetwork, err)
	}

	err = c.expectSuccess(ctx, op, resp, map[int]error{http.StatusBadRequest: ErrInvalidOrExpiredToken})

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest && onlyField(apiErr.Fields, "new_password") {
		apiErr.Kind = ErrValidation
	}
	return err
}

// ListVideos returns the videos of the given visibility. Private lists are
// cache-busted since they change after every upload.
func (c *HTTPClient) ListVideos(ctx context.Context, visibility models.Visibility) ([]models.Video, error) {
	const op = "ListVideos"
	q := url.Values{"visibility": {string(visibility)}}
	if visibility == models.VisibilityPrivate {
		q = c.cacheBust(q)
	}
	resp, err := c.do(ctx, http.MethodGet, "/videos/", q, nil)
	if err != nil {
		return nil, wrapError(op, ErrNetwork, err)
	}
	videos := make([]models.Video, 0)
	if err := c.decodeSuccess(ctx, op, resp, nil, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (c *HTTPClient) cacheBust(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	q.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))
	return q
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Response, error) {
	full := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		full.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, full.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, query url.Values, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return nil, err
		}
		body = buf
	}
	return c.do(ctx, method, path, query, body)
}

// expectSuccess closes resp and maps any non-2xx status to an *Error.
func (c *HTTPClient) expectSuccess(ctx context.Context, op string, resp *http.Response, overrides map[int]error) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return c.statusError(ctx, op, resp, overrides)
}

func (c *HTTPClient) decodeSuccess(ctx context.Context, op string, resp *http.Response, overrides map[int]error, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(ctx, op, resp, overrides)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &Error{Op: op, Kind: ErrUnexpectedStatus, Status: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

// statusError classifies a non-2xx response. overrides take precedence; then
// 401 and 403 mean ErrUnauthorized and anything else ErrUnexpectedStatus.
func (c *HTTPClient) statusError(ctx context.Context, op string, resp *http.Response, overrides map[int]error) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	kind, ok := overrides[resp.StatusCode]
	if !ok {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = ErrUnauthorized
		default:
			kind = ErrUnexpectedStatus
		}
	}

	apiErr := &Error{Op: op, Kind: kind, Status: resp.StatusCode, Fields: parseFieldErrors(body)}
	c.logger.Debug(ctx, "api request failed", "op", op, "status", resp.StatusCode, "kind", kind.Error())
	return apiErr
}

func onlyField(fields FieldErrors, name string) bool {
	if len(fields) != 1 {
		return false
	}
	_, ok := fields[name]
	return ok
}
