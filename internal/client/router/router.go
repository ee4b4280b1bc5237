// Package router implements client-side navigation between views: a route
// table matched with chi, per-route query defaults, redirects and a guard
// consulted before entering protected routes.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/BayerTobias/videoflix/internal/client/client"
	"github.com/BayerTobias/videoflix/internal/logging"
)

var (
	ErrRouteNotFound    = errors.New("route not found")
	ErrNavigationDenied = errors.New("navigation denied")
	ErrRedirectLoop     = errors.New("too many redirects")
)

const maxRedirects = 5

// Route describes one view. Pattern uses chi syntax, e.g.
// "/reset-password/{uid}/{token}".
type Route struct {
	Name      string
	Pattern   string
	Protected bool

	// DefaultQuery is merged into the query of every navigation to this
	// route for keys the caller did not set.
	DefaultQuery url.Values

	// RedirectTo, when set, turns the route into an alias.
	RedirectTo string
}

// Match is the outcome of a successful navigation.
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
	Query  url.Values
}

func (m Match) Param(key string) string {
	return m.Params[key]
}

// URL renders the path and the (sorted) query.
func (m Match) URL() string {
	if len(m.Query) == 0 {
		return m.Path
	}
	return m.Path + "?" + m.Query.Encode()
}

// Guard decides whether a protected route may be entered. A non-nil error
// denies the navigation.
type Guard interface {
	CanActivate(ctx context.Context, m Match) error
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(ctx context.Context, m Match) error

func (f GuardFunc) CanActivate(ctx context.Context, m Match) error { return f(ctx, m) }

// Names of the default routes.
const (
	RouteLogin          = "login"
	RouteRegister       = "register"
	RouteForgotPassword = "forgot-password"
	RouteResetPassword  = "reset-password"
	RouteActivate       = "activate"
	RouteImprint        = "imprint"
	RoutePrivacy        = "privacy"
	RouteHome           = "home"
)

// DefaultRoutes is the Videoflix route table. Every view except home is
// reachable without a session.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "root", Pattern: "/", RedirectTo: "/login"},
		{Name: RouteLogin, Pattern: "/login"},
		{Name: RouteRegister, Pattern: "/register"},
		{Name: RouteForgotPassword, Pattern: "/forgot-password"},
		{Name: RouteResetPassword, Pattern: "/reset-password/{uid}/{token}"},
		{Name: RouteActivate, Pattern: "/activate/{uid}/{token}"},
		{Name: RouteImprint, Pattern: "/imprint"},
		{Name: RoutePrivacy, Pattern: "/privacy"},
		{
			Name:         RouteHome,
			Pattern:      "/home",
			Protected:    true,
			DefaultQuery: url.Values{"visibility": {"public"}},
		},
	}
}

type Options struct {
	Guard  Guard
	Logger logging.Logger
}

// Router keeps the current view. It is safe for concurrent use; the guard
// runs without any router lock held so it may itself redirect.
type Router struct {
	mux    *chi.Mux
	routes map[string]Route
	logger logging.Logger

	mu        sync.RWMutex
	guard     Guard
	current   *Match
	observers []func(Match)
}

var _ client.Navigator = (*Router)(nil)

func New(routes []Route, opts Options) (*Router, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	r := &Router{
		mux:    chi.NewRouter(),
		routes: make(map[string]Route, len(routes)),
		logger: logger.With("component", "router"),
		guard:  opts.Guard,
	}

	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, rt := range routes {
		if rt.Pattern == "" || !strings.HasPrefix(rt.Pattern, "/") {
			return nil, fmt.Errorf("route %q: pattern must start with /", rt.Name)
		}
		if _, dup := r.routes[rt.Pattern]; dup {
			return nil, fmt.Errorf("route %q: duplicate pattern %s", rt.Name, rt.Pattern)
		}
		r.routes[rt.Pattern] = rt
		r.mux.Get(rt.Pattern, noop)
	}

	return r, nil
}

// SetGuard replaces the guard used for protected routes.
func (r *Router) SetGuard(g Guard) {
	r.mu.Lock()
	r.guard = g
	r.mu.Unlock()
}

// OnNavigate registers fn to be called after every completed navigation.
func (r *Router) OnNavigate(fn func(Match)) {
	r.mu.Lock()
	r.observers = append(r.observers, fn)
	r.mu.Unlock()
}

// Current returns the active view, if any.
func (r *Router) Current() (Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return Match{}, false
	}
	return *r.current, true
}

// Resolve matches rawURL against the route table, following aliases and
// applying query defaults. It does not consult the guard.
func (r *Router) Resolve(rawURL string) (Match, error) {
	for range maxRedirects {
		m, err := r.match(rawURL)
		if err != nil {
			return Match{}, err
		}
		if m.Route.RedirectTo == "" {
			return m, nil
		}
		rawURL = m.Route.RedirectTo
	}
	return Match{}, fmt.Errorf("resolve %s: %w", rawURL, ErrRedirectLoop)
}

// NavigateByURL resolves rawURL and makes it the current view. Protected
// routes are entered only if the guard allows it, including when rawURL is
// already the current view; a denial returns ErrNavigationDenied and leaves
// whatever navigation the guard performed. Observers are not notified when
// the current URL does not change.
func (r *Router) NavigateByURL(ctx context.Context, rawURL string) (Match, error) {
	m, err := r.Resolve(rawURL)
	if err != nil {
		return Match{}, err
	}

	r.mu.RLock()
	guard := r.guard
	same := r.current != nil && r.current.URL() == m.URL()
	r.mu.RUnlock()

	if same && !m.Route.Protected {
		return m, nil
	}

	if m.Route.Protected {
		if guard == nil {
			return Match{}, fmt.Errorf("%s: no guard configured: %w", m.Path, ErrNavigationDenied)
		}
		if err := guard.CanActivate(ctx, m); err != nil {
			r.logger.Info(ctx, "navigation denied", "url", m.URL(), "error", err)
			return Match{}, fmt.Errorf("%s: %w: %w", m.Path, ErrNavigationDenied, err)
		}
	}

	r.mu.Lock()
	if r.current != nil && r.current.URL() == m.URL() {
		r.mu.Unlock()
		return m, nil
	}
	cur := m
	r.current = &cur
	observers := append([]func(Match){}, r.observers...)
	r.mu.Unlock()

	r.logger.Debug(ctx, "navigated", "route", m.Route.Name, "url", m.URL())
	for _, fn := range observers {
		fn(m)
	}
	return m, nil
}

// Redirect navigates and only logs failures; it is used by the request
// interceptor and the guard.
func (r *Router) Redirect(ctx context.Context, rawURL string) {
	if _, err := r.NavigateByURL(ctx, rawURL); err != nil {
		r.logger.Warn(ctx, "redirect failed", "url", rawURL, "error", err)
	}
}

func (r *Router) match(rawURL string) (Match, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Match{}, fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, path) {
		return Match{}, fmt.Errorf("%s: %w", path, ErrRouteNotFound)
	}

	rt, ok := r.routes[rctx.RoutePattern()]
	if !ok {
		return Match{}, fmt.Errorf("%s: %w", path, ErrRouteNotFound)
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}

	query := u.Query()
	for k, v := range rt.DefaultQuery {
		if query.Get(k) == "" {
			query[k] = append([]string(nil), v...)
		}
	}

	return Match{Route: rt, Path: path, Params: params, Query: query}, nil
}
