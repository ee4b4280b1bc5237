package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/BayerTobias/videoflix/internal/client/client"
	"github.com/BayerTobias/videoflix/internal/client/config"
	"github.com/BayerTobias/videoflix/internal/client/repositories/tokens"
	"github.com/BayerTobias/videoflix/internal/client/router"
	"github.com/BayerTobias/videoflix/internal/client/services"
	"github.com/BayerTobias/videoflix/internal/logging"

	_ "modernc.org/sqlite"
)

// App is the interactive client. It owns the single SessionManager instance
// and hands it to the request interceptor and the route guard.
type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	api     client.Client
	session services.SessionManager
	router  *router.Router
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp opens the local database and wires every component.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	a, err := newApp(c, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// newApp builds the component graph on top of an initialised database.
//
// Order matters: the interceptor needs the session and the router, both of
// which sit on top of the API client that uses the interceptor. The two are
// attached once everything exists.
func newApp(c *config.Config, db *sql.DB, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	transport := client.NewAuthTransport(nil, c.LoginURL, logger)
	api, err := client.New(c.ServerURL, client.Options{
		Transport: transport,
		Timeout:   c.RequestTimeout,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}

	session := services.NewSessionManager(api, tokens.NewStore(db), logger)
	transport.SetSession(session)

	r, err := router.New(router.DefaultRoutes(), router.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	r.SetGuard(router.NewAuthGuard(session, r, c.LoginURL, logger))
	transport.SetNavigator(r)

	a := &App{
		config:  c,
		logger:  logger,
		db:      db,
		api:     api,
		session: session,
		router:  r,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	r.OnNavigate(a.onNavigate)
	return a, nil
}

// Run restores the previous session and blocks in the REPL until the user
// exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to Videoflix (type 'help' for commands)")
	a.start(ctx)
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

// start revalidates a stored token. With a valid one the user lands on the
// home view, otherwise on the login view with the remembered username shown.
func (a *App) start(ctx context.Context) {
	user, err := a.session.RestoreSession(ctx)
	if err == nil {
		a.greet(user)
		_ = a.navigate(ctx, a.config.HomeURL)
		return
	}
	a.logger.Debug(ctx, "no session restored", "error", err)

	_ = a.navigate(ctx, a.config.LoginURL)
	if creds, err := a.session.RememberedCredentials(ctx); err == nil && creds != nil {
		printlnFn(fmt.Sprintf("Remembered user: %s (type 'login' and press Enter to reuse)", creds.Username))
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) status() string {
	view := "-"
	if m, ok := a.router.Current(); ok {
		view = m.Route.Name
	}
	if u := a.session.CurrentUser(); u != nil {
		return fmt.Sprintf("(%s %s)", u.Username, view)
	}
	return fmt.Sprintf("(%s)", view)
}

func (a *App) onNavigate(m router.Match) {
	printlnFn("->", m.URL())
}
