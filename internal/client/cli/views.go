package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/BayerTobias/videoflix/internal/client/client"
	"github.com/BayerTobias/videoflix/internal/client/forms"
	"github.com/BayerTobias/videoflix/internal/client/models"
	"github.com/BayerTobias/videoflix/internal/client/router"
)

// Videos opens the home view for the given visibility ("" means public).
func (a *App) Videos(ctx context.Context, visibility string) error {
	v, err := models.ParseVisibility(visibility)
	if err != nil {
		printlnFn("Usage: videos [public|private]")
		return err
	}
	return a.Open(ctx, "/home?"+url.Values{"visibility": {string(v)}}.Encode())
}

// Open navigates to rawURL and runs the view found there. Navigating to the
// current view runs it again.
func (a *App) Open(ctx context.Context, rawURL string) error {
	m, err := a.router.NavigateByURL(ctx, rawURL)
	if err != nil {
		a.reportErr(ctx, err)
		return err
	}
	return a.enter(ctx, m)
}

func (a *App) navigate(ctx context.Context, rawURL string) error {
	if _, err := a.router.NavigateByURL(ctx, rawURL); err != nil {
		a.reportErr(ctx, err)
		return err
	}
	return nil
}

func (a *App) enter(ctx context.Context, m router.Match) error {
	switch m.Route.Name {
	case router.RouteHome:
		v, err := models.ParseVisibility(m.Query.Get("visibility"))
		if err != nil {
			printlnFn("Unknown visibility:", m.Query.Get("visibility"))
			return err
		}
		return a.showVideos(ctx, v)
	case router.RouteActivate:
		return a.activate(ctx, m.Param("uid"), m.Param("token"))
	case router.RouteResetPassword:
		return a.resetPassword(ctx, m.Param("uid"), m.Param("token"))
	default:
		return nil
	}
}

func (a *App) showVideos(ctx context.Context, v models.Visibility) error {
	videos, err := a.api.ListVideos(ctx, v)
	if err != nil {
		a.reportErr(ctx, err)
		return err
	}

	if len(videos) == 0 {
		printlnFn(fmt.Sprintf("No %s videos", v))
		return nil
	}
	for _, vid := range videos {
		line := fmt.Sprintf("#%d %s", vid.ID, vid.Title)
		if vid.Genre != "" {
			line += " [" + vid.Genre + "]"
		}
		printlnFn(line)
	}
	return nil
}

func (a *App) greet(user *models.User) {
	if user == nil {
		return
	}
	printlnFn("Welcome,", user.DisplayName())
}

// reportErr shows field messages where they exist and a generic failure
// otherwise.
func (a *App) reportErr(ctx context.Context, err error) {
	a.logger.Debug(ctx, "command failed", "error", err)

	var formErr *forms.Error
	switch {
	case errors.As(err, &formErr):
		for _, msg := range formErr.Messages() {
			printlnFn(msg)
		}
	case errors.Is(err, client.ErrValidation) && len(client.FieldsOf(err)) > 0:
		fields := client.FieldsOf(err)
		for _, k := range fields.Keys() {
			printlnFn(fmt.Sprintf("%s: %s", k, strings.Join(fields[k], " ")))
		}
	case errors.Is(err, client.ErrNoSession), errors.Is(err, router.ErrNavigationDenied):
		printlnFn("Please log in first")
	case errors.Is(err, router.ErrRouteNotFound):
		printlnFn("Page not found")
	default:
		printlnFn("Request failed")
	}
}
