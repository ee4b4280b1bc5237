package cli

import (
	"context"
	"fmt"

	"github.com/BayerTobias/videoflix/internal/client/forms"
)

// Me revalidates the session and prints the profile.
func (a *App) Me(ctx context.Context) error {
	user, err := a.session.CheckCurrentUser(ctx)
	if err != nil {
		a.reportErr(ctx, err)
		return err
	}

	printlnFn(fmt.Sprintf("#%d %s <%s>", user.ID, user.Username, user.Email))
	if name := user.DisplayName(); name != user.Username {
		printlnFn("Name:", name)
	}
	return nil
}

// Rename updates first and last name.
func (a *App) Rename(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Please log in first")
		return nil
	}

	first, err := getSimpleText(a.reader, "First name", a.out)
	if err != nil {
		return err
	}
	last, err := getSimpleText(a.reader, "Last name", a.out)
	if err != nil {
		return err
	}

	form := forms.ProfileForm{FirstName: first, LastName: last}
	if err := forms.Validate(form); err != nil {
		a.reportErr(ctx, err)
		return err
	}

	user, err := a.session.UpdateProfile(ctx, form.Update())
	if err != nil {
		a.reportErr(ctx, err)
		return err
	}

	printlnFn("Profile updated:", user.DisplayName())
	return nil
}

// DeleteAccount asks for the current password. On success every local key,
// remembered credentials included, is gone and the login view is shown.
func (a *App) DeleteAccount(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Please log in first")
		return nil
	}

	password, err := getPassword("Current password: ", a.out)
	if err != nil {
		return err
	}
	defer func() { wipeBytes(password) }()

	form := forms.DeleteAccountForm{Password: string(password)}
	if err := forms.Validate(form); err != nil {
		a.reportErr(ctx, err)
		return err
	}

	if err := a.session.DeleteAccount(ctx, form.Password); err != nil {
		a.reportErr(ctx, err)
		return err
	}

	printlnFn("Account deleted.")
	return a.navigate(ctx, a.config.LoginURL)
}
