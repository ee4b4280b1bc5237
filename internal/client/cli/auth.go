package cli

import (
	"context"
	"fmt"

	"github.com/BayerTobias/videoflix/internal/client/forms"
	"github.com/BayerTobias/videoflix/internal/client/models"
)

// Login prompts for credentials, pre-filled from remember-me storage, and
// opens the home view on success.
//
// An empty username reuses the remembered one; an empty password reuses the
// remembered password when the username matches. The remember-me choice is
// stored before the request is made, as the form would.
func (a *App) Login(ctx context.Context) error {
	remembered, err := a.session.RememberedCredentials(ctx)
	if err != nil {
		a.logger.Warn(ctx, "read remembered credentials", "error", err)
	}

	prompt := "Enter username"
	if remembered != nil {
		prompt = fmt.Sprintf("Enter username [%s]", remembered.Username)
	}
	username, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password: ", a.out)
	if err != nil {
		return err
	}
	defer func() { wipeBytes(password) }()

	if remembered != nil {
		if username == "" {
			username = remembered.Username
		}
		if len(password) == 0 && username == remembered.Username {
			password = []byte(remembered.Password)
		}
	}

	answer, err := getSimpleText(a.reader, "Remember me? (y/N)", a.out)
	if err != nil {
		return err
	}

	form := forms.LoginForm{Username: username, Password: string(password), RememberMe: isYes(answer)}
	if err := forms.Validate(form); err != nil {
		a.reportErr(ctx, err)
		return err
	}

	if err := a.session.Remember(ctx, form.Credentials(), form.RememberMe); err != nil {
		a.logger.Warn(ctx, "update remembered credentials", "error", err)
	}

	return a.login(ctx, form.Username, form.Password)
}

// GuestLogin signs in with the configured guest account. Remembered
// credentials are left alone.
func (a *App) GuestLogin(ctx context.Context) error {
	return a.login(ctx, a.config.GuestUsername, a.config.GuestPassword)
}

func (a *App) login(ctx context.Context, username, password string) error {
	user, err := a.session.Login(ctx, username, password)
	if err != nil {
		a.reportErr(ctx, err)
		return err
	}
	if user == nil {
		user = &models.User{Username: username}
	}
	a.greet(user)
	return a.navigate(ctx, a.config.HomeURL)
}

// Logout always ends on the login view, even when the server call failed.
func (a *App) Logout(ctx context.Context) error {
	err := a.session.Logout(ctx)
	if err != nil {
		a.logger.Warn(ctx, "logout", "error", err)
		printlnFn("Logged out locally (server did not confirm)")
	} else {
		printlnFn("Logged out")
	}
	_ = a.navigate(ctx, a.config.LoginURL)
	return err
}

func (a *App) Register(ctx context.Context) error {
	_ = a.navigate(ctx, "/register")

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password: ", a.out)
	if err != nil {
		return err
	}
	defer func() { wipeBytes(password) }()
	repeat, err := getPassword("Repeat password: ", a.out)
	if err != nil {
		return err
	}
	defer func() { wipeBytes(repeat) }()

	form := forms.RegisterForm{Username: username, Email: email, Password: string(password), PasswordRepeat: string(repeat)}
	if err := forms.Validate(form); err != nil {
		a.reportErr(ctx, err)
		return err
	}

	if err := a.api.Register(ctx, form.Request()); err != nil {
		a.reportErr(ctx, err)
		return err
	}

	printlnFn("Registration successful. Check your inbox to activate the account.")
	return nil
}

// Activate opens the activation link view, which confirms the address.
func (a *App) Activate(ctx context.Context, uid, token string) error {
	return a.Open(ctx, "/activate/"+uid+"/"+token)
}

func (a *App) ForgotPassword(ctx context.Context) error {
	_ = a.navigate(ctx, "/forgot-password")

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	form := forms.ForgotPasswordForm{Email: email}
	if err := forms.Validate(form); err != nil {
		a.reportErr(ctx, err)
		return err
	}

	if err := a.api.RequestPasswordReset(ctx, form.Email); err != nil {
		a.reportErr(ctx, err)
		return err
	}

	printlnFn("If the address is registered, a reset link is on its way.")
	return nil
}

// ResetPassword opens the reset link view, which asks for the new password.
func (a *App) ResetPassword(ctx context.Context, uid, token string) error {
	return a.Open(ctx, "/reset-password/"+uid+"/"+token)
}

func (a *App) activate(ctx context.Context, uid, token string) error {
	if err := a.api.ActivateEmail(ctx, uid, token); err != nil {
		a.reportErr(ctx, err)
		return err
	}
	printlnFn("Email confirmed, you can log in now.")
	return a.navigate(ctx, a.config.LoginURL)
}

func (a *App) resetPassword(ctx context.Context, uid, token string) error {
	password, err := getPassword("New password: ", a.out)
	if err != nil {
		return err
	}
	defer func() { wipeBytes(password) }()
	repeat, err := getPassword("Repeat password: ", a.out)
	if err != nil {
		return err
	}
	defer func() { wipeBytes(repeat) }()

	form := forms.ResetPasswordForm{Password: string(password), PasswordRepeat: string(repeat)}
	if err := forms.Validate(form); err != nil {
		a.reportErr(ctx, err)
		return err
	}

	if err := a.api.ConfirmPasswordReset(ctx, uid, token, form.Password); err != nil {
		a.reportErr(ctx, err)
		return err
	}

	printlnFn("Password changed.")
	return a.navigate(ctx, a.config.LoginURL)
}
