package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/addressbook/internal/client/client"
	"github.com/dmitrijs2005/addressbook/internal/common"
)

// Indirections over the interactive input helpers, swapped in tests.
var (
	getSimpleText  = GetSimpleText
	getWithDefault = GetWithDefault
	getPassword    = GetPassword
)

// guard forgets the session when err shows the server no longer accepts it.
func (a *App) guard(err error) error {
	if errors.Is(err, client.ErrNotLoggedIn) ||
		errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrTokenExpired) {
		a.setEmail("")
	}
	return err
}

// Register prompts for email, display name and password and creates an
// account. The password is wiped before returning.
func (a *App) Register(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	userName, err := getSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Register(ctx, email, password, userName)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account %s created. Check your inbox to confirm it, then log in.\n", u.Email)
	return nil
}

// Verify confirms the email address with the token from the email link.
func (a *App) Verify(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("verify <token>")
	}
	msg, err := a.authService.VerifyEmail(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Resend asks for a new confirmation email.
func (a *App) Resend(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	msg, err := a.authService.ResendVerification(ctx, email)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Forgot requests a password reset email.
func (a *App) Forgot(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	msg, err := a.authService.RequestPasswordReset(ctx, email)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Reset sets a new password using the token from the reset email.
func (a *App) Reset(ctx context.Context, _ []string) error {
	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	msg, err := a.authService.ResetPassword(ctx, token, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Login prompts for credentials and starts a session.
//
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, email, password); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}

	a.setEmail(email)
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout ends the session on the server and forgets it locally.
func (a *App) Logout(ctx context.Context, _ []string) error {
	err := a.authService.Logout(ctx)
	a.setEmail("")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Me prints the current account.
func (a *App) Me(ctx context.Context, _ []string) error {
	u, err := a.authService.Me(ctx)
	if err != nil {
		return a.guard(err)
	}
	fmt.Fprintln(a.out, u)
	return nil
}

// Avatar uploads the image at the given path as the new avatar.
func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("avatar <path>")
	}
	u, err := a.authService.UploadAvatar(ctx, args[0])
	if err != nil {
		return a.guard(err)
	}
	fmt.Fprintln(a.out, "Avatar updated:", u.AvatarURL)
	return nil
}
