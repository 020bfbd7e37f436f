package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/flixflex/flixflex/internal/client/session"
	"github.com/flixflex/flixflex/internal/common"
)

func (a *App) login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeByteArray(password)

	if err := a.session.LoginWithEmail(ctx, email, string(password)); err != nil {
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Login successful")
}

func (a *App) loginUsername(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeByteArray(password)

	err = a.session.LoginWithUsername(ctx, username, string(password))
	switch {
	case errors.Is(err, session.ErrUsernameNotFound):
		fmt.Fprintln(a.out, "No account with that username")
	case err != nil:
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
	default:
		fmt.Fprintln(a.out, "Login successful")
	}
}

func (a *App) register(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Pick a username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	// advisory only: the reservation made during registration is what
	// actually decides
	if !a.session.CheckUsernameAvailable(ctx, username) {
		fmt.Fprintf(a.out, "Username %q looks taken, try another\n", username)
		return
	}

	name, err := GetSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	password, err := GetPassword("Pick a password", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeByteArray(password)

	err = a.session.Register(ctx, username, name, email, string(password))
	switch {
	case errors.Is(err, session.ErrUsernameTaken):
		fmt.Fprintln(a.out, "Username was taken in the meantime, try another")
	case err != nil:
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
	default:
		fmt.Fprintln(a.out, "Welcome to FlixFlex!")
	}
}

func (a *App) logout(ctx context.Context) {
	if err := a.session.Logout(ctx); err != nil {
		// local state is already cleared, only the revocation failed
		fmt.Fprintf(a.out, "Logout finished with a warning: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Logged out")
}

func (a *App) forgot(ctx context.Context) {
	identifier, err := GetSimpleText(a.reader, "Enter email or username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	ok, err := a.session.ForgotPassword(ctx, identifier)
	switch {
	case errors.Is(err, session.ErrUsernameNotFound):
		fmt.Fprintln(a.out, "No account with that username")
	case err != nil:
		fmt.Fprintf(a.out, "Could not send reset email: %v\n", err)
	case ok:
		fmt.Fprintln(a.out, "Reset email sent, check your inbox")
	}
}

func (a *App) check(ctx context.Context, username string) {
	if a.session.CheckUsernameAvailable(ctx, username) {
		fmt.Fprintf(a.out, "%s is available\n", username)
	} else {
		fmt.Fprintf(a.out, "%s is not available\n", username)
	}
}

func (a *App) whoami() {
	s := a.session.Snapshot()
	if s.User == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return
	}
	u := s.User
	fmt.Fprintf(a.out, "%s <%s> (%s)", u.Name, u.Email, u.Username)
	if s.Provisional {
		fmt.Fprint(a.out, " [cached, not yet confirmed]")
	}
	fmt.Fprintln(a.out)
}
