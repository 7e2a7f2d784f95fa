package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/opscore/cmdcenter/internal/client/api"
	"github.com/opscore/cmdcenter/internal/client/lockout"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates. While a lockout is active
// the prompt is refused outright; the countdown is shown instead. A rejection
// carrying the server's lockout signal arms the local timer, so subsequent
// attempts are refused without touching the network.
func (a *App) Login(ctx context.Context) error {
	if a.lockout.Locked(ctx) {
		fmt.Printf("Account locked. Try again in %s.\n", lockout.FormatRemaining(a.lockout.Remaining(ctx)))
		return nil
	}

	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, username, password); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			if a.lockout.NoteLoginFailure(ctx, apiErr.Detail) {
				fmt.Printf("%s (lockout active for %s)\n", apiErr.Detail, lockout.FormatRemaining(a.lockout.Remaining(ctx)))
			} else {
				fmt.Println(apiErr.Detail)
			}
			return nil
		}
		a.log.Error(ctx, "login failed", "err", err)
		return err
	}

	u := a.session.CurrentUser()
	fmt.Printf("Logged in as %s (%s)\n", u.Username, u.Role)
	return nil
}

// Logout ends the session. Never fails from the user's point of view.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Println("Logged out.")
	return nil
}

// Whoami prints the current session identity.
func (a *App) Whoami(ctx context.Context) error {
	u := a.session.CurrentUser()
	if u == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", u.Username, u.Email, u.Role)
	return nil
}
