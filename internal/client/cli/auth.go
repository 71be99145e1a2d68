package cli

import (
	"context"

	"github.com/dmitrijs2005/userdesk/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and submits them through the login view.
// On success the profile is shown, as the landing view.
func (a *App) Login(ctx context.Context) error {
	if s := a.sessions.Current(); s.IsLoggedIn {
		a.printf("Already logged in as %s\n", s.Identity.Email)
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.login.Submit(ctx, email, string(password)); err != nil {
		a.println(err)
		return err
	}
	a.println(a.login.Message())

	if a.landed {
		a.landed = false
		a.land(ctx)
	}
	return nil
}

// Logout always succeeds locally, whatever the server says.
func (a *App) Logout(ctx context.Context) error {
	a.sessions.Logout(ctx)
	a.current = nil
	a.login.Enter()
	a.println("Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	s := a.sessions.Current()
	if !s.IsLoggedIn {
		a.println("Not logged in")
		return nil
	}
	a.println("Logged in as", s.Identity.Email)
	return nil
}

func (a *App) land(ctx context.Context) {
	a.landed = false
	_ = a.Profile(ctx)
}
