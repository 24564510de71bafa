package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/garagekeeper/internal/client/client"
	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/dmitrijs2005/garagekeeper/internal/client/policy"
	"github.com/dmitrijs2005/garagekeeper/internal/shared"
)

// Register prompts for the account details and creates the account. It does
// not log in.
func (a *App) Register(ctx context.Context) error {
	var reg models.Registration
	var err error

	if reg.FirstName, err = a.prompt("First name"); err != nil {
		return err
	}
	if reg.LastName, err = a.prompt("Last name"); err != nil {
		return err
	}
	if reg.Username, err = a.prompt("Username"); err != nil {
		return err
	}
	if reg.Email, err = a.prompt("Email"); err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	reg.Password = shared.ConsumeSecret(password)

	if _, err := a.state.Session.Register(ctx, reg); err != nil {
		a.report(err)
		return err
	}
	a.ok("Account created, you can log in now.")
	return nil
}

// Login authenticates and loads the dashboard collections.
func (a *App) Login(ctx context.Context) error {
	username, err := a.prompt("Username")
	if err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}

	creds := models.Credentials{Username: username, Password: shared.ConsumeSecret(password)}
	if err := a.state.Session.Login(ctx, creds); err != nil {
		if errors.Is(err, client.ErrUnauthorized) && !a.isLoggedIn() {
			a.println(errorStyle.Render("Invalid username or password."))
		} else {
			a.report(err)
		}
		return err
	}

	a.ok("Logged in as " + a.status())
	if err := a.loadDashboard(ctx); err != nil {
		a.report(err)
		return err
	}
	return nil
}

// Logout ends the session and forgets the cached collections.
func (a *App) Logout(ctx context.Context) error {
	a.state.Session.Logout(ctx)
	a.state.ResetCaches()
	a.ok("Logged out.")
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	if !a.enter(ctx, policy.SectionProfile) {
		return errNotAllowed
	}
	u, err := a.state.Session.LoadCurrentUser(ctx)
	if err != nil {
		a.report(err)
		return err
	}

	role := "user"
	if u.IsSuperuser {
		role = "administrator"
	}
	a.println(headingStyle.Render("Profile"))
	a.printf("Username: %s\nName:     %s\nEmail:    %s\nJoined:   %s\nRole:     %s\n",
		u.Username, u.FullName(), u.Email, u.JoinedDate(), role)
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	if !a.enter(ctx, policy.SectionProfile) {
		return errNotAllowed
	}
	current, err := getPassword("Current password", a.out)
	if err != nil {
		return err
	}
	next, err := getPassword("New password", a.out)
	if err != nil {
		shared.WipeByteArray(current)
		return err
	}

	err = a.state.Session.ChangePassword(ctx, shared.ConsumeSecret(current), shared.ConsumeSecret(next))
	if err != nil {
		a.report(err)
		return err
	}
	a.ok("Password changed.")
	return nil
}

// DeleteAccount deletes the caller's own account and then logs out.
func (a *App) DeleteAccount(ctx context.Context) error {
	if !a.enter(ctx, policy.SectionProfile) {
		return errNotAllowed
	}
	yes, err := a.confirm("Delete your account and all your cars? This cannot be undone.")
	if err != nil || !yes {
		return err
	}

	if err := a.state.Session.DeleteAccount(ctx); err != nil {
		a.report(err)
		return err
	}
	a.ok("Account deleted.")
	return a.Logout(ctx)
}
