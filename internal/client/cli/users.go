package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/dmitrijs2005/garagekeeper/internal/client/policy"
	"github.com/dmitrijs2005/garagekeeper/internal/shared"
)

func (a *App) ListUsers(ctx context.Context) error {
	if !a.enter(ctx, policy.SectionUsers) {
		return errNotAllowed
	}
	if _, err := a.state.Users.Load(ctx); err != nil {
		a.report(err)
		return err
	}
	a.println(headingStyle.Render("Users"))
	renderUsers(a.out, a.snapshotUsers())
	return nil
}

func (a *App) AddUser(ctx context.Context) error {
	if !a.enter(ctx, policy.SectionUsers) {
		return errNotAllowed
	}
	payload, err := a.userForm(models.UserPayload{})
	if err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	payload.Password = shared.ConsumeSecret(password)

	u, err := a.state.Users.Create(ctx, payload, a.snapshotDecision().Write)
	if err != nil {
		a.report(err)
		return err
	}
	a.ok(fmt.Sprintf("User %s (#%d) added.", u.Username, u.ID))
	return nil
}

// EditUser updates a roster entry. Editing yourself also reloads the session
// user, since the two copies are independent.
func (a *App) EditUser(ctx context.Context, arg string) error {
	if !a.enter(ctx, policy.SectionUsers) {
		return errNotAllowed
	}
	u, err := a.lookupUser(ctx, arg)
	if err != nil {
		a.report(err)
		return err
	}

	payload, err := a.userForm(models.PayloadFromUser(u))
	if err != nil {
		return err
	}
	updated, err := a.state.Users.Update(ctx, u.ID, payload)
	if err != nil {
		a.report(err)
		return err
	}

	if me := a.snapshotUser(); me != nil && me.ID == updated.ID {
		if _, err := a.state.Session.LoadCurrentUser(ctx); err != nil {
			a.report(err)
			return err
		}
	}
	a.ok(fmt.Sprintf("User %s updated.", updated.Username))
	return nil
}

// DeleteUser removes a roster entry. The backend deletes the user's cars
// with it, so the car cache is reloaded. Deleting yourself ends the session.
func (a *App) DeleteUser(ctx context.Context, arg string) error {
	if !a.enter(ctx, policy.SectionUsers) {
		return errNotAllowed
	}
	u, err := a.lookupUser(ctx, arg)
	if err != nil {
		a.report(err)
		return err
	}
	yes, err := a.confirm(fmt.Sprintf("Delete user %s (#%d) and all their cars?", u.Username, u.ID))
	if err != nil || !yes {
		return err
	}

	if err := a.state.Users.Delete(ctx, u.ID); err != nil {
		a.report(err)
		return err
	}
	a.ok(fmt.Sprintf("User %s deleted.", u.Username))

	if me := a.snapshotUser(); me != nil && me.ID == u.ID {
		return a.Logout(ctx)
	}
	if _, err := a.state.Cars.Load(ctx); err != nil {
		a.report(err)
		return err
	}
	return nil
}

// lookupUser fetches the user fresh from the backend so the edit form starts
// from the server's copy.
func (a *App) lookupUser(ctx context.Context, arg string) (models.User, error) {
	if arg == "" {
		var err error
		if arg, err = a.prompt("User id"); err != nil {
			return models.User{}, err
		}
	}
	id, err := parseID(arg)
	if err != nil {
		return models.User{}, err
	}
	return a.state.Users.Get(ctx, id)
}

func (a *App) userForm(cur models.UserPayload) (models.UserPayload, error) {
	var (
		p   = cur
		err error
	)
	if p.FirstName, err = a.promptDefault("First name", cur.FirstName); err != nil {
		return p, err
	}
	if p.LastName, err = a.promptDefault("Last name", cur.LastName); err != nil {
		return p, err
	}
	if p.Username, err = a.promptDefault("Username", cur.Username); err != nil {
		return p, err
	}
	if p.Email, err = a.promptDefault("Email", cur.Email); err != nil {
		return p, err
	}

	current := "n"
	if cur.IsSuperuser {
		current = "y"
	}
	admin, err := a.promptDefault("Administrator (y/n)", current)
	if err != nil {
		return p, err
	}
	p.IsSuperuser = admin == "y" || admin == "yes"
	return p, nil
}
