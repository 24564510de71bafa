package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/garagekeeper/internal/client/appstate"
	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/dmitrijs2005/garagekeeper/internal/client/observable"
	"github.com/dmitrijs2005/garagekeeper/internal/client/policy"
	"github.com/dmitrijs2005/garagekeeper/internal/logging"
	"golang.org/x/sync/errgroup"
)

type App struct {
	state  *appstate.State
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer
	scope  *observable.Scope

	// Snapshots maintained by the subscriptions in scope.
	mu       sync.Mutex
	decision policy.Decision
	user     *models.User
	cars     []models.Car
	users    []models.User
}

// NewApp subscribes the app to the session and both caches. The
// subscriptions are released by Close.
func NewApp(st *appstate.State, in io.Reader, out io.Writer) *App {
	a := &App{
		state:  st,
		log:    st.Logger.With("component", "cli"),
		reader: bufio.NewReader(in),
		out:    out,
		scope:  &observable.Scope{},
	}

	a.scope.Add(policy.Follow(st.Session.CurrentUser(), func(d policy.Decision) {
		a.mu.Lock()
		a.decision = d
		a.mu.Unlock()
	}))
	a.scope.Add(st.Session.CurrentUser().Subscribe(func(u *models.User) {
		a.mu.Lock()
		a.user = u
		a.mu.Unlock()
	}))
	a.scope.Add(st.Cars.Subscribe(func(cars []models.Car) {
		a.mu.Lock()
		a.cars = cars
		a.mu.Unlock()
	}))
	a.scope.Add(st.Users.Subscribe(func(users []models.User) {
		a.mu.Lock()
		a.users = users
		a.mu.Unlock()
	}))
	return a
}

// Run restores a persisted session and serves commands until exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.println(headingStyle.Render("Garagekeeper CLI") + " (type 'help' for commands)")

	if err := a.state.Session.Bootstrap(ctx); err != nil {
		a.log.Warn(ctx, "session not restored", "error", err)
		a.println(dimStyle.Render("Saved session could not be restored, please log in."))
	} else if a.isLoggedIn() {
		a.println(okStyle.Render("Welcome back, " + a.status()))
		if err := a.loadDashboard(ctx); err != nil {
			a.report(err)
		}
	}

	runREPL(ctx, a, a.status, a.reader)
}

// Close releases every subscription the app holds.
func (a *App) Close() {
	a.scope.Close()
}

func (a *App) isLoggedIn() bool {
	return a.state.Session.IsAuthenticated()
}

func (a *App) isAdmin() bool {
	return a.snapshotDecision().IsAdmin()
}

func (a *App) status() string {
	u := a.snapshotUser()
	if u == nil {
		return ""
	}
	if u.IsSuperuser {
		return u.Username + " admin"
	}
	return u.Username
}

func (a *App) snapshotDecision() policy.Decision {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.decision
}

func (a *App) snapshotUser() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *App) snapshotCars() []models.Car {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.cars)
}

func (a *App) snapshotUsers() []models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.users)
}

// enter navigates to section: the policy picks the route, the guard decides
// whether it may be entered now.
func (a *App) enter(ctx context.Context, section policy.Section) bool {
	route, ok := a.snapshotDecision().Route(section)
	if !ok {
		a.println(errorStyle.Render(fmt.Sprintf("The %s section is not available for your account.", section)))
		return false
	}
	if v := a.state.Guard.CanActivate(route); !v.Allowed {
		a.log.Debug(ctx, "navigation blocked", "route", route, "redirect", v.Redirect)
		a.println(errorStyle.Render("Please log in first."))
		return false
	}
	a.log.Debug(ctx, "navigate", "route", route)
	return true
}

// loadDashboard fetches every collection the caller may see.
func (a *App) loadDashboard(ctx context.Context) error {
	decision := a.snapshotDecision()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := a.state.Cars.Load(ctx)
		return err
	})
	if decision.Allows(policy.Users) {
		g.Go(func() error {
			_, err := a.state.Users.Load(ctx)
			return err
		})
	}
	return g.Wait()
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) ok(msg string) {
	a.println(okStyle.Render(msg))
}

// prompt reads one line of input after printing label.
func (a *App) prompt(label string) (string, error) {
	return getSimpleText(a.reader, label, a.out)
}

// promptDefault keeps current when the answer is empty.
func (a *App) promptDefault(label, current string) (string, error) {
	if current != "" {
		label = fmt.Sprintf("%s [%s]", label, current)
	}
	v, err := a.prompt(label)
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

func (a *App) confirm(label string) (bool, error) {
	v, err := a.prompt(label + " (y/N)")
	if err != nil {
		return false, err
	}
	v = strings.ToLower(v)
	return v == "y" || v == "yes", nil
}
