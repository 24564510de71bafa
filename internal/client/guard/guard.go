// Package guard gates entry into the protected part of the client.
//
// The guard has two states, Open and Blocked, read synchronously from the
// session's authenticated flag at the moment of navigation. It does not hold
// a subscription between navigations and models no loading state: before
// bootstrap resolves it sees whatever is currently published (false by
// default), so an entry attempted right after start-up may be blocked even
// when a valid token is stored.
package guard

import (
	"strings"

	"github.com/dmitrijs2005/garagekeeper/internal/client/observable"
)

const (
	LoginRoute     = "/login"
	RegisterRoute  = "/register"
	DashboardRoute = "/dashboard"
)

type State uint8

const (
	Blocked State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "blocked"
}

// Verdict is the outcome of a navigation attempt. When Allowed is false,
// Redirect names the route to go to instead.
type Verdict struct {
	Allowed  bool
	Redirect string
}

type Guard struct {
	authenticated observable.Stream[bool]
}

func New(authenticated observable.Stream[bool]) *Guard {
	return &Guard{authenticated: authenticated}
}

// State takes a fresh snapshot of the authenticated flag.
func (g *Guard) State() State {
	if g.authenticated.Value() {
		return Open
	}
	return Blocked
}

// CanActivate decides whether route may be entered now. Routes outside the
// dashboard hierarchy are public.
func (g *Guard) CanActivate(route string) Verdict {
	if !IsProtected(route) || g.State() == Open {
		return Verdict{Allowed: true}
	}
	return Verdict{Redirect: LoginRoute}
}

// IsProtected reports whether route lies in the dashboard hierarchy.
func IsProtected(route string) bool {
	return route == DashboardRoute || strings.HasPrefix(route, DashboardRoute+"/")
}
