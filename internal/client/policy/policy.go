// Package policy derives what a caller may do from their user record.
//
// The decision depends on is_superuser and nothing else. It is a pure value,
// cheap to compute, and is recomputed whenever the session user changes
// rather than stored anywhere.
package policy

import (
	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/dmitrijs2005/garagekeeper/internal/client/observable"
)

// Collection names a resource collection a caller may enumerate.
type Collection uint8

const (
	Cars Collection = 1 << iota
	Users
)

func (c Collection) String() string {
	switch c {
	case Cars:
		return "cars"
	case Users:
		return "users"
	default:
		return "unknown"
	}
}

// Collections is a set of Collection values.
type Collections uint8

func (s Collections) Has(c Collection) bool { return s&Collections(c) != 0 }

// WriteVariant selects the create endpoint for cars.
type WriteVariant uint8

const (
	// WriteSelf creates on behalf of the caller (POST /cars/).
	WriteSelf WriteVariant = iota
	// WriteForOwner creates for an explicitly chosen owner
	// (POST /cars/owner/{ownerId}/).
	WriteForOwner
)

func (v WriteVariant) String() string {
	if v == WriteForOwner {
		return "for-owner"
	}
	return "self"
}

// Decision is comparable; equal users yield equal decisions.
type Decision struct {
	Allowed Collections
	Write   WriteVariant
}

// Decide computes the decision for u. A nil user gets the regular caller's
// decision; route guarding, not policy, keeps anonymous callers out.
func Decide(u *models.User) Decision {
	if u != nil && u.IsSuperuser {
		return Decision{
			Allowed: Collections(Cars) | Collections(Users),
			Write:   WriteForOwner,
		}
	}
	return Decision{
		Allowed: Collections(Cars),
		Write:   WriteSelf,
	}
}

func (d Decision) Allows(c Collection) bool { return d.Allowed.Has(c) }

// IsAdmin reports whether the caller manages the full user roster.
func (d Decision) IsAdmin() bool { return d.Allows(Users) }

// Follow recomputes the decision on every publish of users and hands it to
// fn. The returned subscription must be released by the caller.
func Follow(users observable.Stream[*models.User], fn func(Decision)) *observable.Subscription {
	return users.Subscribe(func(u *models.User) { fn(Decide(u)) })
}
