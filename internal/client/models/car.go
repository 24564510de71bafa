package models

import (
	"strconv"
	"strings"
)

// Car is the canonical vehicle record.
//
// Server contract: the backend serialises owner as the numeric owner_id and
// may add a human readable owner_display (username or full name). Clients
// never derive owner_display themselves; it is empty when the server omits it.
type Car struct {
	ID           int64  `json:"id"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Color        string `json:"color"`
	License      string `json:"license"`
	OwnerID      int64  `json:"owner_id"`
	OwnerDisplay string `json:"owner_display"`
}

func (c Car) EntityID() int64 { return c.ID }

// Owner returns the label shown for the car's owner.
func (c Car) Owner() string {
	if c.OwnerDisplay != "" {
		return c.OwnerDisplay
	}
	if c.OwnerID == 0 {
		return ""
	}
	return "#" + strconv.FormatInt(c.OwnerID, 10)
}

// CarPayload is the create/update body for cars. OwnerID never goes into the
// body: it selects the /cars/owner/{ownerId}/ endpoint for admin creates.
type CarPayload struct {
	Brand   string `json:"brand"`
	Model   string `json:"model"`
	Year    int    `json:"year"`
	Color   string `json:"color"`
	License string `json:"license"`
	OwnerID int64  `json:"-"`
}

// PayloadFromCar pre-fills an edit form from an existing record.
func PayloadFromCar(c Car) CarPayload {
	return CarPayload{
		Brand:   c.Brand,
		Model:   c.Model,
		Year:    c.Year,
		Color:   c.Color,
		License: c.License,
		OwnerID: c.OwnerID,
	}
}

// FilterCarsByOwner keeps cars whose owner label contains query, ignoring
// case. A blank query returns cars unchanged.
func FilterCarsByOwner(cars []Car, query string) []Car {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return cars
	}
	out := make([]Car, 0, len(cars))
	for _, c := range cars {
		if strings.Contains(strings.ToLower(c.Owner()), q) {
			out = append(out, c)
		}
	}
	return out
}
