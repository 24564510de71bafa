package policy

import (
	"testing"

	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/dmitrijs2005/garagekeeper/internal/client/observable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide_Superuser(t *testing.T) {
	d := Decide(&models.User{ID: 1, IsSuperuser: true})

	assert.True(t, d.Allows(Cars))
	assert.True(t, d.Allows(Users))
	assert.Equal(t, WriteForOwner, d.Write)
}

func TestDecide_RegularAndAbsentNeverSeeUsers(t *testing.T) {
	for name, u := range map[string]*models.User{
		"regular": {ID: 7, Username: "jdoe"},
		"absent":  nil,
	} {
		t.Run(name, func(t *testing.T) {
			d := Decide(u)
			assert.True(t, d.Allows(Cars))
			assert.False(t, d.Allows(Users))
			assert.Equal(t, WriteSelf, d.Write)
		})
	}
}

func TestDecide_IsPure(t *testing.T) {
	u := models.User{ID: 3, Username: "x", IsSuperuser: true}
	a, b := u, u
	assert.Equal(t, Decide(&a), Decide(&b))
	assert.True(t, Decide(&a) == Decide(&b))

	// only is_superuser participates
	other := models.User{ID: 99, Username: "y", Email: "y@x", IsSuperuser: true}
	assert.Equal(t, Decide(&a), Decide(&other))
}

func TestDecision_Route(t *testing.T) {
	admin := Decide(&models.User{IsSuperuser: true})
	user := Decide(&models.User{})

	tests := []struct {
		name    string
		d       Decision
		section Section
		want    string
		ok      bool
	}{
		{"admin cars", admin, SectionCars, "/dashboard/admin/cars", true},
		{"admin users", admin, SectionUsers, "/dashboard/admin/users", true},
		{"admin profile", admin, SectionProfile, "/dashboard/admin/profile", true},
		{"user cars", user, SectionCars, "/dashboard/cars", true},
		{"user users denied", user, SectionUsers, "", false},
		{"user profile", user, SectionProfile, "/dashboard/profile", true},
		{"unknown", user, Section("billing"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.d.Route(tt.section)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFollow_RecomputesOnEveryUserChange(t *testing.T) {
	users := observable.NewSubject[*models.User](nil)

	var got []Decision
	sub := Follow(users, func(d Decision) { got = append(got, d) })
	defer sub.Unsubscribe()

	users.Publish(&models.User{ID: 1, IsSuperuser: true})
	users.Publish(nil)

	require.Len(t, got, 3)
	assert.False(t, got[0].Allows(Users))
	assert.True(t, got[1].Allows(Users))
	assert.False(t, got[2].Allows(Users))
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "cars", Cars.String())
	assert.Equal(t, "users", Users.String())
	assert.Equal(t, "self", WriteSelf.String())
	assert.Equal(t, "for-owner", WriteForOwner.String())
}
