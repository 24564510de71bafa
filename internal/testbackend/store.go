package testbackend

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
)

type account struct {
	models.User
	passwordHash []byte
}

// store is the backend's in-memory state. Lists come back in insertion order.
type store struct {
	mu       sync.Mutex
	nextUser int64
	nextCar  int64
	users    []*account
	cars     []models.Car
}

func newStore() *store {
	return &store{nextUser: 1, nextCar: 1}
}

// addUser stores u with an already hashed password.
func (s *store) addUser(u models.User, passwordHash []byte) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByUsername(u.Username) != nil {
		return models.User{}, false
	}
	if u.ID == 0 {
		u.ID = s.nextUser
	}
	if u.ID >= s.nextUser {
		s.nextUser = u.ID + 1
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC().Truncate(time.Second)
	}
	s.users = append(s.users, &account{User: u, passwordHash: passwordHash})
	return u, true
}

func (s *store) findByUsername(username string) *account {
	for _, a := range s.users {
		if strings.EqualFold(a.Username, username) {
			return a
		}
	}
	return nil
}

func (s *store) authenticate(username, password string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findByUsername(username)
	if a == nil || !checkPassword(a.passwordHash, password) {
		return models.User{}, false
	}
	return a.User, true
}

func (s *store) user(id int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(id)
	if a == nil {
		return models.User{}, false
	}
	return a.User, true
}

func (s *store) account(id int64) *account {
	for _, a := range s.users {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *store) listUsers() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, a := range s.users {
		out = append(out, a.User)
	}
	return out
}

// updateUser overwrites the profile fields of id, and the password when
// passwordHash is set. ok is false when id is unknown; taken reports a
// username clash.
func (s *store) updateUser(id int64, p models.UserPayload, passwordHash []byte) (u models.User, ok, taken bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(id)
	if a == nil {
		return models.User{}, false, false
	}
	if other := s.findByUsername(p.Username); other != nil && other.ID != id {
		return models.User{}, true, true
	}
	a.FirstName, a.LastName = p.FirstName, p.LastName
	a.Username, a.Email = p.Username, p.Email
	a.IsSuperuser = p.IsSuperuser
	if passwordHash != nil {
		a.passwordHash = passwordHash
	}
	s.refreshOwnerDisplay(a.User)
	return a.User, true, false
}

func (s *store) setPassword(id int64, oldPassword string, newHash []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(id)
	if a == nil || !checkPassword(a.passwordHash, oldPassword) {
		return false
	}
	a.passwordHash = newHash
	return true
}

// deleteUser removes id and every car it owns.
func (s *store) deleteUser(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.users)
	s.users = slices.DeleteFunc(s.users, func(a *account) bool { return a.ID == id })
	if len(s.users) == n {
		return false
	}
	s.cars = slices.DeleteFunc(s.cars, func(c models.Car) bool { return c.OwnerID == id })
	return true
}

func (s *store) addCar(ownerID int64, p models.CarPayload) (models.Car, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner := s.account(ownerID)
	if owner == nil {
		return models.Car{}, false
	}
	c := models.Car{
		ID:           s.nextCar,
		Brand:        p.Brand,
		Model:        p.Model,
		Year:         p.Year,
		Color:        p.Color,
		License:      p.License,
		OwnerID:      ownerID,
		OwnerDisplay: owner.Username,
	}
	s.nextCar++
	s.cars = append(s.cars, c)
	return c, true
}

// listCars returns every car, or only ownerID's when ownerID is non-zero.
func (s *store) listCars(ownerID int64) []models.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Car, 0, len(s.cars))
	for _, c := range s.cars {
		if ownerID == 0 || c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out
}

func (s *store) car(id int64) (models.Car, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.cars, func(c models.Car) bool { return c.ID == id })
	if i < 0 {
		return models.Car{}, false
	}
	return s.cars[i], true
}

func (s *store) updateCar(id int64, p models.CarPayload) (models.Car, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.cars, func(c models.Car) bool { return c.ID == id })
	if i < 0 {
		return models.Car{}, false
	}
	c := &s.cars[i]
	c.Brand, c.Model, c.Year = p.Brand, p.Model, p.Year
	c.Color, c.License = p.Color, p.License
	return *c, true
}

func (s *store) deleteCar(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.cars)
	s.cars = slices.DeleteFunc(s.cars, func(c models.Car) bool { return c.ID == id })
	return len(s.cars) != n
}

func (s *store) refreshOwnerDisplay(u models.User) {
	for i := range s.cars {
		if s.cars[i].OwnerID == u.ID {
			s.cars[i].OwnerDisplay = u.Username
		}
	}
}
