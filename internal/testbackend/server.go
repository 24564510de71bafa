// Package testbackend is an in-process fake of the garage REST API. It
// implements the same routes, status codes and error bodies as the real
// backend closely enough for end-to-end tests of the client.
//
// Passwords are kept only as bcrypt hashes. New uses the minimum cost so
// tests stay fast; NewDetached, which cmd/server serves, uses the default
// cost.
//
//	srv := testbackend.New()
//	defer srv.Close()
//	srv.AddUser("ann", "secret", false)
//	api := client.NewHTTPClient(client.HTTPClientConfig{BaseURL: srv.URL()})
package testbackend

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// APIPrefix is the path the API is mounted under.
const APIPrefix = "/api"

// Request is one request as seen by the backend.
type Request struct {
	Method        string
	Path          string
	RequestID     string
	Authorization string
}

// Fault makes the next matching request fail with Status and Body.
type Fault struct {
	Method string
	Path   string
	Status int
	Body   string
}

type Server struct {
	srv      *httptest.Server
	store    *store
	secret   []byte
	ttl      time.Duration
	hashCost int

	mu       sync.Mutex
	requests []Request
	faults   []Fault
}

// New starts the backend on a loopback listener.
func New() *Server {
	s := NewDetached()
	s.hashCost = bcrypt.MinCost
	s.srv = httptest.NewServer(s.Handler())
	return s
}

// NewDetached builds the backend without a listener; serve Handler yourself.
func NewDetached() *Server {
	return &Server{
		store:    newStore(),
		secret:   []byte(uuid.NewString()),
		ttl:      time.Hour,
		hashCost: bcrypt.DefaultCost,
	}
}

// URL is the API base URL clients should be configured with. It is empty for
// a detached server.
func (s *Server) URL() string {
	if s.srv == nil {
		return ""
	}
	return s.srv.URL + APIPrefix
}

func (s *Server) Close() {
	if s.srv != nil {
		s.srv.Close()
	}
}

// Handler exposes the router for use without a listener.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.injectFaults)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Post("/token/", s.handleToken)
		r.Post("/users/", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/me/", s.handleMe)
			r.Put("/change-password/", s.handleChangePassword)
			r.Delete("/users/{id}/", s.handleDeleteAccount)

			r.Get("/cars/", s.handleListCars)
			r.Post("/cars/", s.handleCreateCar)
			r.Put("/cars/{id}/", s.handleUpdateCar)
			r.Delete("/cars/{id}/", s.handleDeleteCar)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/cars/owner/{ownerId}/", s.handleCreateCarForOwner)
				r.Get("/admin/users/", s.handleListUsers)
				r.Post("/admin/users/", s.handleCreateUser)
				r.Get("/admin/users/{id}/", s.handleGetUser)
				r.Put("/admin/users/{id}/", s.handleUpdateUser)
				r.Delete("/admin/users/{id}/", s.handleDeleteUser)
			})
		})
	})
	return r
}

// AddUser seeds an account and returns its record. It panics when password
// is longer than MaxPasswordBytes.
func (s *Server) AddUser(username, password string, superuser bool) models.User {
	hash, err := s.hashPassword(password)
	if err != nil {
		panic(fmt.Sprintf("testbackend: seed %s: %v", username, err))
	}
	u, _ := s.store.addUser(models.User{
		Username:    username,
		FirstName:   strings.ToUpper(username[:1]) + username[1:],
		Email:       username + "@example.com",
		IsSuperuser: superuser,
	}, hash)
	return u
}

// AddCar seeds a car owned by ownerID.
func (s *Server) AddCar(ownerID int64, car models.CarPayload) models.Car {
	c, _ := s.store.addCar(ownerID, car)
	return c
}

// Cars returns every stored car.
func (s *Server) Cars() []models.Car { return s.store.listCars(0) }

// Users returns every stored account.
func (s *Server) Users() []models.User { return s.store.listUsers() }

// Requests returns the requests served so far, oldest first.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Fail queues a fault. Faults fire once, in the order they were queued.
func (s *Server) Fail(f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, f)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, APIPrefix),
			RequestID:     r.Header.Get("X-Request-ID"),
			Authorization: r.Header.Get("Authorization"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, APIPrefix)
		s.mu.Lock()
		i := slices.IndexFunc(s.faults, func(f Fault) bool {
			return f.Method == r.Method && f.Path == path
		})
		var fault Fault
		if i >= 0 {
			fault = s.faults[i]
			s.faults = slices.Delete(s.faults, i, i+1)
		}
		s.mu.Unlock()

		if i < 0 {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fault.Status)
		_, _ = w.Write([]byte(fault.Body))
	})
}

type ctxKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		id, err := userIDFromToken(raw, s.secret)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}
		u, ok := s.store.user(id)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !caller(r).IsSuperuser {
			writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func caller(r *http.Request) models.User {
	u, _ := r.Context().Value(ctxKey{}).(models.User)
	return u
}
