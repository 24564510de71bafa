package testbackend

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decode(w, r, &creds) {
		return
	}
	if fields := required(map[string]string{"username": creds.Username, "password": creds.Password}); fields != nil {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	u, ok := s.store.authenticate(creds.Username, creds.Password)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}
	access, err := generateToken(u.ID, "access", s.secret, s.ttl)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	refresh, err := generateToken(u.ID, "refresh", s.secret, 24*s.ttl)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.TokenPair{Access: access, Refresh: refresh})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if !decode(w, r, &reg) {
		return
	}
	fields := required(map[string]string{"username": reg.Username, "email": reg.Email, "password": reg.Password})
	if fields != nil {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	hash, err := s.hashPassword(reg.Password)
	if err != nil {
		writeHashError(w, "password", err)
		return
	}
	u, ok := s.store.addUser(models.User{
		Username:  reg.Username,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
	}, hash)
	if !ok {
		writeJSON(w, http.StatusBadRequest, usernameTaken())
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, caller(r))
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var change models.PasswordChange
	if !decode(w, r, &change) {
		return
	}
	if fields := required(map[string]string{"old_password": change.OldPassword, "new_password": change.NewPassword}); fields != nil {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	hash, err := s.hashPassword(change.NewPassword)
	if err != nil {
		writeHashError(w, "new_password", err)
		return
	}
	if !s.store.setPassword(caller(r).ID, change.OldPassword, hash) {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"old_password": {"Wrong password."}})
		return
	}
	writeDetail(w, http.StatusOK, "Password updated successfully")
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if u := caller(r); u.ID != id && !u.IsSuperuser {
		writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return
	}
	if !s.store.deleteUser(id) {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCars(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	owner := u.ID
	if u.IsSuperuser {
		owner = 0
	}
	writeJSON(w, http.StatusOK, s.store.listCars(owner))
}

func (s *Server) handleCreateCar(w http.ResponseWriter, r *http.Request) {
	s.createCar(w, r, caller(r).ID)
}

func (s *Server) handleCreateCarForOwner(w http.ResponseWriter, r *http.Request) {
	owner, ok := pathID(w, r, "ownerId")
	if !ok {
		return
	}
	s.createCar(w, r, owner)
}

func (s *Server) createCar(w http.ResponseWriter, r *http.Request, owner int64) {
	var p models.CarPayload
	if !decode(w, r, &p) {
		return
	}
	if fields := validateCar(p); fields != nil {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	c, ok := s.store.addCar(owner, p)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"owner_id": {"Invalid owner."}})
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// visibleCar loads a car the caller owns, or any car for admins. Cars the
// caller cannot see are reported as missing.
func (s *Server) visibleCar(w http.ResponseWriter, r *http.Request) (models.Car, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return models.Car{}, false
	}
	c, ok := s.store.car(id)
	if u := caller(r); !ok || (!u.IsSuperuser && c.OwnerID != u.ID) {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return models.Car{}, false
	}
	return c, true
}

func (s *Server) handleUpdateCar(w http.ResponseWriter, r *http.Request) {
	c, ok := s.visibleCar(w, r)
	if !ok {
		return
	}
	var p models.CarPayload
	if !decode(w, r, &p) {
		return
	}
	if fields := validateCar(p); fields != nil {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	updated, _ := s.store.updateCar(c.ID, p)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCar(w http.ResponseWriter, r *http.Request) {
	c, ok := s.visibleCar(w, r)
	if !ok {
		return
	}
	s.store.deleteCar(c.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listUsers())
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, ok := s.store.user(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var p models.UserPayload
	if !decode(w, r, &p) {
		return
	}
	if fields := required(map[string]string{"username": p.Username, "password": p.Password}); fields != nil {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	hash, err := s.hashPassword(p.Password)
	if err != nil {
		writeHashError(w, "password", err)
		return
	}
	u, ok := s.store.addUser(models.User{
		Username:    p.Username,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		IsSuperuser: p.IsSuperuser,
	}, hash)
	if !ok {
		writeJSON(w, http.StatusBadRequest, usernameTaken())
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var p models.UserPayload
	if !decode(w, r, &p) {
		return
	}
	if fields := required(map[string]string{"username": p.Username}); fields != nil {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	var hash []byte
	if p.Password != "" {
		var err error
		if hash, err = s.hashPassword(p.Password); err != nil {
			writeHashError(w, "password", err)
			return
		}
	}
	u, found, taken := s.store.updateUser(id, p, hash)
	switch {
	case !found:
		writeDetail(w, http.StatusNotFound, "Not found.")
	case taken:
		writeJSON(w, http.StatusBadRequest, usernameTaken())
	default:
		writeJSON(w, http.StatusOK, u)
	}
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !s.store.deleteUser(id) {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateCar(p models.CarPayload) map[string][]string {
	fields := required(map[string]string{"brand": p.Brand, "model": p.Model})
	if p.Year < 1886 || p.Year > 2100 {
		if fields == nil {
			fields = map[string][]string{}
		}
		fields["year"] = []string{"Ensure this value is between 1886 and 2100."}
	}
	return fields
}

func required(values map[string]string) map[string][]string {
	var fields map[string][]string
	for name, v := range values {
		if strings.TrimSpace(v) != "" {
			continue
		}
		if fields == nil {
			fields = map[string][]string{}
		}
		fields[name] = []string{"This field may not be blank."}
	}
	return fields
}

func usernameTaken() map[string][]string {
	return map[string][]string{"username": {"A user with that username already exists."}}
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return false
	}
	return true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
