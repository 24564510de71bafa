package testbackend

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

func (s *Server) hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
}

func checkPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// writeHashError answers a failed hash of the named password field.
func writeHashError(w http.ResponseWriter, field string, err error) {
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			field: {"Ensure this field has no more than 72 bytes."},
		})
		return
	}
	writeDetail(w, http.StatusInternalServerError, err.Error())
}
