package models

import "time"

// User is the backend's user record. The session keeps one copy for the
// caller and the admin roster keeps its own; the two are never reconciled
// automatically.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	DateJoined  time.Time `json:"date_joined"`
	IsSuperuser bool      `json:"is_superuser"`
}

func (u User) EntityID() int64 { return u.ID }

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}

// JoinedDate renders DateJoined as YYYY-MM-DD, or "" when unknown.
func (u User) JoinedDate() string {
	if u.DateJoined.IsZero() {
		return ""
	}
	return u.DateJoined.Format(time.DateOnly)
}

// UserPayload is the admin create/update body for /admin/users/.
// Password is only sent on create.
type UserPayload struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	IsSuperuser bool   `json:"is_superuser"`
}

// PayloadFromUser pre-fills an edit form from an existing record.
func PayloadFromUser(u User) UserPayload {
	return UserPayload{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Username:    u.Username,
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
	}
}
