package models

import (
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/userdesk/internal/common"
)

// User is a record of the /api/user collection.
type User struct {
	ID           string `json:"_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Firstname    string `json:"firstname,omitempty"`
	Lastname     string `json:"lastname,omitempty"`
	Status       Status `json:"status,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.Firstname + " " + u.Lastname)
}

// UserDraft is the editable form of a User. Password is write-only: it is
// never filled from a fetched record and is omitted from the body when empty.
type UserDraft struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

func NewUserDraft() UserDraft {
	return UserDraft{}
}

// UserDraftFrom copies the editable fields of u, leaving Password empty.
func UserDraftFrom(u User) UserDraft {
	return UserDraft{
		Username:  u.Username,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
	}
}

// Validate checks required fields. A password is only required when creating.
func (d UserDraft) Validate(creating bool) error {
	if strings.TrimSpace(d.Username) == "" {
		return common.NewValidationError("username", "Username is required")
	}
	if strings.TrimSpace(d.Email) == "" {
		return common.NewValidationError("email", "Email is required")
	}
	// a bare address only; the display-name form would be sent verbatim
	if addr, err := mail.ParseAddress(d.Email); err != nil || addr.Address != strings.TrimSpace(d.Email) {
		return common.NewValidationError("email", "Email is not valid")
	}
	if creating && d.Password == "" {
		return common.NewValidationError("password", "Password is required")
	}
	return nil
}
