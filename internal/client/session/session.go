// Package session owns the client's authentication state: whether the user
// is logged in and who they are. Manager is the only writer of that state;
// every change is mirrored into a Store so it survives a restart.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned by Decode for records that are not a valid session.
var ErrMalformed = errors.New("malformed session record")

type Identity struct {
	Name  string
	Email string
}

// Session is replaced wholesale on every login and logout. When IsLoggedIn is
// false the identity is always empty.
type Session struct {
	IsLoggedIn bool
	Identity   Identity
}

// LoggedOut returns the default session.
func LoggedOut() Session {
	return Session{}
}

// record is the persisted shape: {"isLoggedIn":true,"name":"","email":"a@b.com"}.
type record struct {
	IsLoggedIn *bool  `json:"isLoggedIn"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

func Encode(s Session) ([]byte, error) {
	loggedIn := s.IsLoggedIn
	return json.Marshal(record{IsLoggedIn: &loggedIn, Name: s.Identity.Name, Email: s.Identity.Email})
}

// Decode parses a stored record. It rejects records that do not carry
// isLoggedIn, logged-out records with an identity, and logged-in records
// without an email.
func Decode(b []byte) (Session, error) {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return LoggedOut(), fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if r.IsLoggedIn == nil {
		return LoggedOut(), fmt.Errorf("%w: isLoggedIn missing", ErrMalformed)
	}

	s := Session{IsLoggedIn: *r.IsLoggedIn, Identity: Identity{Name: r.Name, Email: r.Email}}
	switch {
	case !s.IsLoggedIn && s.Identity != (Identity{}):
		return LoggedOut(), fmt.Errorf("%w: logged-out session carries an identity", ErrMalformed)
	case s.IsLoggedIn && s.Identity.Email == "":
		return LoggedOut(), fmt.Errorf("%w: logged-in session without email", ErrMalformed)
	}
	return s, nil
}
