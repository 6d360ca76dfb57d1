// Package domain contains entities without logic, just meta-data.
package domain

import (
	"encoding/json"
	"errors"
)

const MaxNameLen = 64

var (
	ErrNameEmpty   = errors.New("name empty")
	ErrNameTooLong = errors.New("name too long")
)

type UserID string

// User is a doctor account record. Patients are never persisted; they
// exist only as a display name for the duration of one call.
type User struct {
	ID      UserID `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(id UserID, name, surname string) (*User, error) {
	if name == "" || surname == "" {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen || len(surname) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &User{ID: id, Name: name, Surname: surname}, nil
}

func (u *User) FullName() string { return u.Name + " " + u.Surname }

// DisplayName is how the doctor appears inside a call.
func (u *User) DisplayName() string { return "Dr. " + u.FullName() }

func (u User) MarshalBinary() ([]byte, error) {
	return json.Marshal(u)
}

func (u *User) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, u)
}
