package domain

import (
	"encoding/json"
	"time"
)

// RoomCode is the 6-digit access code a patient receives by email.
// It is both the store key of the call record and the shared secret
// that gates room entry.
type RoomCode string

const RoomCodeLen = 6

// Valid reports whether the code is exactly six ASCII digits.
func (c RoomCode) Valid() bool {
	if len(c) != RoomCodeLen {
		return false
	}
	for _, r := range c {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Room is the persisted call record. The store owns it; the core only
// reads it and flips Finished, which is monotonic: once true it never
// goes back.
type Room struct {
	Code         RoomCode  `json:"room_code"`
	DoctorID     UserID    `json:"doctor_id"`
	Finished     bool      `json:"finished"`
	StartsAt     time.Time `json:"starts_at"`
	PatientEmail string    `json:"patient_email"`
}

func (r Room) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}

func (r *Room) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, r)
}
