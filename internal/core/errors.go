package core

import "errors"

var (
	// ErrNotFound covers both a genuinely absent record and an
	// ownership mismatch, so a caller cannot probe which rooms exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means an identity credential failed verification.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRoomFinished means the call has already been ended; no fresh
	// room credential may be minted for it.
	ErrRoomFinished = errors.New("room finished")

	// ErrCodeInvalid means the submitted access code matched no room.
	ErrCodeInvalid = errors.New("invalid room code")

	ErrEmailRequired = errors.New("patient email required")
	ErrStartsInPast  = errors.New("call starts in the past")

	// ErrBackpressure is returned by a Sender whose outbound buffer is
	// full; the broker drops the frame for that recipient.
	ErrBackpressure = errors.New("backpressure")
)
