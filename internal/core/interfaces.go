package core

import (
	"context"

	"github.com/mediochat/mediochat/internal/domain"
)

// Frame is a raw wire payload handed to a signaling connection.
type Frame []byte

// ConnID identifies one live signaling connection. Two browser tabs of
// the same person are two connections.
type ConnID string

// Sender abstracts the transport endpoint the broker fans out to.
// Owned by the adapter; the adapter must Close() it.
type Sender interface {
	TrySend(Frame) error
	Close()
}

// RoomStore is the call-record collaborator. Implementations live in
// adapters; the core never sees a database handle.
type RoomStore interface {
	Room(ctx context.Context, code domain.RoomCode) (*domain.Room, error)
	Create(ctx context.Context, room *domain.Room) error
	// Finish flips the finished flag to true. It never unsets it, and
	// finishing an already-finished room is a no-op.
	Finish(ctx context.Context, code domain.RoomCode) error
	Delete(ctx context.Context, code domain.RoomCode) error
	ByDoctor(ctx context.Context, id domain.UserID) ([]*domain.Room, error)
}

// UserStore holds doctor account records.
type UserStore interface {
	User(ctx context.Context, id domain.UserID) (*domain.User, error)
	Put(ctx context.Context, user *domain.User) error
}

// Identity is the external identity provider: it exchanges a login
// idToken for a long-lived session token and verifies presented session
// tokens back into a subject id.
type Identity interface {
	CreateSessionToken(ctx context.Context, idToken string) (string, error)
	VerifyCredential(ctx context.Context, token string) (domain.UserID, error)
}

// Mail is one outbound message.
type Mail struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends appointment mails. Callers treat failures as
// recoverable; nothing retries.
type Mailer interface {
	Send(m Mail) error
}
