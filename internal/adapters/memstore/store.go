// Package memstore is an in-memory RoomStore/UserStore used in dev mode
// and in tests. Same contract as the redis adapter, no persistence.
package memstore

import (
	"context"
	"sync"

	"github.com/mediochat/mediochat/internal/core"
	"github.com/mediochat/mediochat/internal/domain"
)

type Store struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]domain.Room
	users map[domain.UserID]domain.User
}

func New() *Store {
	return &Store{
		rooms: make(map[domain.RoomCode]domain.Room),
		users: make(map[domain.UserID]domain.User),
	}
}

func (s *Store) Room(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[code]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &r, nil
}

func (s *Store) Create(ctx context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Code] = *room
	return nil
}

func (s *Store) Finish(ctx context.Context, code domain.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	if !ok {
		return core.ErrNotFound
	}
	r.Finished = true
	s.rooms[code] = r
	return nil
}

func (s *Store) Delete(ctx context.Context, code domain.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; !ok {
		return core.ErrNotFound
	}
	delete(s.rooms, code)
	return nil
}

func (s *Store) ByDoctor(ctx context.Context, id domain.UserID) ([]*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Room, 0)
	for _, r := range s.rooms {
		if r.DoctorID == id {
			room := r
			out = append(out, &room)
		}
	}
	return out, nil
}

func (s *Store) User(ctx context.Context, id domain.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &u, nil
}

func (s *Store) Put(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}
