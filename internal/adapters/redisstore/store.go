// Package redisstore backs RoomStore and UserStore with redis. Rooms
// and users are JSON values under prefixed keys; a per-doctor set
// indexes the doctor's rooms for dashboard queries.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/mediochat/mediochat/internal/core"
	"github.com/mediochat/mediochat/internal/domain"
)

type Store struct {
	rdb *redis.Client
}

func New(addr string) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

// Ping verifies the connection at startup.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func roomKey(code domain.RoomCode) string { return "room:" + string(code) }
func userKey(id domain.UserID) string     { return "user:" + string(id) }
func doctorKey(id domain.UserID) string   { return "doctor:" + string(id) + ":rooms" }

func (s *Store) Room(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	data, err := s.rdb.Get(ctx, roomKey(code)).Bytes()
	if err == redis.Nil {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get room: %w", err)
	}
	var room domain.Room
	if err := room.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", code, err)
	}
	return &room, nil
}

func (s *Store) Create(ctx context.Context, room *domain.Room) error {
	if err := s.rdb.Set(ctx, roomKey(room.Code), *room, 0).Err(); err != nil {
		return fmt.Errorf("redis set room: %w", err)
	}
	if err := s.rdb.SAdd(ctx, doctorKey(room.DoctorID), string(room.Code)).Err(); err != nil {
		return fmt.Errorf("redis index room: %w", err)
	}
	return nil
}

func (s *Store) Finish(ctx context.Context, code domain.RoomCode) error {
	room, err := s.Room(ctx, code)
	if err != nil {
		return err
	}
	if room.Finished {
		return nil
	}
	room.Finished = true
	if err := s.rdb.Set(ctx, roomKey(code), *room, 0).Err(); err != nil {
		return fmt.Errorf("redis finish room: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, code domain.RoomCode) error {
	room, err := s.Room(ctx, code)
	if err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, roomKey(code)).Err(); err != nil {
		return fmt.Errorf("redis del room: %w", err)
	}
	if err := s.rdb.SRem(ctx, doctorKey(room.DoctorID), string(code)).Err(); err != nil {
		return fmt.Errorf("redis unindex room: %w", err)
	}
	return nil
}

func (s *Store) ByDoctor(ctx context.Context, id domain.UserID) ([]*domain.Room, error) {
	codes, err := s.rdb.SMembers(ctx, doctorKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis doctor index: %w", err)
	}
	out := make([]*domain.Room, 0, len(codes))
	for _, code := range codes {
		room, err := s.Room(ctx, domain.RoomCode(code))
		if errors.Is(err, core.ErrNotFound) {
			// stale index entry, skip
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, nil
}

func (s *Store) User(ctx context.Context, id domain.UserID) (*domain.User, error) {
	data, err := s.rdb.Get(ctx, userKey(id)).Bytes()
	if err == redis.Nil {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get user: %w", err)
	}
	var user domain.User
	if err := user.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return &user, nil
}

func (s *Store) Put(ctx context.Context, user *domain.User) error {
	if err := s.rdb.Set(ctx, userKey(user.ID), *user, 0).Err(); err != nil {
		return fmt.Errorf("redis set user: %w", err)
	}
	return nil
}
