package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mediochat/mediochat/internal/core"
	"github.com/mediochat/mediochat/internal/domain"
)

// CallService coordinates the call record lifecycle:
// scheduled → in-progress → finished. Only the owning doctor may start,
// end or delete a call; ending never tears down live signaling
// connections, those close when participants leave the page.
type CallService struct {
	Rooms core.RoomStore
	Users core.UserStore
	Mail  core.Mailer

	// Clock is swapped in tests; nil means time.Now.
	Clock func() time.Time
}

func (s *CallService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// CreateCallInput carries the dashboard form fields.
type CreateCallInput struct {
	DoctorID     domain.UserID
	PatientEmail string
	StartNow     bool
	StartsAt     time.Time
}

// CreateCall generates a fresh 6-digit code, persists the room and
// mails the patient the code. The mail goes out asynchronously; if it
// fails, the just-created room is deleted so no orphan appointment
// exists that the patient can never learn about.
func (s *CallService) CreateCall(ctx context.Context, in CreateCallInput) (*domain.Room, error) {
	if in.PatientEmail == "" {
		return nil, core.ErrEmailRequired
	}

	startsAt := in.StartsAt
	if in.StartNow {
		startsAt = s.now()
	} else if startsAt.Before(s.now()) {
		return nil, core.ErrStartsInPast
	}

	doctor, err := s.Users.User(ctx, in.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	code, err := s.newCode(ctx)
	if err != nil {
		return nil, err
	}

	room := &domain.Room{
		Code:         code,
		DoctorID:     in.DoctorID,
		Finished:     false,
		StartsAt:     startsAt,
		PatientEmail: in.PatientEmail,
	}
	if err := s.Rooms.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	log.Info().Str("module", "app.calls").Str("room", string(code)).
		Str("doctor", string(in.DoctorID)).Time("starts_at", startsAt).Msg("call created")

	go s.sendAppointmentMail(room, doctor, in.StartNow)

	return room, nil
}

// PatientJoin validates a code submitted on the home page form. This is
// the single point where the finished flag gates credential minting.
func (s *CallService) PatientJoin(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	room, err := s.Rooms.Room(ctx, code)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrCodeInvalid
		}
		return nil, fmt.Errorf("lookup room: %w", err)
	}
	if room.Finished {
		return nil, core.ErrRoomFinished
	}
	return room, nil
}

// StartCall verifies the room exists, belongs to the doctor and has not
// finished. An ownership mismatch reads exactly like a missing room.
func (s *CallService) StartCall(ctx context.Context, doctorID domain.UserID, code domain.RoomCode) (*domain.Room, error) {
	room, err := s.Rooms.Room(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.DoctorID != doctorID {
		return nil, core.ErrNotFound
	}
	if room.Finished {
		return nil, core.ErrRoomFinished
	}
	return room, nil
}

// EndCall marks the room finished. The flag is monotonic; ending an
// already-finished call is a no-op.
func (s *CallService) EndCall(ctx context.Context, code domain.RoomCode) error {
	if err := s.Rooms.Finish(ctx, code); err != nil {
		return fmt.Errorf("finish room: %w", err)
	}
	log.Info().Str("module", "app.calls").Str("room", string(code)).Msg("call ended")
	return nil
}

// DeleteCall removes an appointment and tells the patient it was
// cancelled. The cancellation mail is best-effort.
func (s *CallService) DeleteCall(ctx context.Context, doctorID domain.UserID, code domain.RoomCode) error {
	room, err := s.Rooms.Room(ctx, code)
	if err != nil {
		return err
	}
	if room.DoctorID != doctorID {
		return core.ErrNotFound
	}
	if err := s.Rooms.Delete(ctx, code); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	log.Info().Str("module", "app.calls").Str("room", string(code)).Msg("call deleted")

	doctor, err := s.Users.User(ctx, doctorID)
	if err != nil {
		log.Error().Err(err).Str("module", "app.calls").Msg("cancellation mail skipped")
		return nil
	}
	go func() {
		if err := s.Mail.Send(cancelledMail(room, doctor)); err != nil {
			log.Error().Err(err).Str("module", "app.calls").
				Str("room", string(room.Code)).Msg("cancellation mail failed")
		}
	}()
	return nil
}

// Dashboard partitions a doctor's calls the way the dashboard shows
// them: today's calls (finished or not) and upcoming unfinished ones.
// Finished calls on other days belong to History.
func (s *CallService) Dashboard(ctx context.Context, doctorID domain.UserID) (today, upcoming []*domain.Room, err error) {
	rooms, err := s.Rooms.ByDoctor(ctx, doctorID)
	if err != nil {
		return nil, nil, fmt.Errorf("list rooms: %w", err)
	}

	now := s.now()
	y, m, d := now.Date()
	for _, r := range rooms {
		ry, rm, rd := r.StartsAt.Date()
		switch {
		case ry == y && rm == m && rd == d:
			today = append(today, r)
		case !r.Finished && r.StartsAt.After(now):
			upcoming = append(upcoming, r)
		}
	}
	sortByStart(today, false)
	sortByStart(upcoming, false)
	return today, upcoming, nil
}

// History lists a doctor's finished calls, most recent first.
func (s *CallService) History(ctx context.Context, doctorID domain.UserID) ([]*domain.Room, error) {
	rooms, err := s.Rooms.ByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	past := make([]*domain.Room, 0, len(rooms))
	for _, r := range rooms {
		if r.Finished {
			past = append(past, r)
		}
	}
	sortByStart(past, true)
	return past, nil
}

func sortByStart(rooms []*domain.Room, desc bool) {
	sort.Slice(rooms, func(i, j int) bool {
		if desc {
			return rooms[i].StartsAt.After(rooms[j].StartsAt)
		}
		return rooms[i].StartsAt.Before(rooms[j].StartsAt)
	})
}

// newCode draws random 6-digit codes until one is unused. The code is
// both the record id and the access secret the patient receives.
func (s *CallService) newCode(ctx context.Context) (domain.RoomCode, error) {
	for {
		n, err := rand.Int(rand.Reader, big.NewInt(900000))
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		code := domain.RoomCode(fmt.Sprintf("%06d", n.Int64()+100000))
		_, err = s.Rooms.Room(ctx, code)
		if errors.Is(err, core.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
	}
}

// sendAppointmentMail delivers the access code. On failure the room is
// deleted again: a compensating action, itself best-effort.
func (s *CallService) sendAppointmentMail(room *domain.Room, doctor *domain.User, startNow bool) {
	if err := s.Mail.Send(appointmentMail(room, doctor, startNow)); err != nil {
		log.Error().Err(err).Str("module", "app.calls").
			Str("room", string(room.Code)).Msg("appointment mail failed, deleting room")
		if derr := s.Rooms.Delete(context.Background(), room.Code); derr != nil {
			log.Error().Err(derr).Str("module", "app.calls").
				Str("room", string(room.Code)).Msg("compensating delete failed")
		}
	}
}
