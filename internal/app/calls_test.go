package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediochat/mediochat/internal/adapters/memstore"
	"github.com/mediochat/mediochat/internal/core"
	"github.com/mediochat/mediochat/internal/domain"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []core.Mail
	fail bool
}

func (m *recordingMailer) Send(msg core.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newService(t *testing.T, mailer core.Mailer, now time.Time) (*CallService, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	doctor, err := domain.NewUser("doc-1", "Ada", "Holt")
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), doctor))
	return &CallService{
		Rooms: s,
		Users: s,
		Mail:  mailer,
		Clock: func() time.Time { return now },
	}, s
}

func TestCreateCallValidation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc, _ := newService(t, &recordingMailer{}, now)

	_, err := svc.CreateCall(ctx, CreateCallInput{DoctorID: "doc-1"})
	assert.ErrorIs(t, err, core.ErrEmailRequired)

	_, err = svc.CreateCall(ctx, CreateCallInput{
		DoctorID:     "doc-1",
		PatientEmail: "pat@example.com",
		StartsAt:     now.Add(-time.Hour),
	})
	assert.ErrorIs(t, err, core.ErrStartsInPast)
}

func TestCreateCallPersistsAndMails(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	mailer := &recordingMailer{}
	svc, store := newService(t, mailer, now)

	room, err := svc.CreateCall(ctx, CreateCallInput{
		DoctorID:     "doc-1",
		PatientEmail: "pat@example.com",
		StartsAt:     now.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, room.Code.Valid(), "code must be six digits")
	assert.False(t, room.Finished)

	got, err := store.Room(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("doc-1"), got.DoctorID)

	require.Eventually(t, func() bool { return mailer.count() == 1 },
		time.Second, 10*time.Millisecond, "appointment mail must go out")
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Equal(t, "pat@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].HTML, string(room.Code))
}

func TestCreateCallCompensatesFailedMail(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc, store := newService(t, &recordingMailer{fail: true}, now)

	room, err := svc.CreateCall(ctx, CreateCallInput{
		DoctorID:     "doc-1",
		PatientEmail: "pat@example.com",
		StartNow:     true,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := store.Room(ctx, room.Code)
		return errors.Is(err, core.ErrNotFound)
	}, time.Second, 10*time.Millisecond, "room without a delivered code must be deleted")
}

func TestPatientJoin(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc, store := newService(t, &recordingMailer{}, now)

	require.NoError(t, store.Create(ctx, &domain.Room{Code: "482913", DoctorID: "doc-1", StartsAt: now}))

	room, err := svc.PatientJoin(ctx, "482913")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCode("482913"), room.Code)

	_, err = svc.PatientJoin(ctx, "000000")
	assert.ErrorIs(t, err, core.ErrCodeInvalid)

	require.NoError(t, svc.EndCall(ctx, "482913"))
	_, err = svc.PatientJoin(ctx, "482913")
	assert.ErrorIs(t, err, core.ErrRoomFinished, "no credential may be minted for a finished room")
}

func TestStartCallOwnership(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc, store := newService(t, &recordingMailer{}, now)

	require.NoError(t, store.Create(ctx, &domain.Room{Code: "482913", DoctorID: "doc-1", StartsAt: now}))

	_, err := svc.StartCall(ctx, "doc-1", "482913")
	require.NoError(t, err)

	_, err = svc.StartCall(ctx, "doc-2", "482913")
	assert.ErrorIs(t, err, core.ErrNotFound, "foreign rooms must read like missing rooms")

	require.NoError(t, svc.EndCall(ctx, "482913"))
	_, err = svc.StartCall(ctx, "doc-1", "482913")
	assert.ErrorIs(t, err, core.ErrRoomFinished)
}

func TestEndCallMonotonic(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc, store := newService(t, &recordingMailer{}, now)

	require.NoError(t, store.Create(ctx, &domain.Room{Code: "482913", DoctorID: "doc-1", StartsAt: now}))
	require.NoError(t, svc.EndCall(ctx, "482913"))
	require.NoError(t, svc.EndCall(ctx, "482913"), "ending twice is a no-op")

	r, err := store.Room(ctx, "482913")
	require.NoError(t, err)
	assert.True(t, r.Finished)
}

func TestDeleteCallOwnershipAndMail(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	mailer := &recordingMailer{}
	svc, store := newService(t, mailer, now)

	require.NoError(t, store.Create(ctx, &domain.Room{
		Code: "482913", DoctorID: "doc-1", StartsAt: now, PatientEmail: "pat@example.com",
	}))

	assert.ErrorIs(t, svc.DeleteCall(ctx, "doc-2", "482913"), core.ErrNotFound)

	require.NoError(t, svc.DeleteCall(ctx, "doc-1", "482913"))
	_, err := store.Room(ctx, "482913")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.Eventually(t, func() bool { return mailer.count() == 1 },
		time.Second, 10*time.Millisecond, "cancellation mail must go out")
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Contains(t, mailer.sent[0].Subject, "CANCELLED")
}

func TestDashboardPartition(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc, store := newService(t, &recordingMailer{}, now)

	require.NoError(t, store.Create(ctx, &domain.Room{Code: "111111", DoctorID: "doc-1", StartsAt: now.Add(3 * time.Hour)}))                  // today
	require.NoError(t, store.Create(ctx, &domain.Room{Code: "222222", DoctorID: "doc-1", StartsAt: now.Add(3 * time.Hour), Finished: true})) // today, finished
	require.NoError(t, store.Create(ctx, &domain.Room{Code: "333333", DoctorID: "doc-1", StartsAt: now.AddDate(0, 0, 2)}))                   // upcoming
	require.NoError(t, store.Create(ctx, &domain.Room{Code: "444444", DoctorID: "doc-1", StartsAt: now.AddDate(0, 0, -2), Finished: true}))  // history only
	require.NoError(t, store.Create(ctx, &domain.Room{Code: "555555", DoctorID: "doc-2", StartsAt: now.Add(3 * time.Hour)}))                 // other doctor

	today, upcoming, err := svc.Dashboard(ctx, "doc-1")
	require.NoError(t, err)

	todayCodes := codes(today)
	assert.ElementsMatch(t, []domain.RoomCode{"111111", "222222"}, todayCodes,
		"today's list keeps finished calls visible")
	assert.Equal(t, []domain.RoomCode{"333333"}, codes(upcoming))
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc, store := newService(t, &recordingMailer{}, now)

	require.NoError(t, store.Create(ctx, &domain.Room{Code: "111111", DoctorID: "doc-1", StartsAt: now.AddDate(0, 0, -3), Finished: true}))
	require.NoError(t, store.Create(ctx, &domain.Room{Code: "222222", DoctorID: "doc-1", StartsAt: now.AddDate(0, 0, -1), Finished: true}))
	require.NoError(t, store.Create(ctx, &domain.Room{Code: "333333", DoctorID: "doc-1", StartsAt: now.AddDate(0, 0, 1)}))

	past, err := svc.History(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.RoomCode{"222222", "111111"}, codes(past))
}

func codes(rooms []*domain.Room) []domain.RoomCode {
	out := make([]domain.RoomCode, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Code)
	}
	return out
}
