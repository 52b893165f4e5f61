package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

type dayKey struct {
	userID int64
	date   time.Time
}

type memoryAttendanceRepo struct {
	nextID int64
	rows   map[int64]*Attendance
	byDay  map[dayKey]int64
}

func newMemoryAttendanceRepo() *memoryAttendanceRepo {
	return &memoryAttendanceRepo{nextID: 1, rows: map[int64]*Attendance{}, byDay: map[dayKey]int64{}}
}

func (m *memoryAttendanceRepo) Create(_ context.Context, att *Attendance) (*Attendance, error) {
	key := dayKey{att.UserID, att.Date}
	if _, ok := m.byDay[key]; ok {
		return nil, ErrAlreadyCheckedIn
	}
	stored := *att
	stored.ID = m.nextID
	m.rows[stored.ID] = &stored
	m.byDay[key] = stored.ID
	m.nextID++
	copied := stored
	return &copied, nil
}

func (m *memoryAttendanceRepo) GetByUserAndDate(_ context.Context, userID int64, date time.Time) (*Attendance, error) {
	id, ok := m.byDay[dayKey{userID, date}]
	if !ok {
		return nil, nil
	}
	copied := *m.rows[id]
	return &copied, nil
}

func (m *memoryAttendanceRepo) SetCheckOut(_ context.Context, id int64, at time.Time, location, photo, notes string) (*Attendance, error) {
	att, ok := m.rows[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	if att.CheckOut != nil {
		return nil, ErrAlreadyCheckedOut
	}
	att.CheckOut = &at
	att.CheckOutLocation = location
	att.CheckOutPhoto = photo
	if notes != "" {
		att.Notes = notes
	}
	copied := *att
	return &copied, nil
}

func (m *memoryAttendanceRepo) UpdateStatus(_ context.Context, id int64, status Status) (*Attendance, error) {
	att, ok := m.rows[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	att.Status = status
	copied := *att
	return &copied, nil
}

func (m *memoryAttendanceRepo) ListByUser(_ context.Context, userID int64, from, to time.Time) ([]Attendance, error) {
	var out []Attendance
	for _, att := range m.rows {
		if att.UserID != userID || att.Date.Before(from) || att.Date.After(to) {
			continue
		}
		out = append(out, *att)
	}
	return out, nil
}

func serviceAt(repo *memoryAttendanceRepo, at time.Time) *Service {
	svc := NewService(repo, Config{LateCutoff: "09:00"})
	svc.now = func() time.Time { return at }
	return svc
}

func TestCheckInOnTimeIsPresent(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	svc := serviceAt(repo, time.Date(2025, time.June, 2, 8, 45, 0, 0, time.UTC))

	att, err := svc.CheckIn(context.Background(), 7, CheckInput{Location: "office"})
	require.NoError(t, err)
	require.Equal(t, StatusPresent, att.Status)
	require.Equal(t, "office", att.CheckInLocation)
}

func TestCheckInAfterCutoffIsLate(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	svc := serviceAt(repo, time.Date(2025, time.June, 2, 9, 15, 0, 0, time.UTC))

	att, err := svc.CheckIn(context.Background(), 7, CheckInput{})
	require.NoError(t, err)
	require.Equal(t, StatusLate, att.Status)
}

func TestDoubleCheckInRejected(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	svc := serviceAt(repo, time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, 7, CheckInput{})
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, 7, CheckInput{})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	svc := serviceAt(repo, time.Date(2025, time.June, 2, 17, 0, 0, 0, time.UTC))

	_, err := svc.CheckOut(context.Background(), 7, CheckInput{})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCheckOutFlow(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	svc := serviceAt(repo, time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, 7, CheckInput{})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2025, time.June, 2, 17, 5, 0, 0, time.UTC) }
	att, err := svc.CheckOut(ctx, 7, CheckInput{Location: "office"})
	require.NoError(t, err)
	require.NotNil(t, att.CheckOut)

	_, err = svc.CheckOut(ctx, 7, CheckInput{})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCheckOutBeforeCheckInRejected(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	svc := serviceAt(repo, time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, 7, CheckInput{})
	require.NoError(t, err)

	// Clock skew: the check-out timestamp lands before the stored check-in.
	svc.now = func() time.Time { return time.Date(2025, time.June, 2, 8, 30, 0, 0, time.UTC) }
	_, err = svc.CheckOut(ctx, 7, CheckInput{})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestOverrideStatusIsAdminOnly(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	svc := serviceAt(repo, time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC))

	att, err := svc.CheckIn(context.Background(), 7, CheckInput{})
	require.NoError(t, err)

	member := shared.ContextWithIdentity(context.Background(), &shared.Identity{UserID: 7})
	_, err = svc.OverrideStatus(member, att.ID, StatusSick)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	admin := shared.ContextWithIdentity(context.Background(), &shared.Identity{UserID: 1, IsAdmin: true})
	updated, err := svc.OverrideStatus(admin, att.ID, StatusSick)
	require.NoError(t, err)
	require.Equal(t, StatusSick, updated.Status)

	_, err = svc.OverrideStatus(admin, att.ID, Status("VACATION"))
	require.ErrorIs(t, err, httpx.ErrValidation)
}
