package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func civilDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAttendanceRepository_CreateAndGet(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(testDB)

	checkIn := time.Date(2025, 3, 10, 0, 5, 0, 0, time.UTC)
	created, err := repo.Create(ctx, attendance.Attendance{
		ID:           newID(),
		UserID:       "u1",
		WorkspaceID:  "ws1",
		Date:         civilDay(2025, 3, 10),
		CheckIn:      &checkIn,
		WorkLocation: attendance.WorkLocationOffice,
		Status:       attendance.StatusPresent,
	})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByUserAndDate(ctx, "u1", "ws1", civilDay(2025, 3, 10))
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.Date.Equal(civilDay(2025, 3, 10)))
	require.NotNil(t, got.CheckIn)
	assert.True(t, got.CheckIn.Equal(checkIn))
	assert.Nil(t, got.CheckOut)

	_, err = repo.Create(ctx, attendance.Attendance{
		ID:           newID(),
		UserID:       "u1",
		WorkspaceID:  "ws1",
		Date:         civilDay(2025, 3, 10),
		WorkLocation: attendance.WorkLocationRemote,
		Status:       attendance.StatusLate,
	})
	assert.ErrorIs(t, err, attendance.ErrAttendanceExists)

	_, err = repo.GetByUserAndDate(ctx, "u1", "ws1", civilDay(2025, 3, 11))
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_UpdateAndList(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(testDB)

	for d := 3; d <= 5; d++ {
		_, err := repo.Create(ctx, attendance.Attendance{
			ID:           newID(),
			UserID:       "u1",
			WorkspaceID:  "ws1",
			Date:         civilDay(2025, 3, d),
			WorkLocation: attendance.WorkLocationOffice,
			Status:       attendance.StatusPresent,
		})
		require.NoError(t, err)
	}

	records, err := repo.ListByUserBetween(ctx, "u1", "ws1", civilDay(2025, 3, 4), civilDay(2025, 3, 5))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Date.Before(records[1].Date))

	rec := records[0]
	out := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	rec.CheckOut = &out
	rec.TotalMinutes, rec.OfficeMinutes = 480, 480
	rec.AppendNote("checked out")
	require.NoError(t, repo.Update(ctx, rec))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 480, got.TotalMinutes)
	require.NotNil(t, got.Note)
	assert.Equal(t, "checked out", *got.Note)

	rec.ID = "missing"
	assert.ErrorIs(t, repo.Update(ctx, rec), attendance.ErrAttendanceNotFound)

	all, err := repo.ListByWorkspaceBetween(ctx, "ws1", civilDay(2025, 3, 1), civilDay(2025, 3, 31))
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAttendanceRepository_CreateAbsencesSkipsExisting(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(testDB)

	_, err := repo.Create(ctx, attendance.Attendance{
		ID:           newID(),
		UserID:       "u1",
		WorkspaceID:  "ws1",
		Date:         civilDay(2025, 3, 10),
		WorkLocation: attendance.WorkLocationOffice,
		Status:       attendance.StatusPresent,
	})
	require.NoError(t, err)

	absences := []attendance.Attendance{
		{ID: newID(), UserID: "u1", WorkspaceID: "ws1", Date: civilDay(2025, 3, 10), WorkLocation: attendance.WorkLocationOffice},
		{ID: newID(), UserID: "u2", WorkspaceID: "ws1", Date: civilDay(2025, 3, 10), WorkLocation: attendance.WorkLocationOffice},
	}
	n, err := repo.CreateAbsences(ctx, absences)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.CreateAbsences(ctx, absences)
	require.NoError(t, err)
	assert.Zero(t, n)

	u2, err := repo.GetByUserAndDate(ctx, "u2", "ws1", civilDay(2025, 3, 10))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, u2.Status)
	assert.Nil(t, u2.CheckIn)
}

func TestWorkSessionRepository_OneOpenSession(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	records := postgresql.NewAttendanceRepository(testDB)
	sessions := postgresql.NewWorkSessionRepository(testDB)
	tx := postgresql.NewTransactor(testDB)

	rec, err := records.Create(ctx, attendance.Attendance{
		ID:           newID(),
		UserID:       "u1",
		WorkspaceID:  "ws1",
		Date:         civilDay(2025, 3, 10),
		WorkLocation: attendance.WorkLocationOffice,
		Status:       attendance.StatusPresent,
	})
	require.NoError(t, err)

	assert.Error(t, sessions.LockOwner(ctx, "u1", "ws1"), "lock outside a transaction")

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	var opened attendance.WorkSession
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := sessions.LockOwner(ctx, "u1", "ws1"); err != nil {
			return err
		}
		opened, err = sessions.Create(ctx, attendance.WorkSession{
			ID:                 newID(),
			AttendanceID:       rec.ID,
			UserID:             "u1",
			WorkspaceID:        "ws1",
			SessionType:        attendance.SessionTypeOffice,
			StartTime:          start,
			IsVerified:         true,
			VerificationMethod: "ip",
		})
		return err
	})
	require.NoError(t, err)

	_, err = sessions.Create(ctx, attendance.WorkSession{
		ID:           newID(),
		AttendanceID: rec.ID,
		UserID:       "u1",
		WorkspaceID:  "ws1",
		SessionType:  attendance.SessionTypeRemote,
		StartTime:    start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, attendance.ErrSessionAlreadyOpen)

	open, err := sessions.GetOpen(ctx, "u1", "ws1")
	require.NoError(t, err)
	assert.Equal(t, opened.ID, open.ID)

	stale, err := sessions.ListStaleOpen(ctx, start.Add(16*time.Hour))
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	open.Close(start.Add(90 * time.Minute))
	require.NoError(t, sessions.Close(ctx, open))
	assert.ErrorIs(t, sessions.Close(ctx, open), attendance.ErrNoActiveSession)

	_, err = sessions.GetOpen(ctx, "u1", "ws1")
	assert.ErrorIs(t, err, attendance.ErrNoActiveSession)

	day, err := sessions.ListByAttendance(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, day, 1)
	require.NotNil(t, day[0].DurationMinutes)
	assert.Equal(t, 90, *day[0].DurationMinutes)
}

func TestChangeRequestRepository_SinglePending(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	records := postgresql.NewAttendanceRepository(testDB)
	requests := postgresql.NewChangeRequestRepository(testDB)

	rec, err := records.Create(ctx, attendance.Attendance{
		ID:           newID(),
		UserID:       "u1",
		WorkspaceID:  "ws1",
		Date:         civilDay(2025, 3, 10),
		WorkLocation: attendance.WorkLocationOffice,
		Status:       attendance.StatusPresent,
	})
	require.NoError(t, err)

	cr := attendance.ChangeRequest{
		ID:            newID(),
		AttendanceID:  rec.ID,
		WorkspaceID:   "ws1",
		UserID:        "u1",
		RequestType:   attendance.RequestTypeCheckIn,
		RequestedTime: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Reason:        "forgot to check in",
		Status:        attendance.ChangeRequestPending,
	}
	created, err := requests.Create(ctx, cr)
	require.NoError(t, err)

	pending, err := requests.HasPending(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, pending)

	dup := cr
	dup.ID = newID()
	_, err = requests.Create(ctx, dup)
	assert.ErrorIs(t, err, attendance.ErrChangeRequestPending)

	reviewer := "admin-1"
	now := time.Now().UTC()
	created.Status = attendance.ChangeRequestApproved
	created.ReviewedBy = &reviewer
	created.ReviewedAt = &now
	require.NoError(t, requests.UpdateReview(ctx, created))
	assert.ErrorIs(t, requests.UpdateReview(ctx, created), attendance.ErrChangeRequestAlreadyProcessed)

	status := attendance.ChangeRequestApproved
	list, err := requests.List(ctx, attendance.ChangeRequestFilter{WorkspaceID: "ws1", Status: &status})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, reviewer, *list[0].ReviewedBy)

	require.NoError(t, requests.Delete(ctx, created.ID))
	_, err = requests.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, attendance.ErrChangeRequestNotFound)
}
