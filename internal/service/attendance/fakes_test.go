package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
)

type store struct {
	mu          sync.Mutex
	attendances map[string]attendance.Attendance
	sessions    map[string]attendance.WorkSession
	changes     map[string]attendance.ChangeRequest
	presence    []attendance.PresenceCheck
	settings    map[string]worksettings.WorkSettings
	members     map[string][]workspace.Member
	lockCalls   int
}

func newStore() *store {
	return &store{
		attendances: make(map[string]attendance.Attendance),
		sessions:    make(map[string]attendance.WorkSession),
		changes:     make(map[string]attendance.ChangeRequest),
		settings:    make(map[string]worksettings.WorkSettings),
		members:     make(map[string][]workspace.Member),
	}
}

func (s *store) addMember(workspaceID, userID string, role workspace.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[workspaceID] = append(s.members[workspaceID], workspace.Member{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		Name:        userID,
		Email:       userID + "@example.com",
	})
}

func (s *store) openSessions(userID, workspaceID string) []attendance.WorkSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []attendance.WorkSession
	for _, ws := range s.sessions {
		if ws.UserID == userID && ws.WorkspaceID == workspaceID && ws.IsOpen() {
			out = append(out, ws)
		}
	}
	return out
}

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---- attendance ----

type fakeAttendanceRepo struct{ *store }

func (r fakeAttendanceRepo) GetByUserAndDate(ctx context.Context, userID, workspaceID string, date time.Time) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendances {
		if a.UserID == userID && a.WorkspaceID == workspaceID && a.Date.Equal(date) {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r fakeAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r fakeAttendanceRepo) list(match func(attendance.Attendance) bool) []attendance.Attendance {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.attendances {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (r fakeAttendanceRepo) ListByUserBetween(ctx context.Context, userID, workspaceID string, from, to time.Time) ([]attendance.Attendance, error) {
	return r.list(func(a attendance.Attendance) bool {
		return a.UserID == userID && a.WorkspaceID == workspaceID && !a.Date.Before(from) && !a.Date.After(to)
	}), nil
}

func (r fakeAttendanceRepo) ListByWorkspaceBetween(ctx context.Context, workspaceID string, from, to time.Time) ([]attendance.Attendance, error) {
	return r.list(func(a attendance.Attendance) bool {
		return a.WorkspaceID == workspaceID && !a.Date.Before(from) && !a.Date.After(to)
	}), nil
}

func (r fakeAttendanceRepo) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.attendances {
		if existing.UserID == a.UserID && existing.WorkspaceID == a.WorkspaceID && existing.Date.Equal(a.Date) {
			return attendance.Attendance{}, attendance.ErrAttendanceExists
		}
	}
	r.attendances[a.ID] = a
	return a, nil
}

func (r fakeAttendanceRepo) Update(ctx context.Context, a attendance.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attendances[a.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	r.attendances[a.ID] = a
	return nil
}

func (r fakeAttendanceRepo) CreateAbsences(ctx context.Context, records []attendance.Attendance) (int, error) {
	n := 0
	for _, a := range records {
		if _, err := r.Create(ctx, a); err == nil {
			n++
		}
	}
	return n, nil
}

// ---- sessions ----

type fakeSessionRepo struct{ *store }

func (r fakeSessionRepo) LockOwner(ctx context.Context, userID, workspaceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lockCalls++
	return nil
}

func (r fakeSessionRepo) GetOpen(ctx context.Context, userID, workspaceID string) (attendance.WorkSession, error) {
	open := r.openSessions(userID, workspaceID)
	if len(open) == 0 {
		return attendance.WorkSession{}, attendance.ErrNoActiveSession
	}
	return open[0], nil
}

func (r fakeSessionRepo) ListByAttendance(ctx context.Context, attendanceID string) ([]attendance.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.WorkSession
	for _, s := range r.sessions {
		if s.AttendanceID == attendanceID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r fakeSessionRepo) ListOpenByWorkspace(ctx context.Context, workspaceID string) ([]attendance.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.WorkSession
	for _, s := range r.sessions {
		if s.WorkspaceID == workspaceID && s.IsOpen() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r fakeSessionRepo) ListStaleOpen(ctx context.Context, startedBefore time.Time) ([]attendance.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.WorkSession
	for _, s := range r.sessions {
		if s.IsOpen() && s.StartTime.Before(startedBefore) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r fakeSessionRepo) Create(ctx context.Context, s attendance.WorkSession) (attendance.WorkSession, error) {
	if len(r.openSessions(s.UserID, s.WorkspaceID)) > 0 {
		return attendance.WorkSession{}, attendance.ErrSessionAlreadyOpen
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return s, nil
}

func (r fakeSessionRepo) Close(ctx context.Context, s attendance.WorkSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

// ---- change requests ----

type fakeChangeRepo struct{ *store }

func (r fakeChangeRepo) Create(ctx context.Context, cr attendance.ChangeRequest) (attendance.ChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes[cr.ID] = cr
	return cr, nil
}

func (r fakeChangeRepo) GetByID(ctx context.Context, id string) (attendance.ChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cr, ok := r.changes[id]
	if !ok {
		return attendance.ChangeRequest{}, attendance.ErrChangeRequestNotFound
	}
	return cr, nil
}

func (r fakeChangeRepo) List(ctx context.Context, f attendance.ChangeRequestFilter) ([]attendance.ChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.ChangeRequest
	for _, cr := range r.changes {
		if cr.WorkspaceID != f.WorkspaceID {
			continue
		}
		if f.UserID != nil && cr.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && cr.Status != *f.Status {
			continue
		}
		if f.AttendanceID != nil && cr.AttendanceID != *f.AttendanceID {
			continue
		}
		out = append(out, cr)
	}
	return out, nil
}

func (r fakeChangeRepo) HasPending(ctx context.Context, attendanceID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cr := range r.changes {
		if cr.AttendanceID == attendanceID && cr.IsPending() {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeChangeRepo) UpdateReview(ctx context.Context, cr attendance.ChangeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes[cr.ID] = cr
	return nil
}

func (r fakeChangeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.changes, id)
	return nil
}

// ---- presence, settings, members ----

type fakePresenceRepo struct{ *store }

func (r fakePresenceRepo) Create(ctx context.Context, p attendance.PresenceCheck) (attendance.PresenceCheck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presence = append(r.presence, p)
	return p, nil
}

type fakeSettingsRepo struct{ *store }

func (r fakeSettingsRepo) Get(ctx context.Context, workspaceID string) (worksettings.WorkSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[workspaceID]
	if !ok {
		return worksettings.WorkSettings{}, worksettings.ErrSettingsNotFound
	}
	return s, nil
}

func (r fakeSettingsRepo) Upsert(ctx context.Context, s worksettings.WorkSettings) (worksettings.WorkSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[s.WorkspaceID] = s
	return s, nil
}

type fakeMemberRepo struct{ *store }

func (r fakeMemberRepo) GetMember(ctx context.Context, workspaceID, userID string) (workspace.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members[workspaceID] {
		if m.UserID == userID {
			return m, nil
		}
	}
	return workspace.Member{}, workspace.ErrNotMember
}

func (r fakeMemberRepo) ListMembers(ctx context.Context, workspaceID string) ([]workspace.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]workspace.Member(nil), r.members[workspaceID]...), nil
}

func (r fakeMemberRepo) ListWorkspaceIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type fakeNetworks struct {
	networks []worksettings.WifiNetwork
}

func (f fakeNetworks) ListActive(ctx context.Context, workspaceID string) ([]worksettings.WifiNetwork, error) {
	return f.networks, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []attendance.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e attendance.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// clock is a settable time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
