package tracker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/control-horario/jornada-tracker/internal/database"
	"github.com/control-horario/jornada-tracker/internal/model"
	"github.com/control-horario/jornada-tracker/internal/tracker"
)

// In-memory stand-ins for the workday and pause DAOs.

type memWorkdays struct {
	rows   map[model.ID]model.Workday
	nextID model.ID
}

func newMemWorkdays() *memWorkdays {
	return &memWorkdays{rows: make(map[model.ID]model.Workday)}
}

func (m *memWorkdays) Insert(_ context.Context, dto database.InsertWorkdayDTO) (model.ID, error) {
	for _, w := range m.rows {
		if w.User == dto.User && w.EndTime == nil {
			return 0, model.NewError("workday", model.ErrWorkdayActive)
		}
	}

	m.nextID++
	m.rows[m.nextID] = model.Workday{
		ID:        m.nextID,
		User:      dto.User,
		StartTime: dto.Start,
		Status:    model.StatusActive,
	}
	return m.nextID, nil
}

func (m *memWorkdays) Get(_ context.Context, id model.ID) (model.Workday, error) {
	w, ok := m.rows[id]
	if !ok {
		return model.Workday{}, model.NewError("workday", model.ErrNotFound)
	}
	return w, nil
}

func (m *memWorkdays) Update(_ context.Context, id model.ID, dto database.UpdateWorkdayDTO) error {
	w, ok := m.rows[id]
	if !ok {
		return model.NewError("workday", model.ErrNotFound)
	}
	if dto.End != nil {
		end := *dto.End
		w.EndTime = &end
	}
	if dto.Status != nil {
		w.Status = *dto.Status
	}
	m.rows[id] = w
	return nil
}

func (m *memWorkdays) FindOpen(_ context.Context, user model.ID) (model.Workday, error) {
	var found *model.Workday
	for _, w := range m.rows {
		w := w
		if w.User == user && w.EndTime == nil {
			if found == nil || w.StartTime.After(found.StartTime) {
				found = &w
			}
		}
	}
	if found == nil {
		return model.Workday{}, model.NewError("workday", model.ErrNotFound)
	}
	return *found, nil
}

func (m *memWorkdays) countOpen(user model.ID) int {
	n := 0
	for _, w := range m.rows {
		if w.User == user && w.EndTime == nil {
			n++
		}
	}
	return n
}

type memPauses struct {
	rows   map[model.ID]model.Pause
	nextID model.ID
}

func newMemPauses() *memPauses {
	return &memPauses{rows: make(map[model.ID]model.Pause)}
}

func (m *memPauses) Insert(_ context.Context, dto database.InsertPauseDTO) (model.ID, error) {
	for _, p := range m.rows {
		if p.Workday == dto.Workday && p.EndTime == nil {
			return 0, model.NewError("pause", model.ErrExists)
		}
	}

	m.nextID++
	m.rows[m.nextID] = model.Pause{
		ID:        m.nextID,
		Workday:   dto.Workday,
		StartTime: dto.Start,
	}
	return m.nextID, nil
}

func (m *memPauses) Get(_ context.Context, id model.ID) (model.Pause, error) {
	p, ok := m.rows[id]
	if !ok {
		return model.Pause{}, model.NewError("pause", model.ErrNotFound)
	}
	return p, nil
}

func (m *memPauses) Update(_ context.Context, id model.ID, dto database.UpdatePauseDTO) error {
	p, ok := m.rows[id]
	if !ok {
		return model.NewError("pause", model.ErrNotFound)
	}
	end := dto.End
	p.EndTime = &end
	m.rows[id] = p
	return nil
}

func (m *memPauses) FindOpen(_ context.Context, workday model.ID) (model.Pause, error) {
	for _, p := range m.rows {
		if p.Workday == workday && p.EndTime == nil {
			return p, nil
		}
	}
	return model.Pause{}, model.NewError("pause", model.ErrNotFound)
}

func (m *memPauses) countOpen(workday model.ID) int {
	n := 0
	for _, p := range m.rows {
		if p.Workday == workday && p.EndTime == nil {
			n++
		}
	}
	return n
}

type fixture struct {
	tracker  *tracker.Tracker
	workdays *memWorkdays
	pauses   *memPauses
	now      time.Time
}

func newFixture() *fixture {
	f := &fixture{
		workdays: newMemWorkdays(),
		pauses:   newMemPauses(),
		now:      time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.tracker = tracker.New(logger, f.workdays, f.pauses)
	f.tracker.SetClock(func() time.Time { return f.now })

	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

const user = model.ID(1)

func TestStart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	state, err := f.tracker.Start(ctx, user)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	if state.Phase != tracker.PhaseActive {
		t.Errorf("phase = %v, want active", state.Phase)
	}
	if state.Workday == nil {
		t.Fatal("expected workday in state")
	}
	if !state.Workday.StartTime.Equal(f.now) {
		t.Errorf("startTime = %v, want %v", state.Workday.StartTime, f.now)
	}
	if state.Workday.Status != model.StatusActive {
		t.Errorf("status = %q, want %q", state.Workday.Status, model.StatusActive)
	}

	// Round-trip: the open-workday query must see the same record.
	open, err := f.workdays.FindOpen(ctx, user)
	if err != nil {
		t.Fatalf("FindOpen: unexpected error: %v", err)
	}
	if !open.StartTime.Equal(state.Workday.StartTime) || open.Status != model.StatusActive {
		t.Errorf("FindOpen = %+v, want startTime %v and status active", open, state.Workday.StartTime)
	}
}

func TestStartWhileOpenConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.tracker.Start(ctx, user); err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	_, err := f.tracker.Start(ctx, user)
	if !errors.Is(err, model.ErrWorkdayActive) {
		t.Fatalf("second Start error = %v, want ErrWorkdayActive", err)
	}

	if got := f.workdays.countOpen(user); got != 1 {
		t.Errorf("open workdays = %d, want 1", got)
	}
}

func TestTogglePauseWithoutWorkday(t *testing.T) {
	f := newFixture()

	_, err := f.tracker.TogglePause(context.Background(), user)
	if !errors.Is(err, model.ErrNoActiveWorkday) {
		t.Fatalf("TogglePause error = %v, want ErrNoActiveWorkday", err)
	}
}

func TestEndWithoutWorkday(t *testing.T) {
	f := newFixture()

	_, err := f.tracker.End(context.Background(), user)
	if !errors.Is(err, model.ErrNoActiveWorkday) {
		t.Fatalf("End error = %v, want ErrNoActiveWorkday", err)
	}
}

func TestPauseResumeRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.tracker.Start(ctx, user); err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	f.advance(time.Hour)
	state, err := f.tracker.TogglePause(ctx, user)
	if err != nil {
		t.Fatalf("TogglePause: unexpected error: %v", err)
	}
	if state.Phase != tracker.PhasePaused {
		t.Fatalf("phase = %v, want paused", state.Phase)
	}
	if state.Pause == nil || !state.Pause.StartTime.Equal(f.now) {
		t.Fatalf("pause = %+v, want open pause started at %v", state.Pause, f.now)
	}

	f.advance(30 * time.Minute)
	resumeAt := f.now
	state, err = f.tracker.TogglePause(ctx, user)
	if err != nil {
		t.Fatalf("TogglePause (resume): unexpected error: %v", err)
	}
	if state.Phase != tracker.PhaseActive {
		t.Errorf("phase = %v, want active", state.Phase)
	}

	if got := f.pauses.countOpen(state.Workday.ID); got != 0 {
		t.Errorf("open pauses = %d, want 0", got)
	}

	pause, err := f.pauses.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get pause: unexpected error: %v", err)
	}
	if pause.EndTime == nil || !pause.EndTime.Equal(resumeAt) {
		t.Errorf("pause endTime = %v, want %v", pause.EndTime, resumeAt)
	}
}

func TestEndWhilePausedClosesPause(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.tracker.Start(ctx, user); err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	f.advance(2 * time.Hour)
	if _, err := f.tracker.TogglePause(ctx, user); err != nil {
		t.Fatalf("TogglePause: unexpected error: %v", err)
	}

	f.advance(15 * time.Minute)
	endAt := f.now
	state, err := f.tracker.End(ctx, user)
	if err != nil {
		t.Fatalf("End: unexpected error: %v", err)
	}
	if state.Phase != tracker.PhaseNone {
		t.Errorf("phase = %v, want none", state.Phase)
	}

	workday, err := f.workdays.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get workday: unexpected error: %v", err)
	}
	if workday.Status != model.StatusCompleted {
		t.Errorf("status = %q, want %q", workday.Status, model.StatusCompleted)
	}
	if workday.EndTime == nil || !workday.EndTime.Equal(endAt) {
		t.Fatalf("workday endTime = %v, want %v", workday.EndTime, endAt)
	}

	pause, err := f.pauses.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get pause: unexpected error: %v", err)
	}
	if pause.EndTime == nil || !pause.EndTime.Equal(*workday.EndTime) {
		t.Errorf("pause endTime = %v, want same as workday endTime %v", pause.EndTime, *workday.EndTime)
	}
}

func TestCurrentReconstructsState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	state, err := f.tracker.Current(ctx, user)
	if err != nil {
		t.Fatalf("Current: unexpected error: %v", err)
	}
	if state.Phase != tracker.PhaseNone {
		t.Fatalf("phase = %v, want none", state.Phase)
	}

	// Seed the store directly, as if another process had written it.
	wid, err := f.workdays.Insert(ctx, database.InsertWorkdayDTO{User: user, Start: f.now})
	if err != nil {
		t.Fatalf("Insert workday: unexpected error: %v", err)
	}
	if _, err := f.pauses.Insert(ctx, database.InsertPauseDTO{Workday: wid, Start: f.now.Add(time.Hour)}); err != nil {
		t.Fatalf("Insert pause: unexpected error: %v", err)
	}

	state, err = f.tracker.Current(ctx, user)
	if err != nil {
		t.Fatalf("Current: unexpected error: %v", err)
	}
	if state.Phase != tracker.PhasePaused {
		t.Errorf("phase = %v, want paused", state.Phase)
	}
	if state.Workday == nil || state.Workday.ID != wid {
		t.Errorf("workday = %+v, want id %d", state.Workday, wid)
	}
	if state.Pause == nil || state.Pause.Workday != wid {
		t.Errorf("pause = %+v, want one owned by workday %d", state.Pause, wid)
	}
}

func TestLifecycleInvariants(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	check := func(step string) {
		t.Helper()
		if got := f.workdays.countOpen(user); got > 1 {
			t.Fatalf("%s: open workdays = %d, want at most 1", step, got)
		}
		for id, w := range f.workdays.rows {
			if got := f.pauses.countOpen(id); got > 1 {
				t.Fatalf("%s: open pauses for workday %d = %d, want at most 1", step, id, got)
			}
			if w.EndTime != nil && f.pauses.countOpen(id) != 0 {
				t.Fatalf("%s: completed workday %d still has an open pause", step, id)
			}
		}
	}

	steps := []struct {
		name string
		op   func() (tracker.State, error)
	}{
		{"start", func() (tracker.State, error) { return f.tracker.Start(ctx, user) }},
		{"pause", func() (tracker.State, error) { return f.tracker.TogglePause(ctx, user) }},
		{"resume", func() (tracker.State, error) { return f.tracker.TogglePause(ctx, user) }},
		{"pause again", func() (tracker.State, error) { return f.tracker.TogglePause(ctx, user) }},
		{"end", func() (tracker.State, error) { return f.tracker.End(ctx, user) }},
		{"start again", func() (tracker.State, error) { return f.tracker.Start(ctx, user) }},
		{"end again", func() (tracker.State, error) { return f.tracker.End(ctx, user) }},
	}

	for _, step := range steps {
		f.advance(10 * time.Minute)
		if _, err := step.op(); err != nil {
			t.Fatalf("%s: unexpected error: %v", step.name, err)
		}
		check(step.name)
	}
}
