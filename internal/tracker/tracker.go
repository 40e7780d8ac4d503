package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/control-horario/jornada-tracker/internal/database"
	"github.com/control-horario/jornada-tracker/internal/model"
)

// Phase is the explicit workday state. Using a tagged state instead of
// inferring it from nullable fields keeps illegal combinations (an open
// pause without an open workday) unrepresentable.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseActive
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhasePaused:
		return "paused"
	default:
		return "none"
	}
}

// State is the user's current position in the workday lifecycle.
// Workday is set for PhaseActive and PhasePaused; Pause only for PhasePaused.
type State struct {
	Phase   Phase
	Workday *model.Workday
	Pause   *model.Pause
}

// WorkdayStore is the slice of the workday DAO the tracker needs.
type WorkdayStore interface {
	Insert(ctx context.Context, dto database.InsertWorkdayDTO) (model.ID, error)
	Get(ctx context.Context, id model.ID) (model.Workday, error)
	Update(ctx context.Context, id model.ID, dto database.UpdateWorkdayDTO) error
	FindOpen(ctx context.Context, user model.ID) (model.Workday, error)
}

// PauseStore is the slice of the pause DAO the tracker needs.
type PauseStore interface {
	Insert(ctx context.Context, dto database.InsertPauseDTO) (model.ID, error)
	Get(ctx context.Context, id model.ID) (model.Pause, error)
	Update(ctx context.Context, id model.ID, dto database.UpdatePauseDTO) error
	FindOpen(ctx context.Context, workday model.ID) (model.Pause, error)
}

// Tracker drives the start/pause/resume/end lifecycle of a user's workday.
// Every transition re-reads the store immediately before mutating, so the
// store is the single source of truth across requests; on a store failure
// no partial transition is applied.
type Tracker struct {
	logger   *slog.Logger
	workdays WorkdayStore
	pauses   PauseStore
	now      func() time.Time
}

func New(logger *slog.Logger, workdays WorkdayStore, pauses PauseStore) *Tracker {
	return &Tracker{
		logger:   logger.With("module", "tracker"),
		workdays: workdays,
		pauses:   pauses,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// Current reconstructs the user's state from the store: an open workday
// plus an open pause means paused, an open workday alone means active,
// otherwise there is no workday in progress.
func (t *Tracker) Current(ctx context.Context, user model.ID) (State, error) {
	workday, err := t.workdays.FindOpen(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return State{Phase: PhaseNone}, nil
		}

		return State{}, err
	}

	pause, err := t.pauses.FindOpen(ctx, workday.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return State{Phase: PhaseActive, Workday: &workday}, nil
		}

		return State{}, err
	}

	return State{Phase: PhasePaused, Workday: &workday, Pause: &pause}, nil
}

// Start opens a new workday. The guard is a fresh read of the store, not
// cached state, so a workday opened from another device is still seen.
func (t *Tracker) Start(ctx context.Context, user model.ID) (State, error) {
	state, err := t.Current(ctx, user)
	if err != nil {
		return State{}, err
	}

	if state.Phase != PhaseNone {
		return State{}, model.NewError("workday", model.ErrWorkdayActive)
	}

	id, err := t.workdays.Insert(ctx, database.InsertWorkdayDTO{
		User:  user,
		Start: t.now(),
	})
	if err != nil {
		return State{}, err
	}

	workday, err := t.workdays.Get(ctx, id)
	if err != nil {
		return State{}, err
	}

	t.logger.Info("workday started", "userId", user, "workdayId", workday.ID)

	return State{Phase: PhaseActive, Workday: &workday}, nil
}

// TogglePause pauses an active workday or resumes a paused one. It is a
// single-shot toggle: which branch runs depends solely on whether an open
// pause exists right now.
func (t *Tracker) TogglePause(ctx context.Context, user model.ID) (State, error) {
	state, err := t.Current(ctx, user)
	if err != nil {
		return State{}, err
	}

	switch state.Phase {
	case PhaseNone:
		return State{}, model.NewError("workday", model.ErrNoActiveWorkday)

	case PhasePaused:
		if err := t.pauses.Update(ctx, state.Pause.ID, database.UpdatePauseDTO{End: t.now()}); err != nil {
			return State{}, err
		}

		t.logger.Info("workday resumed", "userId", user, "workdayId", state.Workday.ID, "pauseId", state.Pause.ID)

		return State{Phase: PhaseActive, Workday: state.Workday}, nil

	default: // PhaseActive
		id, err := t.pauses.Insert(ctx, database.InsertPauseDTO{
			Workday: state.Workday.ID,
			Start:   t.now(),
		})
		if err != nil {
			return State{}, err
		}

		pause, err := t.pauses.Get(ctx, id)
		if err != nil {
			return State{}, err
		}

		t.logger.Info("workday paused", "userId", user, "workdayId", state.Workday.ID, "pauseId", pause.ID)

		return State{Phase: PhasePaused, Workday: state.Workday, Pause: &pause}, nil
	}
}

// End completes the open workday. An open pause is closed first with the
// same timestamp as the workday close, so a completed workday never keeps
// a dangling open pause.
func (t *Tracker) End(ctx context.Context, user model.ID) (State, error) {
	state, err := t.Current(ctx, user)
	if err != nil {
		return State{}, err
	}

	if state.Phase == PhaseNone {
		return State{}, model.NewError("workday", model.ErrNoActiveWorkday)
	}

	now := t.now()

	if state.Phase == PhasePaused {
		if err := t.pauses.Update(ctx, state.Pause.ID, database.UpdatePauseDTO{End: now}); err != nil {
			return State{}, err
		}
	}

	status := model.StatusCompleted
	err = t.workdays.Update(ctx, state.Workday.ID, database.UpdateWorkdayDTO{
		End:    &now,
		Status: &status,
	})
	if err != nil {
		return State{}, err
	}

	t.logger.Info("workday ended", "userId", user, "workdayId", state.Workday.ID)

	return State{Phase: PhaseNone}, nil
}
