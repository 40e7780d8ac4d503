package stats_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/control-horario/jornada-tracker/internal/model"
	"github.com/control-horario/jornada-tracker/internal/stats"
)

type fakeSource struct {
	workdays []model.Workday
	pauses   map[model.ID][]model.Pause
	err      error
}

func (f *fakeSource) ListInRange(_ context.Context, user model.ID, from, to time.Time, onlyCompleted bool) ([]model.Workday, error) {
	if f.err != nil {
		return nil, f.err
	}

	out := []model.Workday{}
	for _, w := range f.workdays {
		if w.User != user {
			continue
		}
		if w.StartTime.Before(from) || w.StartTime.After(to) {
			continue
		}
		if onlyCompleted && w.EndTime == nil {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeSource) ListByWorkday(_ context.Context, workday model.ID) ([]model.Pause, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pauses[workday], nil
}

const user = model.ID(1)

// Mid-August 2026; the month has 31 days.
var testNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func newEngine(t *testing.T, src *fakeSource, subtractPauses bool) *stats.Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := stats.NewEngine(logger, src, src, subtractPauses)
	engine.SetClock(func() time.Time { return testNow })
	return engine
}

func workday(id model.ID, start time.Time, d time.Duration) model.Workday {
	end := start.Add(d)
	return model.Workday{
		ID:        id,
		User:      user,
		StartTime: start,
		EndTime:   &end,
		Status:    model.StatusCompleted,
	}
}

func TestMonthly(t *testing.T) {
	src := &fakeSource{
		workdays: []model.Workday{
			// 09:00-17:00 and 09:00-13:00 on two distinct dates.
			workday(1, time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC), 8*time.Hour),
			workday(2, time.Date(2026, 8, 4, 9, 0, 0, 0, time.UTC), 4*time.Hour),
			// Previous month, must not count.
			workday(3, time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC), 8*time.Hour),
			// Still open, must not count.
			{ID: 4, User: user, StartTime: time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC), Status: model.StatusActive},
		},
	}

	summary, err := newEngine(t, src, false).Monthly(context.Background(), user)
	if err != nil {
		t.Fatalf("Monthly: unexpected error: %v", err)
	}

	want := stats.MonthlySummary{
		TotalHours:        12,
		AvgHoursPerDay:    6,
		DaysWorked:        2,
		DaysInMonth:       31,
		CompletedWorkdays: 2,
	}
	if summary != want {
		t.Errorf("Monthly = %+v, want %+v", summary, want)
	}
}

func TestMonthlyEmpty(t *testing.T) {
	summary, err := newEngine(t, &fakeSource{}, false).Monthly(context.Background(), user)
	if err != nil {
		t.Fatalf("Monthly: unexpected error: %v", err)
	}

	want := stats.MonthlySummary{DaysInMonth: 31}
	if summary != want {
		t.Errorf("Monthly = %+v, want %+v", summary, want)
	}
}

func TestMonthlyFloorsNegativeDurations(t *testing.T) {
	end := time.Date(2026, 8, 3, 8, 0, 0, 0, time.UTC)
	src := &fakeSource{
		workdays: []model.Workday{
			// End before start: clock anomaly, counts as zero.
			{ID: 1, User: user, StartTime: end.Add(time.Hour), EndTime: &end, Status: model.StatusCompleted},
			workday(2, time.Date(2026, 8, 4, 9, 0, 0, 0, time.UTC), 4*time.Hour),
		},
	}

	summary, err := newEngine(t, src, false).Monthly(context.Background(), user)
	if err != nil {
		t.Fatalf("Monthly: unexpected error: %v", err)
	}

	if summary.TotalHours != 4 {
		t.Errorf("TotalHours = %v, want 4", summary.TotalHours)
	}
}

func TestMonthlyDistinctDays(t *testing.T) {
	// Two workdays on the same date count one worked day.
	src := &fakeSource{
		workdays: []model.Workday{
			workday(1, time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC), 4*time.Hour),
			workday(2, time.Date(2026, 8, 3, 15, 0, 0, 0, time.UTC), 2*time.Hour),
		},
	}

	summary, err := newEngine(t, src, false).Monthly(context.Background(), user)
	if err != nil {
		t.Fatalf("Monthly: unexpected error: %v", err)
	}

	if summary.DaysWorked != 1 {
		t.Errorf("DaysWorked = %d, want 1", summary.DaysWorked)
	}
	if summary.TotalHours != 6 {
		t.Errorf("TotalHours = %v, want 6", summary.TotalHours)
	}
	if summary.CompletedWorkdays != 2 {
		t.Errorf("CompletedWorkdays = %d, want 2", summary.CompletedWorkdays)
	}
}

func TestMonthlySubtractPauses(t *testing.T) {
	w := workday(1, time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC), 8*time.Hour)

	pauseEnd := time.Date(2026, 8, 3, 13, 0, 0, 0, time.UTC)
	src := &fakeSource{
		workdays: []model.Workday{w},
		pauses: map[model.ID][]model.Pause{
			1: {
				{ID: 1, Workday: 1, StartTime: pauseEnd.Add(-time.Hour), EndTime: &pauseEnd},
				// Open pause is ignored by the subtraction.
				{ID: 2, Workday: 1, StartTime: time.Date(2026, 8, 3, 16, 0, 0, 0, time.UTC)},
			},
		},
	}

	raw, err := newEngine(t, src, false).Monthly(context.Background(), user)
	if err != nil {
		t.Fatalf("Monthly (raw): unexpected error: %v", err)
	}
	if raw.TotalHours != 8 {
		t.Errorf("raw TotalHours = %v, want 8", raw.TotalHours)
	}

	net, err := newEngine(t, src, true).Monthly(context.Background(), user)
	if err != nil {
		t.Fatalf("Monthly (subtract): unexpected error: %v", err)
	}
	if net.TotalHours != 7 {
		t.Errorf("net TotalHours = %v, want 7", net.TotalHours)
	}
}

func TestMonthlySurfacesSourceError(t *testing.T) {
	wantErr := errors.New("store unavailable")

	_, err := newEngine(t, &fakeSource{err: wantErr}, false).Monthly(context.Background(), user)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Monthly error = %v, want %v", err, wantErr)
	}
}

func TestWeeklyChart(t *testing.T) {
	src := &fakeSource{
		workdays: []model.Workday{
			// Today and three days ago.
			workday(1, time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC), 7*time.Hour+30*time.Minute),
			workday(2, time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC), 4*time.Hour),
		},
	}

	points, err := newEngine(t, src, false).WeeklyChart(context.Background(), user)
	if err != nil {
		t.Fatalf("WeeklyChart: unexpected error: %v", err)
	}

	if len(points) != 7 {
		t.Fatalf("len(points) = %d, want 7", len(points))
	}

	// Oldest to newest: index 0 is six days ago, index 6 is today.
	for i, point := range points {
		day := testNow.AddDate(0, 0, i-6)
		if point.Label != day.Format("Mon") {
			t.Errorf("points[%d].Label = %q, want %q", i, point.Label, day.Format("Mon"))
		}
	}

	if points[6].Hours != 7.5 {
		t.Errorf("today = %v hours, want 7.5", points[6].Hours)
	}
	if points[3].Hours != 4 {
		t.Errorf("three days ago = %v hours, want 4", points[3].Hours)
	}
	for _, i := range []int{0, 1, 2, 4, 5} {
		if points[i].Hours != 0 {
			t.Errorf("points[%d].Hours = %v, want 0", i, points[i].Hours)
		}
	}
}

func TestWeeklyChartEmpty(t *testing.T) {
	points, err := newEngine(t, &fakeSource{}, false).WeeklyChart(context.Background(), user)
	if err != nil {
		t.Fatalf("WeeklyChart: unexpected error: %v", err)
	}

	if len(points) != 7 {
		t.Fatalf("len(points) = %d, want 7", len(points))
	}
	for i, point := range points {
		if point.Hours != 0 {
			t.Errorf("points[%d].Hours = %v, want 0", i, point.Hours)
		}
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0h 0m"},
		{0.5, "0h 30m"},
		{1, "1h 0m"},
		{7.75, "7h 45m"},
		{12.01, "12h 1m"},
	}
	for _, tt := range tests {
		got := stats.FormatHours(tt.hours)
		if got != tt.want {
			t.Errorf("FormatHours(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}
