package stats

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/control-horario/jornada-tracker/internal/model"

	"golang.org/x/exp/maps"
)

// WorkdaySource is the slice of the workday DAO the engine needs.
type WorkdaySource interface {
	ListInRange(ctx context.Context, user model.ID, from, to time.Time, onlyCompleted bool) ([]model.Workday, error)
}

// PauseSource is consulted only when pause subtraction is enabled.
type PauseSource interface {
	ListByWorkday(ctx context.Context, workday model.ID) ([]model.Pause, error)
}

type MonthlySummary struct {
	TotalHours        float64 `json:"totalHours"`
	AvgHoursPerDay    float64 `json:"avgHoursPerDay"`
	DaysWorked        int     `json:"daysWorked"`
	DaysInMonth       int     `json:"daysInMonth"`
	CompletedWorkdays int     `json:"completedWorkdays"`
}

type ChartPoint struct {
	Label string  `json:"label"`
	Hours float64 `json:"hours"`
}

// Engine derives aggregates over completed workdays of the current
// calendar month. It holds no state between calls; errors from the
// source are surfaced unchanged and nothing is retried.
type Engine struct {
	logger   *slog.Logger
	workdays WorkdaySource
	pauses   PauseSource

	// subtractPauses switches the per-workday duration from raw
	// end-start to end-start minus closed pause time. The raw variant
	// matches the historical behavior, where pauses are recorded but
	// not deducted.
	subtractPauses bool

	now func() time.Time
}

func NewEngine(logger *slog.Logger, workdays WorkdaySource, pauses PauseSource, subtractPauses bool) *Engine {
	return &Engine{
		logger:         logger.With("module", "stats"),
		workdays:       workdays,
		pauses:         pauses,
		subtractPauses: subtractPauses,
		now:            time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Monthly computes the current month's aggregate for the user.
func (e *Engine) Monthly(ctx context.Context, user model.ID) (MonthlySummary, error) {
	now := e.now()
	from, to := monthRange(now)

	workdays, err := e.workdays.ListInRange(ctx, user, from, to, true)
	if err != nil {
		return MonthlySummary{}, err
	}

	summary := MonthlySummary{
		DaysInMonth:       daysInMonth(now),
		CompletedWorkdays: len(workdays),
	}

	if len(workdays) == 0 {
		return summary, nil
	}

	var totalHours float64
	days := make(map[string]struct{}, len(workdays))

	for _, w := range workdays {
		hours, err := e.hours(ctx, w)
		if err != nil {
			return MonthlySummary{}, err
		}

		totalHours += hours
		days[dayKey(w.StartTime)] = struct{}{}
	}

	summary.TotalHours = round2(totalHours)
	summary.DaysWorked = len(days)
	summary.AvgHoursPerDay = round2(totalHours / float64(len(days)))

	e.logger.Debug("monthly summary computed",
		"userId", user, "totalHours", summary.TotalHours, "days", maps.Keys(days))

	return summary, nil
}

// WeeklyChart returns one point per calendar day for the last 7 days,
// oldest first and including today. Days without workdays get 0 hours.
func (e *Engine) WeeklyChart(ctx context.Context, user model.ID) ([]ChartPoint, error) {
	now := e.now()
	from, to := monthRange(now)

	workdays, err := e.workdays.ListInRange(ctx, user, from, to, true)
	if err != nil {
		return nil, err
	}

	hoursByDay := make(map[string]float64, len(workdays))
	for _, w := range workdays {
		hours, err := e.hours(ctx, w)
		if err != nil {
			return nil, err
		}
		hoursByDay[dayKey(w.StartTime)] += hours
	}

	points := make([]ChartPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		points = append(points, ChartPoint{
			Label: day.Format("Mon"),
			Hours: round1(hoursByDay[dayKey(day)]),
		})
	}

	return points, nil
}

// hours returns the worked duration of a completed workday in hours,
// never negative even if the stored timestamps are anomalous.
func (e *Engine) hours(ctx context.Context, w model.Workday) (float64, error) {
	if w.EndTime == nil {
		return 0, nil
	}

	worked := w.EndTime.Sub(w.StartTime)

	if e.subtractPauses {
		pauses, err := e.pauses.ListByWorkday(ctx, w.ID)
		if err != nil {
			return 0, err
		}

		for _, p := range pauses {
			if p.EndTime != nil {
				worked -= p.EndTime.Sub(p.StartTime)
			}
		}
	}

	return math.Max(0, worked.Hours()), nil
}

// FormatHours renders decimal hours as "Xh Ym".
func FormatHours(hours float64) string {
	h := int(hours)
	m := int(math.Round((hours - float64(h)) * 60))
	return fmt.Sprintf("%dh %dm", h, m)
}

// monthRange returns the first instant of the 1st and 23:59:59 of the
// last day of t's month, in t's location.
func monthRange(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	to := time.Date(t.Year(), t.Month()+1, 0, 23, 59, 59, 0, t.Location())
	return from, to
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
