package main

import (
	"errors"
	"net/http"

	"github.com/control-horario/jornada-tracker/internal/database"
	"github.com/control-horario/jornada-tracker/internal/model"
	"github.com/control-horario/jornada-tracker/internal/response"
	"github.com/control-horario/jornada-tracker/internal/stats"
	"github.com/control-horario/jornada-tracker/internal/tracker"
)

const _defaultHistoryLimit = 20

func stateResponse(state tracker.State) response.JSONObject {
	body := response.JSONObject{"phase": state.Phase.String()}
	if state.Workday != nil {
		body["workday"] = state.Workday
	}
	if state.Pause != nil {
		body["pause"] = state.Pause
	}
	return body
}

// workdayError maps state machine failures to HTTP statuses. Guard
// failures are conflicts; a missing table is a deployment problem.
func (app *application) workdayError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrWorkdayActive):
		app.errorMessage(w, r, http.StatusConflict, "A workday is already active", nil)
	case errors.Is(err, model.ErrNoActiveWorkday):
		app.errorMessage(w, r, http.StatusConflict, "No active workday", nil)
	case errors.Is(err, model.ErrSchemaMissing):
		app.schemaMissing(w, r, err)
	default:
		app.serverError(w, r, err)
	}
}

func (app *application) handleStartWorkday(w http.ResponseWriter, r *http.Request) {
	state, err := app.tracker.Start(r.Context(), authUser(r).ID)
	if err != nil {
		app.workdayError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusCreated, stateResponse(state)); err != nil {
		app.serverError(w, r, err)
	}
}

func (app *application) handleTogglePause(w http.ResponseWriter, r *http.Request) {
	state, err := app.tracker.TogglePause(r.Context(), authUser(r).ID)
	if err != nil {
		app.workdayError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, stateResponse(state)); err != nil {
		app.serverError(w, r, err)
	}
}

func (app *application) handleEndWorkday(w http.ResponseWriter, r *http.Request) {
	state, err := app.tracker.End(r.Context(), authUser(r).ID)
	if err != nil {
		app.workdayError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, stateResponse(state)); err != nil {
		app.serverError(w, r, err)
	}
}

func (app *application) handleCurrentWorkday(w http.ResponseWriter, r *http.Request) {
	state, err := app.tracker.Current(r.Context(), authUser(r).ID)
	if err != nil {
		app.workdayError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, stateResponse(state)); err != nil {
		app.serverError(w, r, err)
	}
}

type responseWorkdayItem struct {
	model.Workday
	Duration string `json:"duration,omitempty"`
}

func (app *application) handleListWorkdays(w http.ResponseWriter, r *http.Request) {
	limit := defaultIntQueryParams(r, "limit", _defaultHistoryLimit)
	if limit < 1 || limit > 100 {
		limit = _defaultHistoryLimit
	}

	dao := database.NewWorkdayDAO(app.logger, app.db)

	workdays, err := dao.List(r.Context(), authUser(r).ID, limit)
	if err != nil {
		app.workdayError(w, r, err)
		return
	}

	items := make([]responseWorkdayItem, 0, len(workdays))
	for _, workday := range workdays {
		item := responseWorkdayItem{Workday: workday}
		if workday.EndTime != nil {
			item.Duration = stats.FormatHours(workday.EndTime.Sub(workday.StartTime).Hours())
		}
		items = append(items, item)
	}

	if err := response.JSON(w, http.StatusOK, response.JSONObject{"workdays": items}); err != nil {
		app.serverError(w, r, err)
	}
}
