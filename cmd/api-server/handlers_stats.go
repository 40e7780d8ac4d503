package main

import (
	"errors"
	"net/http"

	"github.com/control-horario/jornada-tracker/internal/model"
	"github.com/control-horario/jornada-tracker/internal/response"
)

func (app *application) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	summary, err := app.stats.Monthly(r.Context(), authUser(r).ID)
	if err != nil {
		if errors.Is(err, model.ErrSchemaMissing) {
			app.schemaMissing(w, r, err)
			return
		}

		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, summary); err != nil {
		app.serverError(w, r, err)
	}
}

func (app *application) handleWeeklyChart(w http.ResponseWriter, r *http.Request) {
	points, err := app.stats.WeeklyChart(r.Context(), authUser(r).ID)
	if err != nil {
		if errors.Is(err, model.ErrSchemaMissing) {
			app.schemaMissing(w, r, err)
			return
		}

		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, response.JSONObject{"days": points}); err != nil {
		app.serverError(w, r, err)
	}
}
