package main

import (
	"context"
	"net/http"
	"time"

	"github.com/control-horario/jornada-tracker/internal/response"
)

func (app *application) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		app.reportServerError(r, err)
		app.errorMessage(w, r, http.StatusServiceUnavailable, "Database is unreachable", nil)
		return
	}

	if err := response.JSON(w, http.StatusOK, response.JSONObject{"status": "OK"}); err != nil {
		app.serverError(w, r, err)
	}
}
