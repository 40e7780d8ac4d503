package main

import (
	"errors"
	"net/http"

	"github.com/control-horario/jornada-tracker/internal/response"
	"github.com/control-horario/jornada-tracker/internal/weather"
)

func (app *application) handleWeather(w http.ResponseWriter, r *http.Request) {
	location := defaultStringQueryParams(r, "location", app.config.weather.defaultLocation)
	lang := defaultStringQueryParams(r, "lang", app.config.weather.defaultLang)

	report, err := app.weather.Current(r.Context(), location, lang)
	if err != nil {
		var upstreamErr *weather.UpstreamError

		switch {
		case errors.Is(err, weather.ErrNotConfigured):
			app.errorMessage(w, r, http.StatusServiceUnavailable, "Weather service is not configured", nil)
		case errors.Is(err, weather.ErrInvalidAPIKey):
			app.reportServerError(r, err)
			app.errorMessage(w, r, http.StatusBadGateway, "Weather service rejected the configured credentials", nil)
		case errors.Is(err, weather.ErrLocationNotFound):
			app.errorMessage(w, r, http.StatusNotFound, "Location not found", nil)
		case errors.As(err, &upstreamErr):
			app.reportServerError(r, err)
			app.errorMessage(w, r, http.StatusBadGateway, "Weather service is unavailable", nil)
		default:
			app.serverError(w, r, err)
		}
		return
	}

	body := response.JSONObject{
		"weather": report,
		"iconUrl": weather.IconURL(report.Icon),
	}

	if err := response.JSON(w, http.StatusOK, body); err != nil {
		app.serverError(w, r, err)
	}
}
