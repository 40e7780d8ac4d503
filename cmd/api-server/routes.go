package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (app *application) routes() http.Handler {
	mux := chi.NewRouter()

	mux.NotFound(app.notFound)
	mux.MethodNotAllowed(app.methodNotAllowed)

	mux.Use(app.traceID)
	mux.Use(app.logAccess)
	mux.Use(app.recoverPanic)

	mux.Use(app.CORS)

	mux.Get("/api/v1/status", app.handleStatus)

	mux.Post("/api/v1/auth/signup", app.handleSignUp)
	mux.Post("/api/v1/auth/signin", app.handleSignIn)

	mux.Group(func(mux chi.Router) {
		mux.Use(app.requireAuth)

		mux.Post("/api/v1/auth/signout", app.handleSignOut)
		mux.Get("/api/v1/auth/me", app.handleMe)

		mux.Post("/api/v1/workdays/start", app.handleStartWorkday)
		mux.Post("/api/v1/workdays/pause", app.handleTogglePause)
		mux.Post("/api/v1/workdays/end", app.handleEndWorkday)
		mux.Get("/api/v1/workdays/current", app.handleCurrentWorkday)
		mux.Get("/api/v1/workdays", app.handleListWorkdays)

		mux.Get("/api/v1/stats/monthly", app.handleMonthlyStats)
		mux.Get("/api/v1/stats/weekly", app.handleWeeklyChart)

		mux.Get("/api/v1/weather", app.handleWeather)
	})

	app.logger.Debug("routes configured", "routes", chiRoutesToStrings(mux.Routes()))

	return mux
}

func chiRoutesToStrings(routes []chi.Route) []string {
	parsedRoutes := make([]string, 0, len(routes))
	for _, route := range routes {
		parsedRoutes = append(parsedRoutes, route.Pattern)
	}
	return parsedRoutes
}
