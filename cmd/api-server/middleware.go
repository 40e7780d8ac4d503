package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/control-horario/jornada-tracker/internal/auth"
	"github.com/control-horario/jornada-tracker/internal/ctxstore"
	"github.com/control-horario/jornada-tracker/internal/model"
	"github.com/control-horario/jornada-tracker/internal/response"

	"github.com/tomasen/realip"
)

const (
	_traceIDKey  = ctxstore.Key("traceId")
	_authUserKey = ctxstore.Key("authUser")
)

func (app *application) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := genTraceID()
		ctx := ctxstore.With(r.Context(), _traceIDKey, tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err != nil {
				app.serverError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) logAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := response.NewMetricsResponseWriter(w)
		next.ServeHTTP(mw, r)

		var (
			ip     = realip.FromRequest(r)
			method = r.Method
			url    = r.URL.String()
			proto  = r.Proto
			tid    = ctxstore.MustFrom[string](r.Context(), _traceIDKey)
		)

		userAttrs := slog.Group("user", "ip", ip)
		requestAttrs := slog.Group("request", "method", method, "url", url, "proto", proto, _traceIDKey.String(), tid)
		responseAttrs := slog.Group("response", "status", mw.StatusCode, "size", mw.BytesCount)

		app.serverLogger().Info("access", userAttrs, requestAttrs, responseAttrs)
	})
}

func (app *application) CORS(next http.Handler) http.Handler {
	return cors.AllowAll().Handler(next)
}

// requireAuth resolves the bearer token to a user and stores it in the
// request context for the handlers behind it.
func (app *application) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			app.authenticationRequired(w, r)
			return
		}

		user, err := app.auth.Session(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				app.authenticationRequired(w, r)
				return
			}

			app.serverError(w, r, err)
			return
		}

		ctx := ctxstore.With(r.Context(), _authUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authUser(r *http.Request) model.User {
	return ctxstore.MustFrom[model.User](r.Context(), _authUserKey)
}

func genTraceID() string {
	id, _ := uuid.NewRandom()
	return id.String()
}
