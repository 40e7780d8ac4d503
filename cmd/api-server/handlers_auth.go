package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/control-horario/jornada-tracker/internal/auth"
	"github.com/control-horario/jornada-tracker/internal/database"
	"github.com/control-horario/jornada-tracker/internal/model"
	"github.com/control-horario/jornada-tracker/internal/request"
	"github.com/control-horario/jornada-tracker/internal/response"
	"github.com/control-horario/jornada-tracker/internal/validator"
)

type requestSignUp struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (app *application) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var input requestSignUp
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	validateEmail(&v, input.Email)
	validatePassword(&v, input.Password)
	validateDisplayName(&v, input.DisplayName)

	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	user, err := app.auth.SignUp(r.Context(), input.Email, input.Password, input.DisplayName)
	if err != nil {
		if errors.Is(err, model.ErrExists) {
			app.errorMessage(w, r, http.StatusConflict, err.Error(), nil)
			return
		}

		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusCreated, response.JSONObject{"user": user}); err != nil {
		app.serverError(w, r, err)
	}
}

type requestSignIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var input requestSignIn
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	v.CheckField(validator.NotBlank(input.Email), "email", "cannot be blank")
	v.CheckField(validator.NotBlank(input.Password), "password", "cannot be blank")

	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	token, user, err := app.auth.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			app.errorMessage(w, r, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}

		app.serverError(w, r, err)
		return
	}

	// Opportunistic cleanup of stale sessions. Runs detached from the
	// request context, which is gone once the response is written.
	sessionDAO := database.NewSessionDAO(app.logger, app.db)
	app.backgroundTask(r, func() error {
		_, err := sessionDAO.DeleteExpired(context.Background(), time.Now())
		return err
	})

	if err := response.JSON(w, http.StatusOK, response.JSONObject{"token": token, "user": user}); err != nil {
		app.serverError(w, r, err)
	}
}

func (app *application) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := app.auth.SignOut(r.Context(), bearerToken(r)); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleMe(w http.ResponseWriter, r *http.Request) {
	if err := response.JSON(w, http.StatusOK, response.JSONObject{"user": authUser(r)}); err != nil {
		app.serverError(w, r, err)
	}
}
