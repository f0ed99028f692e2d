package main

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type CreateTokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type CreateTokenResponse struct {
	Token string `json:"token"`
}

// createTokenHandler godoc
//
//	@Summary		Create back-office token
//	@Description	Exchange the admin credentials for a bearer token.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateTokenRequest	true	"Credentials"
//	@Success		201		{object}	CreateTokenResponse
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Router			/authentication/token [post]
func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateTokenRequest
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Single admin account: compare against the configured email and
	// bcrypt hash. Both failures return the same response.
	if !strings.EqualFold(payload.Email, app.config.auth.admin.email) {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(app.config.auth.admin.passwordHash),
		[]byte(payload.Password),
	); err != nil {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid credentials"))
		return
	}

	token, err := app.authenticator.GenerateToken(app.config.auth.admin.email)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, CreateTokenResponse{Token: token}); err != nil {
		app.internalServerError(w, r, err)
	}
}
