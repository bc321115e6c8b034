package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/fileaccess/internal/files/service"
	"github.com/aussiebroadwan/fileaccess/pkg/filesdk"
	"github.com/aussiebroadwan/fileaccess/pkg/httpx"
)

type SessionsHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP logs a user in.
//
//	@Summary		Log in
//	@Description	Exchanges a username and password for a session token.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		filesdk.LoginRequest	true	"Credentials"
//	@Success		201		{object}	filesdk.SessionResponse
//	@Failure		400		{object}	filesdk.ValidationErrorResponse
//	@Failure		401		{object}	filesdk.ErrorResponse	"Invalid credentials"
//	@Router			/v1/sessions [post].
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req filesdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		filesdk.ErrInvalidRequest.WithDescription("request body must be valid JSON").WriteError(w)
		return
	}
	if errs := req.Validate(); errs != nil {
		writeValidationError(w, errs)
		return
	}

	sess, err := h.SessionService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, filesdk.SessionResponse{
		AccessToken: sess.AccessToken,
		TokenType:   sess.TokenType,
		ExpiresAt:   sess.ExpiresAt,
		UserID:      sess.UserID,
	})
}
