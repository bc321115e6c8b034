package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/fileaccess/internal/files/service"
	"github.com/aussiebroadwan/fileaccess/pkg/filesdk"
	"github.com/aussiebroadwan/fileaccess/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// ServeHTTP provisions a user.
//
//	@Summary		Create a user
//	@Description	Creates a user that can log in and own records. Requires the operator bootstrap token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string							true	"Bootstrap token"
//	@Param			request				body		filesdk.CreateUserRequest		true	"User"
//	@Success		201					{object}	filesdk.UserResponse
//	@Failure		400					{object}	filesdk.ValidationErrorResponse	"Invalid request body or validation failed"
//	@Failure		401					{object}	filesdk.ErrorResponse			"Missing bootstrap token"
//	@Failure		403					{object}	filesdk.ErrorResponse			"Wrong bootstrap token"
//	@Failure		409					{object}	filesdk.ErrorResponse			"Username taken"
//	@Router			/v1/users [post].
func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		filesdk.ErrUnauthorized.WithDescription("bootstrap token is required in X-Bootstrap-Token header").WriteError(w)
		return
	}

	var req filesdk.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		filesdk.ErrInvalidRequest.WithDescription("request body must be valid JSON").WriteError(w)
		return
	}
	if errs := req.Validate(); errs != nil {
		writeValidationError(w, errs)
		return
	}

	u, err := h.UserService.Create(r.Context(), token, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, filesdk.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	})
}
