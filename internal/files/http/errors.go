package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/fileaccess/internal/files/service"
	"github.com/aussiebroadwan/fileaccess/pkg/filesdk"
	"github.com/aussiebroadwan/fileaccess/pkg/httpx"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"
)

// writeServiceError maps service errors onto API errors. Descriptions are
// fixed strings so a rejected token never ends up in a response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		filesdk.ErrRequestTooLarge.WriteError(w)
	case errors.Is(err, service.ErrInvalidToken):
		filesdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", `Bearer realm="files"`)
		filesdk.ErrUnauthorized.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		filesdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		filesdk.ErrForbidden.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		filesdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrAlreadyExists):
		filesdk.ErrAlreadyExists.WriteError(w)
	case errors.Is(err, service.ErrInvalidRequest):
		filesdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
		filesdk.ErrServerError.WriteError(w)
	}
}

func writeValidationError(w http.ResponseWriter, details map[string]string) {
	httpx.WriteJSON(w, http.StatusBadRequest, filesdk.ValidationErrorResponse{
		Code:    "validation_error",
		Message: "validation failed for some fields",
		Details: details,
	})
}
