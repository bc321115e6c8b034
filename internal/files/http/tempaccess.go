package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/fileaccess/internal/files/service"
	"github.com/aussiebroadwan/fileaccess/pkg/filesdk"
	"github.com/aussiebroadwan/fileaccess/pkg/httpx"
)

type TempAccessHandler struct {
	TempAccessService *service.TempAccessService
	DefaultDays       int
}

// ServeHTTP mints a temporary access token for the files of a record.
//
//	@Summary		Issue a temporary access token
//	@Description	Returns a token that lets anyone read every file of the record's bucket until it expires.
//	@Description	Pass it to GET /v1/files/{bucket_id}/{key} as the jwt query parameter.
//	@Tags			Records
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Record ID"
//	@Param			days	query		int		false	"Lifetime in days"		default(30)
//	@Param			minutes	query		int		false	"Additional minutes"	default(0)
//	@Success		200		{object}	filesdk.TempAccessResponse
//	@Failure		400		{object}	filesdk.ErrorResponse	"Invalid lifetime"
//	@Failure		401		{object}	filesdk.ErrorResponse	"Not logged in"
//	@Failure		403		{object}	filesdk.ErrorResponse	"Caller cannot edit the record"
//	@Failure		404		{object}	filesdk.ErrorResponse	"Unknown record"
//	@Router			/v1/records/{id}/tempfileaccess [get].
func (h *TempAccessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days, ok := intParam(q.Get("days"), h.DefaultDays)
	if !ok {
		filesdk.ErrInvalidRequest.WithDescription("days must be an integer").WriteError(w)
		return
	}
	minutes, ok := intParam(q.Get("minutes"), 0)
	if !ok {
		filesdk.ErrInvalidRequest.WithDescription("minutes must be an integer").WriteError(w)
		return
	}

	ta, err := h.TempAccessService.Issue(r.Context(), r.PathValue("id"), principal(r), days, minutes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, filesdk.TempAccessResponse{
		JWT:        ta.Token,
		Expiration: ta.ExpiresAt.UTC().Format(http.TimeFormat),
	})
}

func intParam(raw string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
