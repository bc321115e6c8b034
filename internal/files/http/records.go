package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/internal/files/service"
	"github.com/aussiebroadwan/fileaccess/pkg/filesdk"
	"github.com/aussiebroadwan/fileaccess/pkg/httpx"
)

type RecordsHandler struct {
	RecordService *service.RecordService
}

// HandleCreate creates a record.
//
//	@Summary		Create a record
//	@Description	Creates a record owned by the caller, together with the bucket that holds its files.
//	@Tags			Records
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		filesdk.CreateRecordRequest	true	"Record"
//	@Success		201		{object}	filesdk.RecordResponse
//	@Failure		400		{object}	filesdk.ValidationErrorResponse
//	@Failure		401		{object}	filesdk.ErrorResponse
//	@Router			/v1/records [post].
func (h *RecordsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req filesdk.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		filesdk.ErrInvalidRequest.WithDescription("request body must be valid JSON").WriteError(w)
		return
	}
	if errs := req.Validate(); errs != nil {
		writeValidationError(w, errs)
		return
	}

	rec, err := h.RecordService.Create(r.Context(), principal(r), req.Title, req.OpenAccess)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toRecordResponse(rec))
}

// HandleGet returns a record.
//
//	@Summary		Get a record
//	@Description	Returns a record to its owner, or to anyone when the record is open access.
//	@Tags			Records
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Record ID"
//	@Success		200	{object}	filesdk.RecordResponse
//	@Failure		404	{object}	filesdk.ErrorResponse
//	@Router			/v1/records/{id} [get].
func (h *RecordsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.RecordService.Get(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

// HandleSetOpenAccess publishes or hides the files of a record.
//
//	@Summary		Change open access
//	@Tags			Records
//	@Accept			json
//	@Security		BearerAuth
//	@Param			id		path	string							true	"Record ID"
//	@Param			request	body	filesdk.SetOpenAccessRequest	true	"Open access flag"
//	@Success		204
//	@Failure		401	{object}	filesdk.ErrorResponse
//	@Failure		403	{object}	filesdk.ErrorResponse
//	@Failure		404	{object}	filesdk.ErrorResponse
//	@Router			/v1/records/{id} [patch].
func (h *RecordsHandler) HandleSetOpenAccess(w http.ResponseWriter, r *http.Request) {
	var req filesdk.SetOpenAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		filesdk.ErrInvalidRequest.WithDescription("request body must be valid JSON").WriteError(w)
		return
	}

	if err := h.RecordService.SetOpenAccess(r.Context(), principal(r), r.PathValue("id"), req.OpenAccess); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toRecordResponse(rec domain.RecordWithBucket) filesdk.RecordResponse {
	return filesdk.RecordResponse{
		ID:         rec.ID,
		OwnerID:    rec.OwnerID,
		Title:      rec.Title,
		OpenAccess: rec.OpenAccess,
		BucketID:   rec.BucketID,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

// principal is the session caller, or the anonymous principal.
func principal(r *http.Request) domain.Principal {
	return service.PrincipalFromClaims(httpx.SessionFromContext(r.Context()))
}
