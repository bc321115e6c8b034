package filesdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// CreateRecord creates a record owned by the session user. The record's
// bucket is created with it.
func (s *Session) CreateRecord(ctx context.Context, req CreateRecordRequest) (*RecordResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/records", body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var rec RecordResponse
	if err := decodeJSON(resp, &rec, http.StatusCreated); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Session) GetRecord(ctx context.Context, id string) (*RecordResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/records/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var rec RecordResponse
	if err := decodeJSON(resp, &rec, http.StatusOK); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SetOpenAccess makes the files of a record public, or private again.
func (s *Session) SetOpenAccess(ctx context.Context, id string, open bool) error {
	body, err := jsonBody(SetOpenAccessRequest{OpenAccess: open})
	if err != nil {
		return err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPatch, "/v1/records/"+url.PathEscape(id), body, jsonHeaders)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

// IssueTempAccess mints a token that lets anyone read every file of the
// record for days plus minutes. Negative values let the server apply its
// defaults (30 days, 0 minutes).
func (s *Session) IssueTempAccess(ctx context.Context, recordID string, days, minutes int) (*TempAccessResponse, error) {
	q := url.Values{}
	if days >= 0 {
		q.Set("days", strconv.Itoa(days))
	}
	if minutes >= 0 {
		q.Set("minutes", strconv.Itoa(minutes))
	}

	path := "/v1/records/" + url.PathEscape(recordID) + "/tempfileaccess" + encodeQuery(q)
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var ta TempAccessResponse
	if err := decodeJSON(resp, &ta, http.StatusOK); err != nil {
		return nil, err
	}
	return &ta, nil
}
