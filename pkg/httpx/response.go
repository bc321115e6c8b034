package httpx

import (
	"encoding/json"
	"mime"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the {"error","error_description"} envelope used by every
// non-2xx JSON response.
func WriteError(w http.ResponseWriter, code int, errCode, desc string) {
	WriteJSON(w, code, map[string]string{
		"error":             errCode,
		"error_description": desc,
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// Attachment marks the response as a download named filename. Non-ASCII
// names are encoded per RFC 6266.
func Attachment(w http.ResponseWriter, filename string) {
	v := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if v == "" {
		v = "attachment"
	}
	w.Header().Set("Content-Disposition", v)
}
