package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/webfusionlab/webfusion/internal/model"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// errEmptyBody is returned by readJSON when the request carries no body.
var errEmptyBody = errors.New("empty request body")

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the {"error": "..."} envelope used by the admin and
// public routes.
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, model.ErrorResponse{Error: message})
}

// writeContactError writes the {"success": false, "error": "..."} envelope
// used by the contact routes and the 404 fallback.
func writeContactError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, model.ContactResponse{Success: false, Error: message})
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}
