package httpx

import (
	"encoding/json"
	"net/http"
)

// Request bodies on this API are small login and tenant-code forms.
const maxRequestBytes = 1 << 20

// apiError is the wire shape of every error response.
type apiError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// decodeJSON reads the request body into dst, rejecting unknown fields and
// oversized bodies. On failure the 400 response has already been written and
// the handler should return.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return false
	}
	return true
}

// writeJSON marshals v before touching the ResponseWriter so an encoding
// failure can still produce a clean 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, apiError{Code: code, Message: err.Error()})
}
