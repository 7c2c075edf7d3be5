package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/aquamind/toast"
)

const headerHXTrigger = "HX-Trigger"

// Camera frames travel inside facial requests.
const maxRequestBytes = 8 << 20

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, errorResponse{Error: code, ErrorDescription: description})
}

// writeToasts hands the toasts raised by a request to htmx as a showToast event.
func writeToasts(w http.ResponseWriter, rec *toast.Recorder) {
	toasts := rec.Toasts()
	if len(toasts) == 0 {
		return
	}
	payload, err := json.Marshal(map[string][]toast.Toast{"showToast": toasts})
	if err != nil {
		return
	}
	w.Header().Set(headerHXTrigger, string(payload))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	return dec.Decode(v)
}
