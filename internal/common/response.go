package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

type ErrorResponse struct {
	Error    string            `json:"error"`
	Kind     ErrorKind         `json:"kind,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
	Retry    string            `json:"retry,omitempty"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithAPIError writes err using its status mapping and user message.
func RespondWithAPIError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: UserMessage(err), Kind: KindOf(err)}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		resp.Fields = vErr.Fields
	}
	RespondWithJSON(w, HTTPStatusFromError(err), resp)
}

func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
