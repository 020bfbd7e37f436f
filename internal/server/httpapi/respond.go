package httpapi

import (
	"encoding/json"
	"net/http"
)

// Error codes in the wire envelope {"error": {"code", "message"}}. Clients
// match on the code, the message is for humans.
const (
	codeInvalidCredentials = "invalid_credentials"
	codeEmailTaken         = "email_taken"
	codeWeakPassword       = "weak_password"
	codeInvalidToken       = "invalid_token"
	codeUnauthenticated    = "unauthenticated"
	codeNotFound           = "not_found"
	codeAlreadyExists      = "already_exists"
	codeBadRequest         = "bad_request"
	codeInternal           = "internal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	type errBody struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	writeJSON(w, status, map[string]errBody{"error": {Code: code, Message: message}})
}
