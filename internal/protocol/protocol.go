// Package protocol defines the wire contract between the activation server
// and its clients. Error codes are machine-matched; error descriptions are
// for humans and carry no contract.
package protocol

// ActivateRequest is the body of POST /activate.
type ActivateRequest struct {
	Code     string `json:"code"`
	ClientID string `json:"clientId"`
}

// ActivateResponse is the 200 body of POST /activate.
type ActivateResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	ExpiresIn int64  `json:"expiresIn"`
}

// ErrorResponse is the body of every non-2xx activation response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Machine error codes. Clients match these exactly and must never parse
// ErrorDescription to classify a failure.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeRejected       = "code_rejected"
	ErrorCodeServerError    = "server_error"
)

// SessionLifetimeSeconds is the fixed validity window of a session token.
const SessionLifetimeSeconds int64 = 604800 // 7 days

// AppTag identifies tokens minted by this application.
const AppTag = "personal-board"
