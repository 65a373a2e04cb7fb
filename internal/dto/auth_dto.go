package dto

import "github.com/google/uuid"

type SessionUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Consented bool      `json:"consented"`
}

type SessionResponse struct {
	SignedIn bool         `json:"signed_in"`
	User     *SessionUser `json:"user,omitempty"`
}

type TermsAcceptResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	// Redirect carries the consent-step URL when access was blocked on
	// a pending consent, so the client can resume where it left off.
	Redirect string `json:"redirect,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
