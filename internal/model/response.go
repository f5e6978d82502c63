package model

// ErrorResponse is the error envelope used by the admin and public APIs.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a human-readable confirmation, e.g. after a delete.
type MessageResponse struct {
	Message string `json:"message"`
}

// AdminResponse wraps an admin summary with an optional confirmation message.
type AdminResponse struct {
	Message string       `json:"message,omitempty"`
	Admin   AdminSummary `json:"admin"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	Admin AdminSummary `json:"admin"`
}

// ContactResponse is the envelope used by the contact endpoints. Exactly one
// of Message (on success) or Error (on failure) is set.
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
