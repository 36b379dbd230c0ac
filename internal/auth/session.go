package auth

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the session belongs to the privileged role
func (s *SessionData) IsAdmin() bool {
	return s.Role == "admin"
}
