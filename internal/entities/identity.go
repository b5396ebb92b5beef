package entities

import "time"

// Identity is a registered storefront user, keyed by email.
type Identity struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"password,omitempty"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns a copy without the password hash.
func (i Identity) Public() Identity {
	i.PasswordHash = ""
	return i
}

// Session is the persisted snapshot of the authenticated user.
type Session struct {
	CurrentUser     *Identity `json:"current_user"`
	IsAuthenticated bool      `json:"is_authenticated"`
	LoginAt         time.Time `json:"login_at,omitempty"`
}

// Email returns the current user's email or "" when nobody is logged in.
func (s Session) Email() string {
	if s.CurrentUser == nil {
		return ""
	}
	return s.CurrentUser.Email
}
