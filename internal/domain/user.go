package domain

// AuthProvider identifies how an account authenticates.
type AuthProvider string

const (
	AuthProviderPassword AuthProvider = "password"
	AuthProviderGoogle   AuthProvider = "google"
	AuthProviderGitHub   AuthProvider = "github"
)

// User is the public profile stored in the users collection. The document key
// is the user ID issued at registration; the JSON field names are the stored
// wire format and must not change.
type User struct {
	ID       string `json:"-"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Account holds the identity store's private credentials for a user. It lives
// in its own collection, keyed by the same user ID, and is never returned to
// clients.
type Account struct {
	ID           string       `json:"-"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"password_hash,omitempty"`
	Provider     AuthProvider `json:"provider"`
	ProviderID   string       `json:"provider_id,omitempty"`
}
