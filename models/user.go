package models

// User is the account entity returned by the auth endpoints. The server never
// includes credentials in responses.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// AuthResponse is the login/register response body.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
