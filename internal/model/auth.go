package model

type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// AuthUser is the identity resolved from a verified access token,
// carried through the request context.
type AuthUser struct {
	ID       int64
	Username string
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"access-token"`
	RefreshToken string `json:"refresh-token"`
}

type RefreshResponse struct {
	AccessToken string `json:"access-token"`
}
