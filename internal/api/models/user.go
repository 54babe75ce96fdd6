package models

// User is an account row.
type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=20,alphanum"`
	Password string `json:"password" binding:"required,min=6,max=50"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the bearer token for the save endpoints.
type LoginResponse struct {
	Token string `json:"token"`
}

// GuestResponse carries a fresh player id to pass as playerId on /ws.
type GuestResponse struct {
	PlayerID string `json:"player_id"`
}
