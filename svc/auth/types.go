package auth

import "time"

// AuthUser is the platform account as returned by the API.
type AuthUser struct {
	ID              string         `json:"id"`
	Email           string         `json:"email"`
	Name            string         `json:"name"`
	Avatar          string         `json:"avatar,omitempty"`
	Role            string         `json:"role,omitempty"`
	IsEmailVerified bool           `json:"isEmailVerified"`
	Preferences     map[string]any `json:"preferences,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// AuthTokens is the token pair issued by login, register and refresh.
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}

// Session is a fully established session: the authenticated user plus
// the tokens that back it.
type Session struct {
	User   AuthUser   `json:"user"`
	Tokens AuthTokens `json:"tokens"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest carries a partial profile update. Nil fields are
// omitted from the request body and left unchanged server-side.
type UpdateUserRequest struct {
	Name        *string        `json:"name,omitempty"`
	Avatar      *string        `json:"avatar,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}
