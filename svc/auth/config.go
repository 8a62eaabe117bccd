package auth

import "time"

// Config holds the API endpoint paths and token policy for the auth
// service. Paths are relative to the client's base URL.
type Config struct {
	// TokenExpirationBuffer is how far before the access token's exp
	// claim the token is considered expiring and worth refreshing.
	TokenExpirationBuffer time.Duration `env:"FLOWGRID_AUTH_TOKEN_BUFFER" envDefault:"5m" yaml:"token_expiration_buffer"`

	LoginPath          string `env:"FLOWGRID_AUTH_LOGIN_PATH" envDefault:"/api/v1/auth/login" yaml:"login_path"`
	RegisterPath       string `env:"FLOWGRID_AUTH_REGISTER_PATH" envDefault:"/api/v1/auth/register" yaml:"register_path"`
	LogoutPath         string `env:"FLOWGRID_AUTH_LOGOUT_PATH" envDefault:"/api/v1/auth/logout" yaml:"logout_path"`
	RefreshPath        string `env:"FLOWGRID_AUTH_REFRESH_PATH" envDefault:"/api/v1/auth/refresh" yaml:"refresh_path"`
	MePath             string `env:"FLOWGRID_AUTH_ME_PATH" envDefault:"/api/v1/auth/me" yaml:"me_path"`
	ChangePasswordPath string `env:"FLOWGRID_AUTH_CHANGE_PASSWORD_PATH" envDefault:"/api/v1/auth/change-password" yaml:"change_password_path"`
	VerifyEmailPath    string `env:"FLOWGRID_AUTH_VERIFY_EMAIL_PATH" envDefault:"/api/v1/auth/verify-email" yaml:"verify_email_path"`
	ForgotPasswordPath string `env:"FLOWGRID_AUTH_FORGOT_PASSWORD_PATH" envDefault:"/api/v1/auth/forgot-password" yaml:"forgot_password_path"`
	ResetPasswordPath  string `env:"FLOWGRID_AUTH_RESET_PASSWORD_PATH" envDefault:"/api/v1/auth/reset-password" yaml:"reset_password_path"`
}

// DefaultConfig returns a Config with the standard endpoint layout.
func DefaultConfig() Config {
	return Config{
		TokenExpirationBuffer: 5 * time.Minute,
		LoginPath:             "/api/v1/auth/login",
		RegisterPath:          "/api/v1/auth/register",
		LogoutPath:            "/api/v1/auth/logout",
		RefreshPath:           "/api/v1/auth/refresh",
		MePath:                "/api/v1/auth/me",
		ChangePasswordPath:    "/api/v1/auth/change-password",
		VerifyEmailPath:       "/api/v1/auth/verify-email",
		ForgotPasswordPath:    "/api/v1/auth/forgot-password",
		ResetPasswordPath:     "/api/v1/auth/reset-password",
	}
}
