package auth

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/flowgrid/flowgrid-go/client"
	"github.com/flowgrid/flowgrid-go/pkg/credstore"
	"github.com/flowgrid/flowgrid-go/pkg/jwt"
)

// Service implements the authentication operations against the platform
// API. Safe for concurrent use.
type Service struct {
	api   *client.Client
	creds *credstore.Credentials
	cfg   Config
	log   *authLogger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for auth events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		s.log = newAuthLogger(log)
	}
}

// New creates an auth Service using api for transport and creds for
// session persistence.
func New(api *client.Client, creds *credstore.Credentials, cfg Config, opts ...Option) *Service {
	s := &Service{
		api:   api,
		creds: creds,
		cfg:   cfg,
		log:   newAuthLogger(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Credentials returns the underlying credential store.
func (s *Service) Credentials() *credstore.Credentials { return s.creds }

// Login authenticates with email and password and persists the
// resulting session. On failure nothing is persisted; the store never
// holds a partial session.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	var session Session
	if err := s.api.Post(ctx, s.cfg.LoginPath, req, &session, client.SkipAuth()); err != nil {
		return nil, s.fail(ctx, "login", err)
	}
	if err := s.persistSession(ctx, &session); err != nil {
		return nil, s.fail(ctx, "login", err)
	}
	s.log.success(ctx, "login", slog.String("user_id", session.User.ID))
	return &session, nil
}

// Register creates a new account and persists the resulting session.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var session Session
	if err := s.api.Post(ctx, s.cfg.RegisterPath, req, &session, client.SkipAuth()); err != nil {
		return nil, s.fail(ctx, "register", err)
	}
	if err := s.persistSession(ctx, &session); err != nil {
		return nil, s.fail(ctx, "register", err)
	}
	s.log.success(ctx, "register", slog.String("user_id", session.User.ID))
	return &session, nil
}

// Logout revokes the refresh token server-side on a best-effort basis
// and always clears local credentials and the response cache. A failed
// revocation is logged, never returned.
func (s *Service) Logout(ctx context.Context) error {
	refresh, err := s.creds.RefreshToken(ctx)
	if err == nil && refresh != "" {
		body := map[string]string{"refreshToken": refresh}
		if err := s.api.Post(ctx, s.cfg.LogoutPath, body, nil); err != nil {
			s.log.failure(ctx, "logout_revoke", translateError(err))
		}
	}
	s.api.InvalidateCache()
	if err := s.creds.Clear(ctx); err != nil {
		return s.fail(ctx, "logout", err)
	}
	s.log.success(ctx, "logout")
	return nil
}

// RefreshAccessToken exchanges the stored refresh token for a new
// access token and persists it. Any failure clears the whole session
// so callers never keep running on tokens the server has rejected.
func (s *Service) RefreshAccessToken(ctx context.Context) (string, error) {
	refresh, err := s.creds.RefreshToken(ctx)
	if err != nil {
		return "", s.fail(ctx, "refresh", err)
	}
	if refresh == "" {
		return "", s.fail(ctx, "refresh", &AuthError{
			Code:     CodeTokenInvalid,
			Category: CategoryAuthentication,
			Message:  "No refresh token available",
			Err:      credstore.ErrNoRefreshToken,
		})
	}
	var out struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   int64  `json:"expiresIn"`
	}
	body := map[string]string{"refreshToken": refresh}
	if err := s.api.Post(ctx, s.cfg.RefreshPath, body, &out, client.SkipAuth()); err != nil {
		if clearErr := s.creds.Clear(ctx); clearErr != nil {
			s.log.failure(ctx, "refresh_clear", clearErr)
		}
		return "", s.fail(ctx, "refresh", err)
	}
	if err := s.creds.SetAccessToken(ctx, out.AccessToken); err != nil {
		return "", s.fail(ctx, "refresh", err)
	}
	s.log.token(ctx, "refreshed")
	return out.AccessToken, nil
}

// CurrentUser fetches the authenticated user from the API and
// overwrites the locally stored copy.
func (s *Service) CurrentUser(ctx context.Context) (*AuthUser, error) {
	var user AuthUser
	if err := s.api.Get(ctx, s.cfg.MePath, &user, client.SkipCache()); err != nil {
		return nil, s.fail(ctx, "current_user", err)
	}
	if err := s.storeUser(ctx, &user); err != nil {
		return nil, s.fail(ctx, "current_user", err)
	}
	return &user, nil
}

// UpdateUser applies a partial profile update and persists the updated
// user locally.
func (s *Service) UpdateUser(ctx context.Context, req UpdateUserRequest) (*AuthUser, error) {
	var user AuthUser
	if err := s.api.Put(ctx, s.cfg.MePath, req, &user); err != nil {
		return nil, s.fail(ctx, "update_user", err)
	}
	if err := s.storeUser(ctx, &user); err != nil {
		return nil, s.fail(ctx, "update_user", err)
	}
	s.log.success(ctx, "update_user", slog.String("user_id", user.ID))
	return &user, nil
}

// ChangePassword changes the authenticated user's password.
func (s *Service) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	if err := s.api.Post(ctx, s.cfg.ChangePasswordPath, body, nil); err != nil {
		return s.fail(ctx, "change_password", err)
	}
	s.log.success(ctx, "change_password")
	return nil
}

// VerifyEmail confirms an email address using the token from the
// verification link.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	body := map[string]string{"token": token}
	if err := s.api.Post(ctx, s.cfg.VerifyEmailPath, body, nil, client.SkipAuth()); err != nil {
		return s.fail(ctx, "verify_email", err)
	}
	s.log.success(ctx, "verify_email")
	return nil
}

// RequestPasswordReset asks the server to send a password reset link.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := s.api.Post(ctx, s.cfg.ForgotPasswordPath, body, nil, client.SkipAuth()); err != nil {
		return s.fail(ctx, "request_password_reset", err)
	}
	s.log.success(ctx, "request_password_reset")
	return nil
}

// ResetPassword sets a new password using a reset token.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "newPassword": newPassword}
	if err := s.api.Post(ctx, s.cfg.ResetPasswordPath, body, nil, client.SkipAuth()); err != nil {
		return s.fail(ctx, "reset_password", err)
	}
	s.log.success(ctx, "reset_password")
	return nil
}

// CheckAuthStatus verifies the stored session against the server.
// Returns false without a network call when no access token is stored.
// Any verification failure clears credentials so a rejected session
// does not linger.
func (s *Service) CheckAuthStatus(ctx context.Context) bool {
	token, err := s.creds.AccessToken(ctx)
	if err != nil || token == "" {
		return false
	}
	if _, err := s.CurrentUser(ctx); err != nil {
		if clearErr := s.creds.Clear(ctx); clearErr != nil {
			s.log.failure(ctx, "check_auth_clear", clearErr)
		}
		return false
	}
	return true
}

// IsTokenExpiringSoon reports whether the stored access token expires
// within the configured buffer. Missing or undecodable tokens count as
// expiring so callers refresh eagerly rather than fail later.
func (s *Service) IsTokenExpiringSoon(ctx context.Context) bool {
	token, err := s.creds.AccessToken(ctx)
	if err != nil || token == "" {
		return true
	}
	return jwt.ExpiresWithin(token, s.cfg.TokenExpirationBuffer)
}

// StoredUser returns the locally persisted user without touching the
// network, or nil when none is stored or the record cannot be decoded.
func (s *Service) StoredUser(ctx context.Context) *AuthUser {
	raw, err := s.creds.User(ctx)
	if err != nil || len(raw) == 0 {
		return nil
	}
	var user AuthUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil
	}
	return &user
}

func (s *Service) persistSession(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session.User)
	if err != nil {
		return err
	}
	return s.creds.SaveSession(ctx, session.Tokens.AccessToken, session.Tokens.RefreshToken, raw)
}

func (s *Service) storeUser(ctx context.Context, user *AuthUser) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.creds.SetUser(ctx, raw)
}

// fail translates err, logs it and returns the translated error.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	ae := translateError(err)
	s.log.failure(ctx, op, ae)
	return ae
}
