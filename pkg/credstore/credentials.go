package credstore

import (
	"context"
	"errors"
)

// Credentials layers token/user semantics on a Store: namespaced keys,
// ordered persistence of a login result, and atomic-as-possible clearing.
type Credentials struct {
	store Store
	cfg   Config
}

// NewCredentials wraps a store with the configured key names.
func NewCredentials(store Store, cfg Config) *Credentials {
	return &Credentials{store: store, cfg: cfg}
}

func (c *Credentials) key(name string) string {
	return c.cfg.Namespace + name
}

// AccessToken returns the stored access token, or "" when none is stored.
func (c *Credentials) AccessToken(ctx context.Context) (string, error) {
	val, err := c.store.Get(ctx, c.key(c.cfg.AccessTokenKey))
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func (c *Credentials) SetAccessToken(ctx context.Context, token string) error {
	return c.store.Set(ctx, c.key(c.cfg.AccessTokenKey), []byte(token))
}

// RefreshToken returns the stored refresh token, or "" when none is stored.
func (c *Credentials) RefreshToken(ctx context.Context) (string, error) {
	val, err := c.store.Get(ctx, c.key(c.cfg.RefreshTokenKey))
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func (c *Credentials) SetRefreshToken(ctx context.Context, token string) error {
	return c.store.Set(ctx, c.key(c.cfg.RefreshTokenKey), []byte(token))
}

// User returns the stored serialized user, or nil when none is stored.
// Callers own the JSON shape; this layer treats it as opaque bytes.
func (c *Credentials) User(ctx context.Context) ([]byte, error) {
	return c.store.Get(ctx, c.key(c.cfg.UserKey))
}

func (c *Credentials) SetUser(ctx context.Context, user []byte) error {
	return c.store.Set(ctx, c.key(c.cfg.UserKey), user)
}

// SaveSession persists a full login result in a fixed order: access token,
// refresh token, then user. If a later write fails, earlier writes are rolled
// back so a token is never left behind without its user record.
func (c *Credentials) SaveSession(ctx context.Context, accessToken, refreshToken string, user []byte) error {
	if err := c.SetAccessToken(ctx, accessToken); err != nil {
		return err
	}

	if err := c.SetRefreshToken(ctx, refreshToken); err != nil {
		return errors.Join(err, c.Clear(ctx))
	}

	if err := c.SetUser(ctx, user); err != nil {
		return errors.Join(err, c.Clear(ctx))
	}

	return nil
}

// Clear removes all three credential keys, attempting every deletion even if
// one fails, and reports the combined error.
func (c *Credentials) Clear(ctx context.Context) error {
	return errors.Join(
		c.store.Delete(ctx, c.key(c.cfg.AccessTokenKey)),
		c.store.Delete(ctx, c.key(c.cfg.RefreshTokenKey)),
		c.store.Delete(ctx, c.key(c.cfg.UserKey)),
	)
}

// DeleteAccessToken removes only the access token, leaving refresh token and
// user intact. The hydrator uses this to clear orphaned tokens.
func (c *Credentials) DeleteAccessToken(ctx context.Context) error {
	return c.store.Delete(ctx, c.key(c.cfg.AccessTokenKey))
}
