package jwt_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/flowgrid-go/pkg/jwt"
)

// makeToken builds an unsigned JWT-shaped token from the given claims. The
// signature segment is garbage because nothing in this package checks it.
func makeToken(t *testing.T, claims any) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT","alg":"HS256"}`))

	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestDecodeUnverified(t *testing.T) {
	t.Parallel()

	t.Run("decodes standard claims", func(t *testing.T) {
		t.Parallel()

		token := makeToken(t, jwt.StandardClaims{
			Subject:   "user-123",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		})

		var claims jwt.StandardClaims
		require.NoError(t, jwt.DecodeUnverified(token, &claims))
		assert.Equal(t, "user-123", claims.Subject)
		assert.Positive(t, claims.ExpiresAt)
	})

	t.Run("decodes arbitrary claim maps", func(t *testing.T) {
		t.Parallel()

		token := makeToken(t, map[string]any{"role": "admin"})

		claims := make(map[string]any)
		require.NoError(t, jwt.DecodeUnverified(token, &claims))
		assert.Equal(t, "admin", claims["role"])
	})

	t.Run("rejects malformed tokens", func(t *testing.T) {
		t.Parallel()

		for _, token := range []string{"", "one", "one.two", "a.!!!.c", "a.b.c.d"} {
			var claims jwt.StandardClaims
			assert.ErrorIs(t, jwt.DecodeUnverified(token, &claims), jwt.ErrInvalidToken, "token %q", token)
		}
	})

	t.Run("rejects non-json payloads", func(t *testing.T) {
		t.Parallel()

		token := "h." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".s"

		var claims jwt.StandardClaims
		assert.ErrorIs(t, jwt.DecodeUnverified(token, &claims), jwt.ErrInvalidToken)
	})
}

func TestStandardClaims_Valid(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("valid claims", func(t *testing.T) {
		t.Parallel()
		claims := jwt.StandardClaims{ExpiresAt: now.Add(time.Hour).Unix()}
		assert.NoError(t, claims.Valid())
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		claims := jwt.StandardClaims{ExpiresAt: now.Add(-time.Minute).Unix()}
		assert.ErrorIs(t, claims.Valid(), jwt.ErrExpiredToken)
	})

	t.Run("not yet valid", func(t *testing.T) {
		t.Parallel()
		claims := jwt.StandardClaims{NotBefore: now.Add(time.Hour).Unix()}
		assert.ErrorIs(t, claims.Valid(), jwt.ErrInvalidToken)
	})

	t.Run("zero claims are unset", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, jwt.StandardClaims{}.Valid())
	})
}

func TestExpiresWithin(t *testing.T) {
	t.Parallel()

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		token := makeToken(t, jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()})
		assert.True(t, jwt.ExpiresWithin(token, 5*time.Minute))
	})

	t.Run("token inside the buffer", func(t *testing.T) {
		t.Parallel()
		token := makeToken(t, jwt.StandardClaims{ExpiresAt: time.Now().Add(2 * time.Minute).Unix()})
		assert.True(t, jwt.ExpiresWithin(token, 5*time.Minute))
	})

	t.Run("token safely beyond the buffer", func(t *testing.T) {
		t.Parallel()
		token := makeToken(t, jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()})
		assert.False(t, jwt.ExpiresWithin(token, 5*time.Minute))
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		assert.True(t, jwt.ExpiresWithin("garbage", 5*time.Minute))
	})

	t.Run("missing exp claim", func(t *testing.T) {
		t.Parallel()
		token := makeToken(t, map[string]any{"sub": "user-123"})
		assert.True(t, jwt.ExpiresWithin(token, 5*time.Minute))
	})
}

func TestExpired(t *testing.T) {
	t.Parallel()

	token := makeToken(t, jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()})
	assert.False(t, jwt.Expired(token))

	stale := makeToken(t, jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Second).Unix()})
	assert.True(t, jwt.Expired(stale))
}
