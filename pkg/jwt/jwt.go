package jwt

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// StandardClaims represents the registered JWT claims defined in RFC 7519 Section 4.1.
// All temporal claims use Unix timestamps in seconds.
type StandardClaims struct {
	ID        string `json:"jti,omitempty"`
	Subject   string `json:"sub,omitempty"`
	Issuer    string `json:"iss,omitempty"`
	Audience  string `json:"aud,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

// Valid checks the temporal claims against current time.
// Zero values are treated as unset per RFC 7519 and skipped.
func (c StandardClaims) Valid() error {
	now := time.Now().Unix()

	if c.ExpiresAt > 0 && now > c.ExpiresAt {
		return ErrExpiredToken
	}

	if c.NotBefore > 0 && now < c.NotBefore {
		return ErrInvalidToken
	}

	return nil
}

// DecodeUnverified extracts the claims from a JWT without checking the
// signature. The three-segment structure is still enforced so arbitrary
// strings are rejected, but nothing cryptographic happens here.
func DecodeUnverified(tokenString string, claims any) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return ErrInvalidToken
	}

	if err := json.Unmarshal(claimsJSON, claims); err != nil {
		return ErrInvalidToken
	}

	return nil
}

// ExpiresWithin reports whether the token expires within the given buffer.
// Malformed tokens and tokens without an exp claim count as expiring, so
// callers can always use a true result as "refresh now".
func ExpiresWithin(tokenString string, buffer time.Duration) bool {
	var claims StandardClaims
	if err := DecodeUnverified(tokenString, &claims); err != nil {
		return true
	}

	if claims.ExpiresAt == 0 {
		return true
	}

	expiresAt := time.Unix(claims.ExpiresAt, 0)
	return time.Until(expiresAt) < buffer
}

// Expired reports whether the token's exp claim is in the past.
// Malformed tokens count as expired.
func Expired(tokenString string) bool {
	return ExpiresWithin(tokenString, 0)
}

// base64URLDecode decodes base64url data, restoring padding stripped per RFC 7515.
func base64URLDecode(s string) ([]byte, error) {
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}

	return base64.URLEncoding.DecodeString(s)
}
