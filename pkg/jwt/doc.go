// Package jwt provides client-side JWT payload inspection.
//
// The package deliberately does NOT verify signatures. The FlowGrid API
// server is the security boundary; everything decoded here is advisory and
// is only used to decide when to refresh a token or whether to bother
// sending a request at all. Treat every value returned by this package as
// attacker-controlled.
//
// # Usage
//
//	var claims jwt.StandardClaims
//	if err := jwt.DecodeUnverified(token, &claims); err != nil {
//	    // malformed token, treat as expired
//	}
//
//	if jwt.ExpiresWithin(token, 5*time.Minute) {
//	    // schedule a refresh
//	}
package jwt
