// Package client implements the FlowGrid API HTTP client.
//
// Every request flows through the same pipeline: ordered request
// interceptors (bearer token injection, request IDs), a per-request timeout,
// the transport, ordered response interceptors (central 401 handling), typed
// error translation, and content-type aware body decoding. GET responses are
// cached in a bounded TTL cache keyed by method, URL and body; failures are
// retried with linear backoff, except client errors other than 408 and 429
// which are never retried.
//
//	cfg := client.DefaultConfig()
//	creds := credstore.NewCredentials(credstore.NewMemoryStore(), credstore.DefaultConfig())
//	c, err := client.New(cfg, client.WithCredentials(creds))
//
//	var user AuthUser
//	err = c.Get(ctx, "/api/v1/auth/me", &user)
package client
