// Package auth implements authentication against the FlowGrid platform
// API: login, registration, token refresh, session persistence, startup
// hydration and an HTTP route gate.
//
// The Service wraps a configured client.Client and a credstore.Credentials
// store. All operations persist or clear credentials as a unit so the
// store never holds a partial session.
//
//	api, _ := client.New(client.DefaultConfig())
//	creds := credstore.NewCredentials(credstore.NewMemoryStore(), credstore.DefaultConfig())
//	svc := auth.New(api, creds, auth.DefaultConfig())
//
//	session, err := svc.Login(ctx, auth.LoginRequest{Email: email, Password: password})
//
// The Hydrator restores a session on process start with bounded retries
// and a guest fallback:
//
//	h := auth.NewHydrator(svc, creds, auth.DefaultHydrationConfig())
//	result := h.Hydrate(ctx)
package auth
