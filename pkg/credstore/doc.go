// Package credstore persists authentication credentials (access token,
// refresh token, serialized user) behind a small key-value Store interface.
//
// Three backends are provided:
//
//   - MemoryStore: mutex-guarded map, the default for tests and short-lived
//     processes.
//   - FileStore: a JSON file in a config directory with 0600 permissions,
//     optionally sealed at rest with XChaCha20-Poly1305.
//   - RedisStore: go-redis backed, for deployments where several replicas
//     must share one session.
//
// The Credentials wrapper layers the token/user semantics on top: key
// namespacing, ordered persistence of a login result (access token, then
// refresh token, then user), and atomic Clear across all three keys.
package credstore
