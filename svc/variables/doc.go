// Package variables manages FlowGrid user variables: typed key/value
// entries scoped to the whole account, a single workflow or a user.
//
// The Service covers CRUD, bulk operations, server-side validation,
// conflict-aware sync and import/export.
package variables
