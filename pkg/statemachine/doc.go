// Package statemachine implements a small, thread-safe finite state machine.
//
// States and events are named values; transitions may carry guards that can
// veto them and actions that run before the state changes. The auth hydrator
// uses this package to keep its lifecycle (pending → loading → terminal)
// honest: an impossible transition is a bug surfaced as an error rather than
// silently corrupted state.
//
//	sm := statemachine.MustNew(Pending,
//	    statemachine.WithTransition(Pending, Loading, Start),
//	    statemachine.WithTransition(Loading, Succeeded, Finish),
//	)
//	err := sm.Fire(ctx, Start, nil)
package statemachine
