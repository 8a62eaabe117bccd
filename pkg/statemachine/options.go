package statemachine

import "fmt"

// Option configures a machine during construction.
type Option func(*Machine) error

// New creates a machine starting in the given state.
func New(initial State, opts ...Option) (*Machine, error) {
	if initial == "" {
		return nil, fmt.Errorf("statemachine: initial state cannot be empty")
	}

	m := newMachine(initial)
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew creates a machine and panics on misconfiguration. Transition tables
// are static, so a bad table should fail at startup, not at runtime.
func MustNew(initial State, opts ...Option) *Machine {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("statemachine: %v", err))
	}
	return m
}

// WithTransition adds an unguarded transition.
func WithTransition(from, to State, event Event) Option {
	return func(m *Machine) error {
		return m.AddTransition(Transition{From: from, To: to, Event: event})
	}
}

// WithGuardedTransition adds a transition with guards and actions.
func WithGuardedTransition(from, to State, event Event, guards []Guard, actions []Action) Option {
	return func(m *Machine) error {
		return m.AddTransition(Transition{From: from, To: to, Event: event, Guards: guards, Actions: actions})
	}
}
