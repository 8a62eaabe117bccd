package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// State identifies a state by name. String constants are the common case.
type State string

// Event identifies an event by name.
type Event string

// Guard decides whether a transition may proceed. All guards of a transition
// must pass; the first transition whose guards all pass wins.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Action runs side effects before the state changes. An error aborts the
// transition and leaves the machine in its current state.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Transition defines a state change triggered by an event.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard
	Actions []Action
}

// Machine is a thread-safe finite state machine. Transition lookup is O(1)
// via a nested map keyed by state then event.
type Machine struct {
	initial     State
	current     State
	transitions map[State]map[Event][]Transition
	mu          sync.RWMutex
}

func newMachine(initial State) *Machine {
	return &Machine{
		initial:     initial,
		current:     initial,
		transitions: make(map[State]map[Event][]Transition),
	}
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// AddTransition registers a transition. Multiple transitions may share a
// from/event pair to support guard-based branching.
func (m *Machine) AddTransition(t Transition) error {
	if t.From == "" || t.To == "" || t.Event == "" {
		return ErrInvalidTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transitions[t.From]; !ok {
		m.transitions[t.From] = make(map[Event][]Transition)
	}
	m.transitions[t.From][t.Event] = append(m.transitions[t.From][t.Event], t)
	return nil
}

// Fire dispatches an event. The first registered transition whose guards all
// pass is taken; its actions run before the state changes and any action
// error aborts the transition.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	if event == "" {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := m.transitions[m.current][event]
	if len(candidates) == 0 {
		return &NoTransitionError{State: string(m.current), Event: string(event)}
	}

	chosen := m.selectTransition(ctx, candidates, event, data)
	if chosen == nil {
		return &RejectedError{State: string(m.current), Event: string(event)}
	}

	for _, action := range chosen.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, m.current, chosen.To, event, data); err != nil {
			return fmt.Errorf("statemachine: action failed: %w", err)
		}
	}

	m.current = chosen.To
	return nil
}

// CanFire reports whether the event would be accepted in the current state.
func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == "" {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.selectTransition(ctx, m.transitions[m.current][event], event, data) != nil
}

// Reset returns the machine to its initial state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

// Must be called with at least a read lock held.
func (m *Machine) selectTransition(ctx context.Context, candidates []Transition, event Event, data any) *Transition {
	for i := range candidates {
		t := &candidates[i]
		passed := true
		for _, guard := range t.Guards {
			if guard != nil && !guard(ctx, m.current, event, data) {
				passed = false
				break
			}
		}
		if passed {
			return t
		}
	}
	return nil
}
