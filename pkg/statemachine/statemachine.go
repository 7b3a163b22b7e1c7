package statemachine

import (
	"context"
	"maps"
	"slices"
)

// Guard decides at runtime whether a transition may be taken.
type Guard[S, E ~string] func(ctx context.Context, from S, event E, data any) bool

// Transition is an edge of the graph.
type Transition[S, E ~string] struct {
	From   S
	To     S
	Event  E
	Guards []Guard[S, E]
}

// T is shorthand for a Transition literal.
func T[S, E ~string](from, to S, event E, guards ...Guard[S, E]) Transition[S, E] {
	return Transition[S, E]{From: from, To: to, Event: event, Guards: guards}
}

// Machine is an immutable transition graph, safe for concurrent use.
type Machine[S, E ~string] struct {
	initial     S
	states      map[S]struct{}
	transitions map[S]map[E][]Transition[S, E]
}

// New validates transitions and builds a Machine.
func New[S, E ~string](initial S, transitions ...Transition[S, E]) (*Machine[S, E], error) {
	if initial == "" {
		return nil, ErrInvalidTransition
	}

	m := &Machine[S, E]{
		initial:     initial,
		states:      map[S]struct{}{initial: {}},
		transitions: make(map[S]map[E][]Transition[S, E]),
	}
	for _, t := range transitions {
		if t.From == "" || t.To == "" || t.Event == "" {
			return nil, ErrInvalidTransition
		}
		byEvent, ok := m.transitions[t.From]
		if !ok {
			byEvent = make(map[E][]Transition[S, E])
			m.transitions[t.From] = byEvent
		}
		// An unguarded edge shadows every later edge for the same pair.
		for _, prev := range byEvent[t.Event] {
			if len(prev.Guards) == 0 {
				return nil, ErrShadowedTransition
			}
		}
		byEvent[t.Event] = append(byEvent[t.Event], t)
		m.states[t.From] = struct{}{}
		m.states[t.To] = struct{}{}
	}
	return m, nil
}

// MustNew is like New but panics on an invalid graph.
func MustNew[S, E ~string](initial S, transitions ...Transition[S, E]) *Machine[S, E] {
	m, err := New(initial, transitions...)
	if err != nil {
		panic(err)
	}
	return m
}

// Initial returns the state new entities start in.
func (m *Machine[S, E]) Initial() S {
	return m.initial
}

// Next returns the state reached from from on event.
func (m *Machine[S, E]) Next(ctx context.Context, from S, event E, data any) (S, error) {
	candidates := m.transitions[from][event]
	if len(candidates) == 0 {
		return from, NewErrNoTransitionAvailable(string(from), string(event))
	}

	for _, t := range candidates {
		if guardsPass(ctx, t, data) {
			return t.To, nil
		}
	}
	return from, NewErrTransitionRejected(string(from), string(event))
}

// Can reports whether event may be fired from from.
func (m *Machine[S, E]) Can(ctx context.Context, from S, event E, data any) bool {
	_, err := m.Next(ctx, from, event, data)
	return err == nil
}

// Events lists the events defined for from, sorted.
func (m *Machine[S, E]) Events(from S) []E {
	return slices.Sorted(maps.Keys(m.transitions[from]))
}

// States lists every state in the graph, sorted.
func (m *Machine[S, E]) States() []S {
	return slices.Sorted(maps.Keys(m.states))
}

// IsTerminal reports whether no transition leaves s.
func (m *Machine[S, E]) IsTerminal(s S) bool {
	return len(m.transitions[s]) == 0
}

func guardsPass[S, E ~string](ctx context.Context, t Transition[S, E], data any) bool {
	for _, g := range t.Guards {
		if g != nil && !g(ctx, t.From, t.Event, data) {
			return false
		}
	}
	return true
}
