package usecase

import (
	"fmt"

	apperrors "artisanx/pkg/errors"
)

type SessionState string

const (
	StateSignedOut      SessionState = "signed-out"
	StateAuthenticating SessionState = "authenticating"
	StateProfileLoading SessionState = "profile-loading"
	StateReady          SessionState = "ready"
	StateGuest          SessionState = "guest"
)

var sessionTransitions = map[SessionState][]SessionState{
	StateSignedOut:      {StateAuthenticating},
	StateAuthenticating: {StateProfileLoading, StateGuest, StateSignedOut},
	StateProfileLoading: {StateReady, StateSignedOut},
	StateReady:          {StateSignedOut},
	StateGuest:          {StateSignedOut},
}

type StateListener func(from, to SessionState)

// sessionMachine is not safe for concurrent use; the owning session
// serialises access. Listeners run synchronously inside the transition.
type sessionMachine struct {
	state     SessionState
	listeners map[int]StateListener
	nextID    int
}

func newSessionMachine() *sessionMachine {
	return &sessionMachine{
		state:     StateSignedOut,
		listeners: make(map[int]StateListener),
	}
}

func (m *sessionMachine) State() SessionState {
	return m.state
}

func (m *sessionMachine) Can(to SessionState) bool {
	for _, next := range sessionTransitions[m.state] {
		if next == to {
			return true
		}
	}
	return false
}

func (m *sessionMachine) Transition(to SessionState) error {
	if !m.Can(to) {
		return apperrors.Conflict(fmt.Sprintf("cannot move session from %s to %s", m.state, to))
	}
	from := m.state
	m.state = to
	for _, fn := range m.listeners {
		fn(from, to)
	}
	return nil
}

func (m *sessionMachine) Subscribe(fn StateListener) func() {
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() { delete(m.listeners, id) }
}
