package netconf

import (
	"errors"
	"testing"

	"github.com/ieee8021/tsn-cnc/internal/cncerr"
)

func TestSessionStateTransitions(t *testing.T) {
	s := &Session{state: StateDisconnected}

	steps := []SessionState{
		StateConnecting,
		StateHelloExchanged,
		StateReady,
		StateEditingCandidate,
		StateReady,
		StateEditingCandidate,
		StateReady,
		StateCommitted,
	}
	for _, to := range steps {
		if err := s.transition(to); err != nil {
			t.Fatalf("transition to %s failed: %v", to, err)
		}
	}
	if s.State() != StateCommitted {
		t.Errorf("state = %s, want Committed", s.State())
	}
}

func TestSessionInvalidTransitionRejected(t *testing.T) {
	s := &Session{state: StateDisconnected}
	err := s.transition(StateReady)
	if err == nil {
		t.Fatal("Disconnected -> Ready accepted")
	}
	if !errors.Is(err, cncerr.ErrInvalidState) {
		t.Errorf("error = %v, want ErrInvalidState", err)
	}
	if s.State() != StateDisconnected {
		t.Errorf("state changed on rejected transition: %s", s.State())
	}
}

func TestSessionErrorPathAlwaysReachesClosing(t *testing.T) {
	for _, from := range []SessionState{
		StateDisconnected, StateConnecting, StateHelloExchanged,
		StateReady, StateEditingCandidate, StateCommitted,
	} {
		s := &Session{state: from}
		if err := s.transition(StateClosing); err != nil {
			t.Errorf("%s -> Closing rejected: %v", from, err)
		}
	}
}

func TestSessionCommittedCannotEditAgain(t *testing.T) {
	s := &Session{state: StateCommitted}
	if err := s.transition(StateEditingCandidate); err == nil {
		t.Error("Committed -> EditingCandidate accepted")
	}
}

func TestSessionStateStrings(t *testing.T) {
	want := map[SessionState]string{
		StateDisconnected:     "Disconnected",
		StateConnecting:       "Connecting",
		StateHelloExchanged:   "HelloExchanged",
		StateReady:            "Ready",
		StateEditingCandidate: "EditingCandidate",
		StateCommitted:        "Committed",
		StateClosing:          "Closing",
		StateClosed:           "Closed",
	}
	for state, name := range want {
		if state.String() != name {
			t.Errorf("%d.String() = %q, want %q", state, state.String(), name)
		}
	}
}
