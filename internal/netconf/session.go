// Package netconf implements the NETCONF/YANG session mechanics the
// southbound collaborator drives: SSH transport, framed RPC exchange, a
// minimal non-validating XML tree with an XPath-subset evaluator, and
// the centralized Gate Control List path table.
package netconf

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/ieee8021/tsn-cnc/internal/cncerr"
	"github.com/ieee8021/tsn-cnc/internal/cnclog"
)

// SessionState is one state of the per-bridge NETCONF connection state
// machine:
// Disconnected -> Connecting -> HelloExchanged -> Ready ->
// (EditingCandidate -> Ready)* -> Committed -> Closing -> Closed.
type SessionState int

const (
	StateDisconnected SessionState = iota
	StateConnecting
	StateHelloExchanged
	StateReady
	StateEditingCandidate
	StateCommitted
	StateClosing
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateHelloExchanged:
		return "HelloExchanged"
	case StateReady:
		return "Ready"
	case StateEditingCandidate:
		return "EditingCandidate"
	case StateCommitted:
		return "Committed"
	case StateClosing:
		return "Closing"
	case StateClosed:
		return "Closed"
	default:
		return "Disconnected"
	}
}

// validEdges enumerates the state machine's allowed transitions,
// including the (EditingCandidate -> Ready)* loop and the any-state ->
// Closing error edge (added in transition itself, not listed here since
// it applies from every state).
var validEdges = map[SessionState][]SessionState{
	StateDisconnected:    {StateConnecting},
	StateConnecting:      {StateHelloExchanged, StateClosing},
	StateHelloExchanged:  {StateReady, StateClosing},
	StateReady:           {StateEditingCandidate, StateCommitted, StateClosing},
	StateEditingCandidate: {StateReady, StateClosing},
	StateCommitted:       {StateClosing},
	StateClosing:         {StateClosed},
	StateClosed:          {},
}

// Session is one NETCONF-over-SSH connection to a configurable bridge.
type Session struct {
	mu    sync.Mutex
	state SessionState
	nodeID uint32

	client  *ssh.Client
	sess    *ssh.Session
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	msgID   int
}

// endOfMessage is the NETCONF 1.0 framing delimiter (RFC 6241 §4.3).
const endOfMessage = "]]>]]>"

// defaultTimeout bounds the SSH dial (not later reads) for one-shot
// retrieval calls (retrieve_station_capabilities, retrieve_lldp) that
// don't go through the southbound collaborator's own session pool.
const defaultTimeout = 30 * time.Second

// Dial opens an SSH connection to host:port, authenticates with
// user/password, and starts the "netconf" subsystem.
func Dial(nodeID uint32, host string, port int, user, pass string, timeout time.Duration) (*Session, error) {
	s := &Session{state: StateDisconnected, nodeID: nodeID}
	if err := s.transition(StateConnecting); err != nil {
		return nil, err
	}

	if port == 0 {
		port = 830
	}
	config := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(pass)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		s.fail()
		return nil, &cncerr.SessionError{NodeID: nodeID, State: s.State().String(), Cause: err}
	}

	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		s.fail()
		return nil, &cncerr.SessionError{NodeID: nodeID, State: s.State().String(), Cause: err}
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		client.Close()
		s.fail()
		return nil, &cncerr.SessionError{NodeID: nodeID, State: s.State().String(), Cause: err}
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		client.Close()
		s.fail()
		return nil, &cncerr.SessionError{NodeID: nodeID, State: s.State().String(), Cause: err}
	}

	if err := sess.RequestSubsystem("netconf"); err != nil {
		sess.Close()
		client.Close()
		s.fail()
		return nil, &cncerr.SessionError{NodeID: nodeID, State: s.State().String(), Cause: err}
	}

	s.client = client
	s.sess = sess
	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)

	if err := s.hello(); err != nil {
		s.fail()
		return nil, err
	}
	return s, nil
}

func (s *Session) hello() error {
	const helloMsg = `<?xml version="1.0" encoding="UTF-8"?>
<hello xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">
  <capabilities>
    <capability>urn:ietf:params:netconf:base:1.0</capability>
    <capability>urn:ietf:params:netconf:capability:candidate:1.0</capability>
  </capabilities>
</hello>`
	if err := s.send(helloMsg); err != nil {
		return err
	}
	reply, err := s.recv()
	if err != nil {
		return &cncerr.SessionError{NodeID: s.nodeID, State: StateConnecting.String(), Cause: err}
	}
	// A bridge missing part of the module set is tolerated (it may still
	// accept the gate-parameter edits it does model), but the gap is
	// worth surfacing before the first edit fails with an rpc-error.
	if root, perr := Parse([]byte(reply)); perr == nil {
		if missing := MissingModules(root, YANGModules); len(missing) > 0 {
			cnclog.WithNode(s.nodeID).WithField("missing_modules", missing).
				Warn("netconf: bridge does not advertise all required YANG modules")
		}
	}
	if err := s.transition(StateHelloExchanged); err != nil {
		return err
	}
	return s.transition(StateReady)
}

// send writes an XML payload followed by the end-of-message delimiter.
func (s *Session) send(payload string) error {
	_, err := io.WriteString(s.stdin, payload+"\n"+endOfMessage)
	return err
}

// recv reads one framed message, stripping the trailing delimiter.
func (s *Session) recv() (string, error) {
	var buf []byte
	marker := []byte(endOfMessage)
	for {
		b, err := s.stdout.ReadByte()
		if err != nil {
			return "", err
		}
		buf = append(buf, b)
		if len(buf) >= len(marker) && string(buf[len(buf)-len(marker):]) == endOfMessage {
			return string(buf[:len(buf)-len(marker)]), nil
		}
	}
}

// nextMsgID returns a fresh, session-unique RPC message id.
func (s *Session) nextMsgID() int {
	s.msgID++
	return s.msgID
}

// State returns the session's current state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NodeID returns the bridge node id this session targets.
func (s *Session) NodeID() uint32 { return s.nodeID }

// transition moves the session to "to", rejecting edges not present in
// validEdges (except any-state -> Closing, which is always legal: it is
// the error path).
func (s *Session) transition(to SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if to == StateClosing {
		s.state = StateClosing
		return nil
	}
	for _, allowed := range validEdges[s.state] {
		if allowed == to {
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", cncerr.ErrInvalidState, s.state, to)
}

// fail transitions the session directly to Closing: any error moves the
// machine onto the teardown path.
func (s *Session) fail() {
	s.mu.Lock()
	s.state = StateClosing
	s.mu.Unlock()
}

// Close tears down the underlying SSH session and client without sending
// a closing RPC first. Safe to call on a failed session.
func (s *Session) Close() error {
	s.mu.Lock()
	s.state = StateClosing
	s.mu.Unlock()

	var firstErr error
	if s.sess != nil {
		if err := s.sess.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()
	return firstErr
}
