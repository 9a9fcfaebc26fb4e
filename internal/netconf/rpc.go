package netconf

import (
	"fmt"

	"github.com/ieee8021/tsn-cnc/internal/cncerr"
)

// rpc sends body wrapped in an <rpc> envelope and returns the parsed
// <rpc-reply>, failing if the reply carries an <rpc-error>.
func (s *Session) rpc(body string) (*Node, error) {
	id := s.nextMsgID()
	envelope := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rpc message-id="%d" xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">
%s
</rpc>`, id, body)

	if err := s.send(envelope); err != nil {
		s.fail()
		return nil, &cncerr.SessionError{NodeID: s.nodeID, State: s.State().String(), Cause: err}
	}
	reply, err := s.recv()
	if err != nil {
		s.fail()
		return nil, &cncerr.SessionError{NodeID: s.nodeID, State: s.State().String(), Cause: err}
	}
	root, err := Parse([]byte(reply))
	if err != nil {
		s.fail()
		return nil, &cncerr.SessionError{NodeID: s.nodeID, State: s.State().String(), Cause: err}
	}
	if errs := root.ChildrenNamed("rpc-error"); len(errs) > 0 {
		msg := "rpc-error"
		if m := errs[0].Child("error-message"); m != nil {
			msg = m.Text()
		}
		return root, &cncerr.SessionError{NodeID: s.nodeID, State: s.State().String(), Cause: fmt.Errorf("%s", msg)}
	}
	return root, nil
}

// GetConfig runs a filtered <get-config> against the named datastore
// ("candidate" or "running").
func (s *Session) GetConfig(datastore, filterXML string) (*Node, error) {
	body := fmt.Sprintf(`<get-config><source><%s/></source>%s</get-config>`, datastore, filterXML)
	return s.rpc(body)
}

// Get runs a filtered <get> against the operational/state datastore.
func (s *Session) Get(filterXML string) (*Node, error) {
	body := fmt.Sprintf(`<get>%s</get>`, filterXML)
	return s.rpc(body)
}

// EditConfig pushes editXML into the candidate datastore with
// default-operation=merge, test-option=test-then-set,
// error-option=rollback-on-error.
func (s *Session) EditConfig(editXML string) error {
	if err := s.transition(StateEditingCandidate); err != nil {
		return err
	}
	body := fmt.Sprintf(`<edit-config>
  <target><candidate/></target>
  <default-operation>merge</default-operation>
  <test-option>test-then-set</test-option>
  <error-option>rollback-on-error</error-option>
  <config>%s</config>
</edit-config>`, editXML)
	if _, err := s.rpc(body); err != nil {
		s.fail()
		return err
	}
	return s.transition(StateReady)
}

// Commit issues <commit> against the candidate datastore.
func (s *Session) Commit() error {
	if _, err := s.rpc(`<commit/>`); err != nil {
		s.fail()
		return err
	}
	return s.transition(StateCommitted)
}
