// Package ccref implements the non-owning back-reference handle
// collaborators use to call back into the controller without producing
// an ownership cycle.
//
// The controller constructs one Ref, binds itself into it once, and
// hands the same Ref to every collaborator at construction time. A
// collaborator resolves it with Get for the duration of a single call;
// Stop releases the binding so any later resolution fails cleanly with
// cncerr.ErrSessionClosed instead of operating on a torn-down controller.
package ccref

import (
	"sync"

	"github.com/ieee8021/tsn-cnc/internal/cncerr"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// Handle is the set of controller operations collaborators may call
// back into: the topology change notification, and (for the northbound
// collaborator, which forwards CUC calls into the controller) the six
// CUC-facing operations.
type Handle interface {
	// NotifyTopologyChanged accepts an asynchronous notification that the
	// topology collaborator's view of the network changed. The controller
	// accepts the call but does not re-schedule on it.
	NotifyTopologyChanged()

	ComputeStreams(req tsn.ComputationType) string
	RemoveStreams(cucID tsn.CucID, streamIDs []tsn.StreamID) string
	RequestDomainID(cucID tsn.CucID) string
	RequestFreeStreamID(domainID tsn.DomainID, cucID tsn.CucID) string
	SetStreams(cucID tsn.CucID, reqs []tsn.StreamRequest) string
	GetStreams(cucID tsn.CucID) (*tsn.Domain, error)
}

// Ref is the resolvable handle passed to every collaborator.
type Ref struct {
	mu sync.RWMutex
	h  Handle
}

// New returns an unbound Ref. Bind must be called once before any
// collaborator resolves it.
func New() *Ref {
	return &Ref{}
}

// Bind attaches the controller implementation. Called once, by the
// controller, before Start.
func (r *Ref) Bind(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.h = h
}

// Release detaches the controller implementation. Called from Stop so
// that any handle resolved afterward observes ErrSessionClosed.
func (r *Ref) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.h = nil
}

// Get resolves the handle for the duration of one call.
func (r *Ref) Get() (Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.h == nil {
		return nil, cncerr.ErrSessionClosed
	}
	return r.h, nil
}
