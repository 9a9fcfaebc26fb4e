// Package storage defines the durable Domain/CUC/Stream tree and
// per-node Config map the controller reads and mutates on every pipeline
// step.
package storage

import (
	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/pkg/sched"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// Store is the storage collaborator's operation set. Every method is
// atomic with respect to a single invocation and every mutation is
// visible to subsequent reads on the same Store.
type Store interface {
	// Configure loads the persisted tree, seeding it with domainID's
	// single CNC-enabled domain if no prior state exists.
	Configure(domainID tsn.DomainID) error

	// Select returns a deep copy of the domains named by reqs. When
	// plannedAndModified is true, each returned CUC's stream list is
	// filtered to streams with status Planned or Modified.
	Select(reqs []tsn.RequestDomain, plannedAndModified bool) ([]*tsn.Domain, error)

	// SetStream upserts one stream into the named CUC of the
	// controller's domain. A replacement's status becomes Modified; a
	// new stream keeps the status already set on it by the caller.
	SetStream(cucID tsn.CucID, stream *tsn.Stream) error

	// SetStreams is the batch form of SetStream.
	SetStreams(cucID tsn.CucID, streams []*tsn.Stream) error

	// ModifyStreams replaces each named (domain, cuc, stream) wholesale
	// with the provided copy — the scheduler's writeback step.
	ModifyStreams(domains []*tsn.Domain) error

	// SetConfigured applies the post-configure status transition to
	// every stream named in domains: Configured when no failed interface
	// lists it, Modified otherwise.
	SetConfigured(domains []*tsn.Domain, failed sched.FailedInterfaces) error

	// RemoveStream removes one stream. Removing a stream that does not
	// exist is a no-op and still succeeds.
	RemoveStream(cucID tsn.CucID, streamID tsn.StreamID) error

	// RemoveAllStreams removes every stream belonging to cucID.
	RemoveAllStreams(cucID tsn.CucID) error

	// GetDomainOfCuc returns the domain id owning cucID, or
	// cncerr.ErrNotFound.
	GetDomainOfCuc(cucID tsn.CucID) (tsn.DomainID, error)

	// GetFreeStreamID returns a stream id not currently in use by any
	// stream in any domain.
	GetFreeStreamID() (tsn.StreamID, error)

	// GetConfig returns the last-pushed Config for nodeID, or
	// cncerr.ErrNotFound.
	GetConfig(nodeID tsn.NodeID) (*sched.Config, error)

	// GetAllConfigs returns every persisted per-node Config.
	GetAllConfigs() ([]*sched.Config, error)

	// PutConfig persists one Config, replacing any existing entry for
	// its node id.
	PutConfig(cfg *sched.Config) error

	// PutConfigs is the batch form of PutConfig.
	PutConfigs(cfgs []sched.Config) error

	// SetControllerRef binds the collaborator's controller back-reference.
	SetControllerRef(ref *ccref.Ref)
}
