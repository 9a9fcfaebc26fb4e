// Package scheduler implements the scheduler collaborator: the
// pluggable strategy that turns a topology snapshot and a set of
// domains into a Gate Control List schedule. Only the Adapter contract
// and a reference strategy live here; deployments substitute their own
// placement algorithm behind the same interface.
package scheduler

import (
	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/pkg/sched"
	"github.com/ieee8021/tsn-cnc/pkg/topology"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// Adapter is the scheduler collaborator's operation set. Implementations
// must not mutate topo or domains; Compute returns its own copies.
type Adapter interface {
	// Compute takes the topology snapshot and the domains selected for
	// this pipeline run and returns the computed schedule, the
	// (possibly annotated) domains, and any streams it could not place.
	Compute(topo *topology.Topology, domains []*tsn.Domain) (sched.ComputationResult, error)

	// SetControllerRef binds the collaborator's controller back-reference.
	SetControllerRef(ref *ccref.Ref)
}
