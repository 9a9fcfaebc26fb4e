// Package topology implements the topology collaborator: a read-only
// provider of the network snapshot the scheduler and southbound need.
package topology

import (
	"github.com/ieee8021/tsn-cnc/internal/ccref"
	topo "github.com/ieee8021/tsn-cnc/pkg/topology"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// Adapter is the topology collaborator's operation set.
type Adapter interface {
	// Get returns the current topology snapshot.
	Get() (*topo.Topology, error)

	// GetNode returns information for a single node, or nil if unknown.
	GetNode(id tsn.NodeID) (*topo.Node, error)

	// Run starts the collaborator's background activity (if any). Must
	// not block; typically launches a goroutine and returns immediately.
	Run()

	// SetControllerRef binds the collaborator's controller back-reference.
	SetControllerRef(ref *ccref.Ref)
}
