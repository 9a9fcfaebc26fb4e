// Package southbound implements the southbound collaborator: it drives
// the NETCONF session lifecycle of internal/netconf to push a computed
// Schedule to every bridge it touches, under an all-or-nothing commit
// gate.
package southbound

import (
	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/pkg/sched"
	"github.com/ieee8021/tsn-cnc/pkg/topology"
)

// Adapter is the southbound collaborator's operation set.
type Adapter interface {
	// ConfigureNetwork pushes schedule to every bridge it names,
	// returning the set of interfaces whose configuration could not be
	// pushed or committed. Per the all-or-nothing rule, if any interface
	// fails, no bridge touched by this call receives a <commit>.
	ConfigureNetwork(topo *topology.Topology, schedule sched.Schedule) (sched.FailedInterfaces, error)

	// RetrieveStationCapabilities returns the interface/delay data for
	// one bridge, used by a topology refresh or a CUC capability query.
	RetrieveStationCapabilities(node *topology.Node) ([]topology.Port, error)

	// SetControllerRef binds the collaborator's controller back-reference.
	SetControllerRef(ref *ccref.Ref)
}
