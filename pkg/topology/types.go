// Package topology models the read-only network topology snapshot the
// topology collaborator hands to the scheduler and southbound: nodes,
// their interfaces and SSH reachability, and precomputed paths.
package topology

import "github.com/ieee8021/tsn-cnc/pkg/tsn"

// NodeKind distinguishes a configurable bridge from an end station.
type NodeKind int

const (
	KindBridge NodeKind = iota
	KindEndStation
)

// SSHParams carries the NETCONF-over-SSH reachability parameters for a
// configurable bridge. Present on a Node only when the node is a bridge
// that can be configured; end stations and unconfigurable bridges carry none.
type SSHParams struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Port is one of a node's physical interfaces.
type Port struct {
	Name            string
	MacAddress      string
	TickGranularity uint32
	Delays          []BridgePortDelays
}

// BridgePortDelays is the IEEE 802.1Q bridge-port-delays block for one
// port speed, as retrieved via retrieve_station_capabilities.
type BridgePortDelays struct {
	PortSpeed            uint32
	DependentRxDelayMin  uint32
	DependentRxDelayMax  uint32
	IndependentRxDelayMin uint32
	IndependentRxDelayMax uint32
	IndependentRlyDelayMin uint32
	IndependentRlyDelayMax uint32
	IndependentTxDelayMin uint32
	IndependentTxDelayMax uint32
}

// Node is one topology participant.
type Node struct {
	ID        tsn.NodeID
	Kind      NodeKind
	SSHParams *SSHParams // non-nil iff Kind == KindBridge and reachable
	Ports     []Port
}

// ConnectionEndpoint names one side of a Connection.
type ConnectionEndpoint struct {
	NodeID   tsn.NodeID
	PortName string
}

// Connection is an unordered physical link between two node ports.
type Connection struct {
	ID uint32
	A  ConnectionEndpoint
	B  ConnectionEndpoint
}

// Path is a precomputed route between two end stations through zero or
// more bridge hops.
type Path struct {
	EndpointA tsn.NodeID
	EndpointB tsn.NodeID
	Hops      []tsn.NodeID
}

// Topology is the full read-only snapshot handed to the scheduler and
// southbound for one compute pipeline run.
type Topology struct {
	Nodes       []Node
	Connections []Connection
	Paths       []Path // nil if paths are not precomputed
}

// GetNode returns the node with the given id, or nil.
func (t *Topology) GetNode(id tsn.NodeID) *Node {
	for i := range t.Nodes {
		if t.Nodes[i].ID == id {
			return &t.Nodes[i]
		}
	}
	return nil
}
