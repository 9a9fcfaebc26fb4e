package southbound

import (
	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/pkg/sched"
	"github.com/ieee8021/tsn-cnc/pkg/topology"
)

// MockAdapter returns caller-supplied results, for pipeline and
// commit-gate tests that don't need a real NETCONF transport.
type MockAdapter struct {
	ConfigureNetworkFunc func(topo *topology.Topology, schedule sched.Schedule) (sched.FailedInterfaces, error)
	CapabilitiesFunc     func(node *topology.Node) ([]topology.Port, error)

	ref *ccref.Ref
}

func (m *MockAdapter) SetControllerRef(ref *ccref.Ref) { m.ref = ref }

func (m *MockAdapter) ConfigureNetwork(topo *topology.Topology, schedule sched.Schedule) (sched.FailedInterfaces, error) {
	if m.ConfigureNetworkFunc != nil {
		return m.ConfigureNetworkFunc(topo, schedule)
	}
	return sched.FailedInterfaces{}, nil
}

func (m *MockAdapter) RetrieveStationCapabilities(node *topology.Node) ([]topology.Port, error) {
	if m.CapabilitiesFunc != nil {
		return m.CapabilitiesFunc(node)
	}
	return nil, nil
}
