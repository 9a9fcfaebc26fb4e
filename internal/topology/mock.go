package topology

import (
	"github.com/ieee8021/tsn-cnc/internal/ccref"
	topo "github.com/ieee8021/tsn-cnc/pkg/topology"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// MockAdapter serves a fixed snapshot, for tests.
type MockAdapter struct {
	Snapshot *topo.Topology
	Err      error

	ref *ccref.Ref
}

func (m *MockAdapter) SetControllerRef(ref *ccref.Ref) { m.ref = ref }

func (m *MockAdapter) Run() {}

func (m *MockAdapter) Get() (*topo.Topology, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Snapshot == nil {
		return &topo.Topology{}, nil
	}
	return m.Snapshot, nil
}

func (m *MockAdapter) GetNode(id tsn.NodeID) (*topo.Node, error) {
	snap, err := m.Get()
	if err != nil {
		return nil, err
	}
	return snap.GetNode(id), nil
}

// NotifyChange resolves the controller reference and delivers a
// topology-change notification, for tests exercising that call path.
func (m *MockAdapter) NotifyChange() error {
	h, err := m.ref.Get()
	if err != nil {
		return err
	}
	h.NotifyTopologyChanged()
	return nil
}
