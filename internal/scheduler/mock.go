package scheduler

import (
	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/pkg/sched"
	"github.com/ieee8021/tsn-cnc/pkg/topology"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// MockScheduler returns a caller-supplied ComputationResult verbatim
// (or invokes a caller-supplied function), for pipeline-order tests that
// need to control exactly what the scheduler hands back without
// exercising real placement logic.
type MockScheduler struct {
	Result sched.ComputationResult
	Err    error
	// ComputeFunc, if set, overrides Result/Err and receives the actual
	// call arguments — used by tests that need to echo back annotated
	// copies of the domains they were given.
	ComputeFunc func(topo *topology.Topology, domains []*tsn.Domain) (sched.ComputationResult, error)

	ref *ccref.Ref
}

func (m *MockScheduler) SetControllerRef(ref *ccref.Ref) { m.ref = ref }

func (m *MockScheduler) Compute(topo *topology.Topology, domains []*tsn.Domain) (sched.ComputationResult, error) {
	if m.ComputeFunc != nil {
		return m.ComputeFunc(topo, domains)
	}
	return m.Result, m.Err
}
