package southbound

import (
	"fmt"
	"time"

	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/internal/cncerr"
	"github.com/ieee8021/tsn-cnc/internal/cnclog"
	"github.com/ieee8021/tsn-cnc/internal/netconf"
	"github.com/ieee8021/tsn-cnc/pkg/sched"
	"github.com/ieee8021/tsn-cnc/pkg/topology"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// bridgeSession is the slice of the NETCONF session the configure
// algorithm drives. netconf.Session satisfies it; tests substitute fakes.
type bridgeSession interface {
	EditPort(port sched.PortConfiguration) error
	Commit() error
	Close() error
}

// NetconfAdapter is the reference Adapter implementation: real
// NETCONF-over-SSH sessions against bridges named in the topology's
// SSHParams.
type NetconfAdapter struct {
	// DialTimeout bounds each SSH dial. Defaults to 30s via New.
	DialTimeout time.Duration

	// dial opens a session to one bridge. Overridden in tests.
	dial func(node *topology.Node, timeout time.Duration) (bridgeSession, error)

	ref *ccref.Ref
}

// New returns a NetconfAdapter with the default dial timeout.
func New() *NetconfAdapter {
	return &NetconfAdapter{
		DialTimeout: 30 * time.Second,
		dial:        dialNetconf,
	}
}

func dialNetconf(node *topology.Node, timeout time.Duration) (bridgeSession, error) {
	p := node.SSHParams
	return netconf.Dial(uint32(node.ID), p.Host, p.Port, p.Username, p.Password, timeout)
}

func (a *NetconfAdapter) SetControllerRef(ref *ccref.Ref) { a.ref = ref }

// ConfigureNetwork pushes the schedule bridge by bridge: configs are
// edited one at a time, reusing any already-open session for a node;
// any failure records a FailedInterface and disqualifies every bridge
// from receiving a <commit> this run; on success, every touched session
// is committed and then closed.
func (a *NetconfAdapter) ConfigureNetwork(topo *topology.Topology, schedule sched.Schedule) (sched.FailedInterfaces, error) {
	active := make(map[tsn.NodeID]bridgeSession)
	configsByNode := make(map[tsn.NodeID][]sched.Config)
	var failed []sched.FailedInterface

	defer func() {
		for _, s := range active {
			s.Close()
		}
	}()

	for _, cfg := range schedule.Configs {
		sess, err := a.sessionFor(active, topo, cfg.NodeID)
		if err != nil {
			failed = append(failed, failureFor(cfg))
			cnclog.WithNode(uint32(cfg.NodeID)).WithError(err).Warn("southbound: session unavailable")
			continue
		}
		if err := sess.EditPort(cfg.Port); err != nil {
			failed = append(failed, failureFor(cfg))
			cnclog.WithNode(uint32(cfg.NodeID)).WithError(err).Warn("southbound: edit_port failed")
			continue
		}
		configsByNode[cfg.NodeID] = append(configsByNode[cfg.NodeID], cfg)
	}

	if len(failed) == 0 {
		for nodeID, sess := range active {
			if err := sess.Commit(); err != nil {
				cnclog.WithNode(uint32(nodeID)).WithError(err).Warn("southbound: commit failed")
				for _, cfg := range configsByNode[nodeID] {
					failed = append(failed, failureFor(cfg))
				}
			}
		}
	} else {
		cnclog.Logger.WithField("failed_interfaces", len(failed)).Info("southbound: skipping commit, partial configuration")
	}

	return sched.FailedInterfaces{Interfaces: failed}, nil
}

// sessionFor returns the already-open session for nodeID, or dials a
// new one using the topology's SSH parameters.
func (a *NetconfAdapter) sessionFor(active map[tsn.NodeID]bridgeSession, topo *topology.Topology, nodeID tsn.NodeID) (bridgeSession, error) {
	if s, ok := active[nodeID]; ok {
		return s, nil
	}
	node := topo.GetNode(nodeID)
	if node == nil || node.SSHParams == nil {
		return nil, fmt.Errorf("%w: no ssh params for node %d", cncerr.ErrNotFound, nodeID)
	}
	s, err := a.dial(node, a.DialTimeout)
	if err != nil {
		return nil, err
	}
	active[nodeID] = s
	return s, nil
}

func failureFor(cfg sched.Config) sched.FailedInterface {
	set := make(map[tsn.StreamID]struct{}, len(cfg.AffectedStreams))
	for _, id := range cfg.AffectedStreams {
		set[id] = struct{}{}
	}
	return sched.FailedInterface{
		NodeID:          cfg.NodeID,
		Interface:       tsn.GroupInterfaceID{InterfaceName: cfg.Port.Name, MacAddress: cfg.Port.MacAddress},
		AffectedStreams: set,
	}
}

// RetrieveStationCapabilities delegates to the netconf package's
// one-shot retrieval helper.
func (a *NetconfAdapter) RetrieveStationCapabilities(node *topology.Node) ([]topology.Port, error) {
	if node.SSHParams == nil {
		return nil, fmt.Errorf("%w: node %d has no ssh params", cncerr.ErrNotFound, node.ID)
	}
	return netconf.RetrieveStationCapabilities(uint32(node.ID), node.SSHParams.Host, node.SSHParams.Port, node.SSHParams.Username, node.SSHParams.Password)
}
