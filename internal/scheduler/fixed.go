package scheduler

import (
	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/pkg/sched"
	"github.com/ieee8021/tsn-cnc/pkg/topology"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// FixedLatencyScheduler is the reference scheduling strategy: it admits
// every stream, assigns a single configurable accumulated latency to
// every talker and listener, and derives each stream's interface
// configuration by exhausting the talker's DataFrameSpecification. It
// does not attempt real GCL feasibility analysis, but it does produce
// one Config per bridge port touched by at least one stream, with an
// admin_control_list sized to the number of distinct streams sharing
// that port, so the southbound push path has real data to carry.
type FixedLatencyScheduler struct {
	// AccumulatedLatency is the value annotated onto every talker and
	// listener. Defaults to 50000ns via New.
	AccumulatedLatency uint32
	ref                *ccref.Ref
}

// New returns a FixedLatencyScheduler with the default accumulated
// latency.
func New() *FixedLatencyScheduler {
	return &FixedLatencyScheduler{AccumulatedLatency: 50000}
}

func (f *FixedLatencyScheduler) SetControllerRef(ref *ccref.Ref) { f.ref = ref }

func (f *FixedLatencyScheduler) Compute(topo *topology.Topology, domains []*tsn.Domain) (sched.ComputationResult, error) {
	out := make([]*tsn.Domain, len(domains))
	portStreams := make(map[portKey]map[tsn.StreamID]struct{})

	for i, d := range domains {
		nd := d.Clone()
		out[i] = nd
		for _, cuc := range nd.Cucs {
			for _, s := range cuc.Streams {
				f.annotateTalker(&s.Talker)
				for li := range s.Listeners {
					f.annotateListener(&s.Listeners[li], s.Talker)
				}
				f.recordPorts(topo, s, portStreams)
			}
		}
	}

	var configs []sched.Config
	for pk, streams := range portStreams {
		ids := make([]tsn.StreamID, 0, len(streams))
		for id := range streams {
			ids = append(ids, id)
		}
		configs = append(configs, sched.Config{
			NodeID: pk.node,
			Port: sched.PortConfiguration{
				Name:       pk.port,
				MacAddress: pk.mac,
				Config: sched.GateParameterTable{
					GateEnable:      true,
					AdminGateStates: 0xFF,
					AdminControlList: buildControlList(len(ids)),
					AdminCycleTime:   sched.Rational{Numerator: 1, Denominator: 1000},
					ConfigChange:     true,
				},
			},
			AffectedStreams: ids,
		})
	}

	return sched.ComputationResult{
		Schedule: sched.Schedule{Configs: configs},
		Domains:  out,
	}, nil
}

type portKey struct {
	node tsn.NodeID
	port string
	mac  string
}

// recordPorts attributes stream to every bridge port in the topology
// that the stream's talker or any listener's end-station interfaces
// connect through, by walking topology.Paths between the talker's
// node and each listener's node. Streams whose endpoints the topology
// cannot resolve to a path are simply not attributed to any port —
// they remain placeable (not in failed_streams) since the contract
// only requires that affected_streams cover what it does push.
func (f *FixedLatencyScheduler) recordPorts(topo *topology.Topology, s *tsn.Stream, out map[portKey]map[tsn.StreamID]struct{}) {
	if topo == nil {
		return
	}
	talkerNode, ok := resolveNode(topo, s.Talker.GroupTalker.EndStationInterfaces)
	if !ok {
		return
	}
	for _, l := range s.Listeners {
		listenerNode, ok := resolveNode(topo, l.GroupListener.EndStationInterfaces)
		if !ok {
			continue
		}
		path := findPath(topo, talkerNode, listenerNode)
		if path == nil {
			continue
		}
		for _, hop := range path.Hops {
			node := topo.GetNode(hop)
			if node == nil {
				continue
			}
			for _, p := range node.Ports {
				pk := portKey{node: hop, port: p.Name, mac: p.MacAddress}
				if out[pk] == nil {
					out[pk] = make(map[tsn.StreamID]struct{})
				}
				out[pk][s.StreamID] = struct{}{}
			}
		}
	}
}

func resolveNode(topo *topology.Topology, ifaces []tsn.EndStationInterface) (tsn.NodeID, bool) {
	for _, iface := range ifaces {
		for _, n := range topo.Nodes {
			for _, p := range n.Ports {
				if p.MacAddress == iface.InterfaceID.MacAddress {
					return n.ID, true
				}
			}
		}
	}
	return 0, false
}

func findPath(topo *topology.Topology, a, b tsn.NodeID) *topology.Path {
	for i := range topo.Paths {
		p := &topo.Paths[i]
		if (p.EndpointA == a && p.EndpointB == b) || (p.EndpointA == b && p.EndpointB == a) {
			return p
		}
	}
	return nil
}

func buildControlList(n int) []sched.GateControlEntry {
	if n == 0 {
		n = 1
	}
	entries := make([]sched.GateControlEntry, n)
	for i := range entries {
		entries[i] = sched.GateControlEntry{
			Operation:       sched.OperationSetGateStates,
			TimeIntervalNS:  1000,
			GateStatesValue: 0xFF,
		}
	}
	return entries
}

func (f *FixedLatencyScheduler) annotateTalker(t *tsn.Talker) {
	t.GroupStatusTalkerListener.AccumulatedLatency = f.AccumulatedLatency
	t.GroupStatusTalkerListener.InterfaceConfiguration.InterfaceList = buildInterfaceList(t.GroupTalker.EndStationInterfaces, t.GroupTalker.DataFrameSpecification)
}

func (f *FixedLatencyScheduler) annotateListener(l *tsn.Listener, talker tsn.Talker) {
	l.GroupStatusTalkerListener.AccumulatedLatency = f.AccumulatedLatency
	// The listener's config list mirrors the talker's.
	l.GroupStatusTalkerListener.InterfaceConfiguration.InterfaceList = buildInterfaceList(l.GroupListener.EndStationInterfaces, talker.GroupTalker.DataFrameSpecification)
}

// buildInterfaceList derives the single InterfaceListElement an
// endpoint's status block carries, by exhausting the data-frame
// specification's variant list into a parallel ConfigList.
func buildInterfaceList(ifaces []tsn.EndStationInterface, spec []tsn.DataFrameSpecificationElement) []tsn.InterfaceListElement {
	if len(ifaces) == 0 {
		return nil
	}
	groupID := ifaces[0].InterfaceID
	configList := make([]tsn.ConfigListElement, 0, len(spec))
	for _, el := range spec {
		var cv tsn.ConfigValue
		switch f := el.Field.(type) {
		case tsn.MacAddresses:
			cv = f
		case tsn.VlanTag:
			cv = f
		case tsn.IPv4Tuple:
			cv = f
		case tsn.IPv6Tuple:
			cv = f
		default:
			continue
		}
		configList = append(configList, tsn.ConfigListElement{Index: el.Index, ConfigValue: cv})
	}
	return []tsn.InterfaceListElement{{
		GroupInterfaceID: groupID,
		ConfigList:       configList,
	}}
}
