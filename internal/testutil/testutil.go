// Package testutil provides shared fixtures for the controller and
// collaborator tests: canonical stream requests, a two-bridge topology,
// and a recording northbound adapter.
package testutil

import (
	"sync"

	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/internal/northbound"
	topo "github.com/ieee8021/tsn-cnc/pkg/topology"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// Canonical fixture identifiers shared by the scenario tests.
const (
	DomainID = tsn.DomainID("test-domain-id")
	CucID    = tsn.CucID("test-cuc-id")

	StreamID1 = tsn.StreamID("00-00-00-00-00-01:00-01")
	StreamID2 = tsn.StreamID("00-00-00-00-00-01:00-02")
	StreamID3 = tsn.StreamID("00-00-00-00-00-02:00-03")

	TalkerMAC   = "00-00-00-00-01-0A"
	ListenerMAC = "00-00-00-00-01-0B"
)

// StreamIDs returns the three canonical fixture stream ids.
func StreamIDs() []tsn.StreamID {
	return []tsn.StreamID{StreamID1, StreamID2, StreamID3}
}

// NewStreamRequest builds a full stream request: one talker interface,
// a VLAN-tag plus IPv4 data-frame specification, and one listener.
func NewStreamRequest(id tsn.StreamID) tsn.StreamRequest {
	return tsn.StreamRequest{
		StreamID: id,
		Talker: tsn.GroupTalker{
			StreamRank: 1,
			EndStationInterfaces: []tsn.EndStationInterface{{
				Index:       0,
				InterfaceID: tsn.GroupInterfaceID{InterfaceName: "eth0", MacAddress: TalkerMAC},
			}},
			DataFrameSpecification: []tsn.DataFrameSpecificationElement{
				{Index: 0, Field: tsn.VlanTag{VlanID: 10, PriorityCodePoint: 5}},
				{Index: 1, Field: tsn.IPv4Tuple{
					SourceIP: "10.0.0.1", DestIP: "10.0.0.2",
					DSCP: 46, Protocol: 17, SourcePort: 5000, DestPort: 5001,
				}},
			},
			TrafficSpecification: tsn.TrafficSpecificationContainer{
				Interval:             tsn.TrafficSpecificationInterval{Numerator: 1, Denominator: 1000},
				MaxFramesPerInterval: 1,
				MaxFrameSize:         128,
				TimeAware:            &tsn.TimeAwareContainer{LatestTransmitOffset: 10000},
			},
			UserToNetworkRequirements: tsn.UserToNetworkRequirements{MaxLatency: 100000},
			InterfaceCapabilities:     tsn.InterfaceCapabilities{VlanTagCapable: true},
		},
		Listeners: []tsn.GroupListener{{
			Index: 0,
			EndStationInterfaces: []tsn.EndStationInterface{{
				Index:       0,
				InterfaceID: tsn.GroupInterfaceID{InterfaceName: "eth0", MacAddress: ListenerMAC},
			}},
			UserToNetworkRequirements: tsn.UserToNetworkRequirements{MaxLatency: 100000},
			InterfaceCapabilities:     tsn.InterfaceCapabilities{VlanTagCapable: true},
		}},
	}
}

// NewStream builds the stored form of NewStreamRequest with status
// Planned.
func NewStream(id tsn.StreamID) *tsn.Stream {
	req := NewStreamRequest(id)
	s := &tsn.Stream{
		StreamID: req.StreamID,
		Status:   tsn.StreamStatusPlanned,
		Talker:   tsn.Talker{GroupTalker: req.Talker},
	}
	for _, l := range req.Listeners {
		s.Listeners = append(s.Listeners, tsn.Listener{Index: l.Index, GroupListener: l})
	}
	return s
}

// TwoBridgeTopology returns the reachable/unreachable bridge pair used
// by the partial-failure scenario: end station 10 (talker side) connects
// through bridges 1 and 2 to end station 11 (listener side).
func TwoBridgeTopology() *topo.Topology {
	return &topo.Topology{
		Nodes: []topo.Node{
			{
				ID:   1,
				Kind: topo.KindBridge,
				SSHParams: &topo.SSHParams{
					Host: "192.0.2.1", Port: 830, Username: "admin", Password: "admin",
				},
				Ports: []topo.Port{
					{Name: "sw0p1", MacAddress: "00-00-00-00-00-11"},
					{Name: "sw0p2", MacAddress: "00-00-00-00-00-12"},
				},
			},
			{
				ID:   2,
				Kind: topo.KindBridge,
				SSHParams: &topo.SSHParams{
					Host: "192.0.2.2", Port: 830, Username: "admin", Password: "admin",
				},
				Ports: []topo.Port{
					{Name: "sw0p1", MacAddress: "00-00-00-00-00-21"},
					{Name: "sw0p2", MacAddress: "00-00-00-00-00-22"},
				},
			},
			{
				ID:    10,
				Kind:  topo.KindEndStation,
				Ports: []topo.Port{{Name: "eth0", MacAddress: TalkerMAC}},
			},
			{
				ID:    11,
				Kind:  topo.KindEndStation,
				Ports: []topo.Port{{Name: "eth0", MacAddress: ListenerMAC}},
			},
		},
		Connections: []topo.Connection{
			{ID: 1, A: topo.ConnectionEndpoint{NodeID: 10, PortName: "eth0"}, B: topo.ConnectionEndpoint{NodeID: 1, PortName: "sw0p1"}},
			{ID: 2, A: topo.ConnectionEndpoint{NodeID: 1, PortName: "sw0p2"}, B: topo.ConnectionEndpoint{NodeID: 2, PortName: "sw0p1"}},
			{ID: 3, A: topo.ConnectionEndpoint{NodeID: 2, PortName: "sw0p2"}, B: topo.ConnectionEndpoint{NodeID: 11, PortName: "eth0"}},
		},
		Paths: []topo.Path{
			{EndpointA: 10, EndpointB: 11, Hops: []tsn.NodeID{1, 2}},
		},
	}
}

// Notification is one recorded northbound notification.
type Notification struct {
	Kind    string
	Content tsn.NotificationContent
}

// RecordingNorthbound implements northbound.Adapter against a
// controller, recording every notification in order.
type RecordingNorthbound struct {
	mu            sync.Mutex
	notifications []Notification

	ref *ccref.Ref
}

func (r *RecordingNorthbound) SetControllerRef(ref *ccref.Ref) { r.ref = ref }

func (r *RecordingNorthbound) Run() {}

func (r *RecordingNorthbound) record(kind string, content tsn.NotificationContent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, Notification{Kind: kind, Content: content})
}

// Notifications returns a copy of everything recorded so far.
func (r *RecordingNorthbound) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

func (r *RecordingNorthbound) NotifyComputeStreamsCompleted(content tsn.NotificationContent) {
	r.record("ComputeStreamsCompleted", content)
}

func (r *RecordingNorthbound) NotifyConfigureStreamsCompleted(content tsn.NotificationContent) {
	r.record("ConfigureStreamsCompleted", content)
}

func (r *RecordingNorthbound) NotifyRemoveStreamsCompleted(content tsn.NotificationContent) {
	r.record("RemoveStreamsCompleted", content)
}

func (r *RecordingNorthbound) ComputeStreams(req tsn.ComputationType) northbound.Result {
	h, err := r.ref.Get()
	if err != nil {
		return northbound.Failure(err.Error())
	}
	if s := h.ComputeStreams(req); s != "Success" {
		return northbound.Failure(s)
	}
	return northbound.Success()
}

func (r *RecordingNorthbound) RemoveStreams(cucID tsn.CucID, ids []tsn.StreamID) northbound.Result {
	h, err := r.ref.Get()
	if err != nil {
		return northbound.Failure(err.Error())
	}
	if s := h.RemoveStreams(cucID, ids); s != "Success" {
		return northbound.Failure(s)
	}
	return northbound.Success()
}

func (r *RecordingNorthbound) RequestDomainID(cucID tsn.CucID) northbound.Result {
	h, err := r.ref.Get()
	if err != nil {
		return northbound.Failure(err.Error())
	}
	s := h.RequestDomainID(cucID)
	if s == "Failure" {
		return northbound.Failure("")
	}
	return northbound.ID(s)
}

func (r *RecordingNorthbound) RequestFreeStreamID(domainID tsn.DomainID, cucID tsn.CucID) northbound.Result {
	h, err := r.ref.Get()
	if err != nil {
		return northbound.Failure(err.Error())
	}
	s := h.RequestFreeStreamID(domainID, cucID)
	if s == "no id" {
		return northbound.NoID()
	}
	return northbound.ID(s)
}

func (r *RecordingNorthbound) SetStreams(cucID tsn.CucID, reqs []tsn.StreamRequest) northbound.Result {
	h, err := r.ref.Get()
	if err != nil {
		return northbound.Failure(err.Error())
	}
	if s := h.SetStreams(cucID, reqs); s != "Success" {
		return northbound.Failure(s)
	}
	return northbound.Success()
}

func (r *RecordingNorthbound) GetStreams(cucID tsn.CucID) northbound.Result {
	h, err := r.ref.Get()
	if err != nil {
		return northbound.Failure(err.Error())
	}
	d, err := h.GetStreams(cucID)
	if err != nil {
		return northbound.Failure(err.Error())
	}
	return northbound.DomainResult(d)
}
