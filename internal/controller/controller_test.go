package controller

import (
	"testing"
	"time"

	"github.com/ieee8021/tsn-cnc/internal/scheduler"
	"github.com/ieee8021/tsn-cnc/internal/southbound"
	"github.com/ieee8021/tsn-cnc/internal/storage/filestore"
	"github.com/ieee8021/tsn-cnc/internal/testutil"
	topoadapter "github.com/ieee8021/tsn-cnc/internal/topology"
	"github.com/ieee8021/tsn-cnc/pkg/sched"
	"github.com/ieee8021/tsn-cnc/pkg/topology"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

type harness struct {
	c     *Controller
	north *testutil.RecordingNorthbound
	store *filestore.FileStore
	south *southbound.MockAdapter
	sched *scheduler.MockScheduler
}

// annotatingScheduler echoes back its input domains with every talker
// and listener annotated, and a config per fixture bridge port.
func annotatingScheduler(failed []sched.FailedStream) *scheduler.MockScheduler {
	return &scheduler.MockScheduler{
		ComputeFunc: func(topo *topology.Topology, domains []*tsn.Domain) (sched.ComputationResult, error) {
			out := make([]*tsn.Domain, len(domains))
			var affected []tsn.StreamID
			for i, d := range domains {
				nd := d.Clone()
				out[i] = nd
				for _, cuc := range nd.Cucs {
					for _, s := range cuc.Streams {
						affected = append(affected, s.StreamID)
						s.Talker.GroupStatusTalkerListener.AccumulatedLatency = 50000
						s.Talker.GroupStatusTalkerListener.InterfaceConfiguration.InterfaceList = []tsn.InterfaceListElement{{
							GroupInterfaceID: s.Talker.GroupTalker.EndStationInterfaces[0].InterfaceID,
							ConfigList: []tsn.ConfigListElement{
								{Index: 0, ConfigValue: tsn.VlanTag{VlanID: 10, PriorityCodePoint: 5}},
							},
						}}
						for li := range s.Listeners {
							s.Listeners[li].GroupStatusTalkerListener = s.Talker.GroupStatusTalkerListener
						}
					}
				}
			}
			// One config per bridge; every stream traverses both hops.
			var configs []sched.Config
			for _, nodeID := range []tsn.NodeID{1, 2} {
				configs = append(configs, sched.Config{
					NodeID: nodeID,
					Port: sched.PortConfiguration{
						Name: "sw0p2",
						Config: sched.GateParameterTable{
							GateEnable:      true,
							AdminGateStates: 255,
							AdminControlList: []sched.GateControlEntry{{
								Operation: sched.OperationSetGateStates, TimeIntervalNS: 320000, GateStatesValue: 255,
							}},
							AdminCycleTime: sched.Rational{Numerator: 320000, Denominator: 1000000000},
							ConfigChange:   true,
						},
					},
					AffectedStreams: affected,
				})
			}
			return sched.ComputationResult{
				Schedule:      sched.Schedule{Configs: configs},
				Domains:       out,
				FailedStreams: failed,
			}, nil
		},
	}
}

func newHarness(t *testing.T, schedAdapter *scheduler.MockScheduler, south *southbound.MockAdapter) *harness {
	t.Helper()
	h := &harness{
		north: &testutil.RecordingNorthbound{},
		store: filestore.New(t.TempDir()),
		south: south,
		sched: schedAdapter,
	}
	h.c = New(testutil.DomainID, 4, h.north, h.south, h.store,
		&topoadapter.MockAdapter{Snapshot: testutil.TwoBridgeTopology()}, h.sched)
	if err := h.c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() {
		h.c.Stop()
		h.c.Wait()
	})
	return h
}

func (h *harness) insertFixtures(t *testing.T) {
	t.Helper()
	reqs := make([]tsn.StreamRequest, 0, 3)
	for _, id := range testutil.StreamIDs() {
		reqs = append(reqs, testutil.NewStreamRequest(id))
	}
	if res := h.north.SetStreams(testutil.CucID, reqs); res.String() != "Success" {
		t.Fatalf("SetStreams = %s", res)
	}
}

func (h *harness) computeAll(t *testing.T) {
	t.Helper()
	res := h.north.ComputeStreams(tsn.ComputationType{
		Kind: tsn.ComputationAll,
		Domains: []tsn.RequestDomain{{
			DomainID: testutil.DomainID,
			Cucs:     []tsn.RequestCuc{{CucID: testutil.CucID}},
		}},
	})
	if res.String() != "Success" {
		t.Fatalf("ComputeStreams = %s", res)
	}
}

// waitNotifications blocks until n notifications have been recorded.
func (h *harness) waitNotifications(t *testing.T, n int) []testutil.Notification {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if got := h.north.Notifications(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d notifications (have %d)", n, len(h.north.Notifications()))
	return nil
}

func notificationStreams(t *testing.T, n testutil.Notification) map[tsn.StreamID]uint8 {
	t.Helper()
	out := map[tsn.StreamID]uint8{}
	for _, d := range n.Content {
		for _, c := range d.Cucs {
			for _, s := range c.Streams {
				out[s.StreamID] = s.FailureCode
			}
		}
	}
	return out
}

func TestComputeAllSuccess(t *testing.T) {
	h := newHarness(t, annotatingScheduler(nil), &southbound.MockAdapter{})
	h.insertFixtures(t)
	h.computeAll(t)

	notifs := h.waitNotifications(t, 2)
	if notifs[0].Kind != "ComputeStreamsCompleted" || notifs[1].Kind != "ConfigureStreamsCompleted" {
		t.Fatalf("notification order = %s, %s", notifs[0].Kind, notifs[1].Kind)
	}
	for _, n := range notifs {
		streams := notificationStreams(t, n)
		if len(streams) != 3 {
			t.Errorf("%s covers %d streams, want 3", n.Kind, len(streams))
		}
		for id, code := range streams {
			if code != 0 {
				t.Errorf("%s: stream %s failure_code = %d, want 0", n.Kind, id, code)
			}
		}
	}

	res := h.north.GetStreams(testutil.CucID)
	for _, cuc := range res.Domain.Cucs {
		for _, s := range cuc.Streams {
			if s.Status != tsn.StreamStatusConfigured {
				t.Errorf("stream %s status = %s, want Configured", s.StreamID, s.Status)
			}
			if s.Talker.GroupStatusTalkerListener.AccumulatedLatency == 0 {
				t.Errorf("stream %s talker latency not annotated", s.StreamID)
			}
			for _, l := range s.Listeners {
				if l.GroupStatusTalkerListener.AccumulatedLatency == 0 {
					t.Errorf("stream %s listener latency not annotated", s.StreamID)
				}
			}
		}
	}
}

func TestComputePartialConfigureFailure(t *testing.T) {
	// Bridge 2 is unreachable: its config fails, and because every
	// stream traverses both bridges, nothing may end up Configured.
	south := &southbound.MockAdapter{
		ConfigureNetworkFunc: func(topo *topology.Topology, schedule sched.Schedule) (sched.FailedInterfaces, error) {
			var failed []sched.FailedInterface
			for _, cfg := range schedule.Configs {
				if cfg.NodeID != 2 {
					continue
				}
				set := make(map[tsn.StreamID]struct{})
				for _, id := range cfg.AffectedStreams {
					set[id] = struct{}{}
				}
				failed = append(failed, sched.FailedInterface{
					NodeID:          cfg.NodeID,
					Interface:       tsn.GroupInterfaceID{InterfaceName: cfg.Port.Name},
					AffectedStreams: set,
				})
			}
			return sched.FailedInterfaces{Interfaces: failed}, nil
		},
	}
	h := newHarness(t, annotatingScheduler(nil), south)
	h.insertFixtures(t)
	h.computeAll(t)

	notifs := h.waitNotifications(t, 2)
	compute := notificationStreams(t, notifs[0])
	for id, code := range compute {
		if code != 0 {
			t.Errorf("compute notification: stream %s failure_code = %d, want 0", id, code)
		}
	}
	configure := notificationStreams(t, notifs[1])
	if len(configure) != 3 {
		t.Fatalf("configure notification covers %d streams, want 3", len(configure))
	}
	for id, code := range configure {
		if code != 1 {
			t.Errorf("configure notification: stream %s failure_code = %d, want 1", id, code)
		}
	}

	res := h.north.GetStreams(testutil.CucID)
	for _, cuc := range res.Domain.Cucs {
		for _, s := range cuc.Streams {
			if s.Status != tsn.StreamStatusModified {
				t.Errorf("stream %s status = %s, want Modified", s.StreamID, s.Status)
			}
		}
	}
}

func TestComputeSchedulerRejectsStream(t *testing.T) {
	failed := []sched.FailedStream{{
		StreamID: testutil.StreamID3,
		CucID:    testutil.CucID,
		DomainID: testutil.DomainID,
	}}
	h := newHarness(t, annotatingScheduler(failed), &southbound.MockAdapter{})
	h.insertFixtures(t)
	h.computeAll(t)

	notifs := h.waitNotifications(t, 2)
	compute := notificationStreams(t, notifs[0])
	if compute[testutil.StreamID3] != 1 {
		t.Errorf("rejected stream failure_code = %d, want 1", compute[testutil.StreamID3])
	}
	if compute[testutil.StreamID1] != 0 || compute[testutil.StreamID2] != 0 {
		t.Error("placeable streams marked failed in compute notification")
	}
}

func TestNotificationsSentOncePerRequest(t *testing.T) {
	h := newHarness(t, annotatingScheduler(nil), &southbound.MockAdapter{})
	h.insertFixtures(t)
	h.computeAll(t)
	h.computeAll(t)

	notifs := h.waitNotifications(t, 4)
	if len(notifs) != 4 {
		t.Fatalf("got %d notifications, want 4 (two per request)", len(notifs))
	}
	wantKinds := []string{
		"ComputeStreamsCompleted", "ConfigureStreamsCompleted",
		"ComputeStreamsCompleted", "ConfigureStreamsCompleted",
	}
	for i, n := range notifs {
		if n.Kind != wantKinds[i] {
			t.Errorf("notification %d = %s, want %s", i, n.Kind, wantKinds[i])
		}
	}
}

func TestRemoveStreams(t *testing.T) {
	h := newHarness(t, annotatingScheduler(nil), &southbound.MockAdapter{})
	h.insertFixtures(t)

	res := h.north.RemoveStreams(testutil.CucID, []tsn.StreamID{testutil.StreamID1})
	if res.String() != "Success" {
		t.Fatalf("RemoveStreams = %s", res)
	}

	got := h.north.GetStreams(testutil.CucID)
	streams := got.Domain.Cucs[0].Streams
	if len(streams) != 2 {
		t.Fatalf("got %d streams, want 2", len(streams))
	}
	for _, s := range streams {
		if s.StreamID == testutil.StreamID1 {
			t.Error("removed stream still present")
		}
	}

	// Removal of an unknown stream still succeeds.
	res = h.north.RemoveStreams(testutil.CucID, []tsn.StreamID{"00-00-00-00-00-09:09-09"})
	if res.String() != "Success" {
		t.Errorf("idempotent remove = %s, want Success", res)
	}

	notifs := h.north.Notifications()
	removes := 0
	for _, n := range notifs {
		if n.Kind == "RemoveStreamsCompleted" {
			removes++
		}
	}
	if removes != 2 {
		t.Errorf("got %d remove notifications, want 2", removes)
	}
}

func TestRequestDomainID(t *testing.T) {
	h := newHarness(t, annotatingScheduler(nil), &southbound.MockAdapter{})

	if res := h.north.RequestDomainID(testutil.CucID); res.String() != "Failure" {
		t.Errorf("unknown cuc = %s, want Failure", res)
	}

	h.insertFixtures(t)
	if res := h.north.RequestDomainID(testutil.CucID); res.String() != string(testutil.DomainID) {
		t.Errorf("domain id = %s, want %s", res, testutil.DomainID)
	}
}

func TestRequestFreeStreamID(t *testing.T) {
	h := newHarness(t, annotatingScheduler(nil), &southbound.MockAdapter{})
	h.insertFixtures(t)

	res := h.north.RequestFreeStreamID(testutil.DomainID, testutil.CucID)
	id := tsn.StreamID(res.String())
	if !id.Valid() {
		t.Fatalf("free id %q malformed", id)
	}
	for _, existing := range testutil.StreamIDs() {
		if id == existing {
			t.Errorf("free id %q already in use", id)
		}
	}
}

func TestSetStreamsRejectsMalformedID(t *testing.T) {
	h := newHarness(t, annotatingScheduler(nil), &southbound.MockAdapter{})
	req := testutil.NewStreamRequest("not-a-stream-id")
	if res := h.north.SetStreams(testutil.CucID, []tsn.StreamRequest{req}); res.String() != "Failure" {
		t.Errorf("malformed id accepted: %s", res)
	}
}

func TestStoppedControllerRejectsCalls(t *testing.T) {
	h := newHarness(t, annotatingScheduler(nil), &southbound.MockAdapter{})
	h.insertFixtures(t)
	h.c.Stop()
	h.c.Wait()

	if res := h.north.SetStreams(testutil.CucID, []tsn.StreamRequest{testutil.NewStreamRequest(testutil.StreamID1)}); res.String() == "Success" {
		t.Error("stopped controller accepted set_streams")
	}
}

func TestTopologyChangeIsAcceptedAndIgnored(t *testing.T) {
	topo := &topoadapter.MockAdapter{Snapshot: testutil.TwoBridgeTopology()}
	north := &testutil.RecordingNorthbound{}
	c := New(testutil.DomainID, 4, north, &southbound.MockAdapter{},
		filestore.New(t.TempDir()), topo, annotatingScheduler(nil))
	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		c.Stop()
		c.Wait()
	}()

	if err := topo.NotifyChange(); err != nil {
		t.Fatalf("topology change rejected: %v", err)
	}
	if got := north.Notifications(); len(got) != 0 {
		t.Errorf("topology change triggered %d notifications, want 0", len(got))
	}
}
