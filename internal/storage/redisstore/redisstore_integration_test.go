//go:build integration

package redisstore

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"

	"github.com/ieee8021/tsn-cnc/internal/testutil"
	"github.com/ieee8021/tsn-cnc/pkg/sched"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// newTestStore connects to the Redis named by CNC_TEST_REDIS_ADDR,
// flushing the test database first. Skips when no Redis is available.
func newTestStore(t *testing.T) *RedisStore {
	t.Helper()

	addr := os.Getenv("CNC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CNC_TEST_REDIS_ADDR not set: no test Redis available")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 9})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("test Redis at %s not reachable: %v", addr, err)
	}
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flushing test database: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	rs := New(client)
	if err := rs.Configure(testutil.DomainID); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	return rs
}

func TestRedisInsertSelectRemove(t *testing.T) {
	rs := newTestStore(t)

	streams := make([]*tsn.Stream, 0, 3)
	for _, id := range testutil.StreamIDs() {
		streams = append(streams, testutil.NewStream(id))
	}
	if err := rs.SetStreams(testutil.CucID, streams); err != nil {
		t.Fatalf("SetStreams failed: %v", err)
	}

	domains, err := rs.Select([]tsn.RequestDomain{{
		DomainID: testutil.DomainID,
		Cucs:     []tsn.RequestCuc{{CucID: testutil.CucID}},
	}}, false)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got := len(domains[0].Cucs[0].Streams); got != 3 {
		t.Fatalf("got %d streams, want 3", got)
	}
	for _, s := range domains[0].Cucs[0].Streams {
		if s.Status != tsn.StreamStatusPlanned {
			t.Errorf("stream %s status = %s, want Planned", s.StreamID, s.Status)
		}
	}

	if err := rs.RemoveStream(testutil.CucID, testutil.StreamID1); err != nil {
		t.Fatalf("RemoveStream failed: %v", err)
	}
	domains, _ = rs.Select([]tsn.RequestDomain{{
		DomainID: testutil.DomainID,
		Cucs:     []tsn.RequestCuc{{CucID: testutil.CucID}},
	}}, false)
	if got := len(domains[0].Cucs[0].Streams); got != 2 {
		t.Errorf("got %d streams after remove, want 2", got)
	}
}

func TestRedisConfigRoundTrip(t *testing.T) {
	rs := newTestStore(t)

	cfg := sched.Config{
		NodeID: 1,
		Port: sched.PortConfiguration{
			Name:       "sw0p1",
			MacAddress: "00-00-00-00-00-11",
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
		AffectedStreams: []tsn.StreamID{testutil.StreamID1},
	}
	if err := rs.PutConfigs([]sched.Config{cfg}); err != nil {
		t.Fatalf("PutConfigs failed: %v", err)
	}

	got, err := rs.GetConfig(1)
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if got.Port.Name != "sw0p1" || len(got.Port.Config.AdminControlList) != 1 ||
		got.Port.Config.AdminControlList[0].TimeIntervalNS != 320000 {
		t.Errorf("config did not round-trip: %+v", got)
	}

	all, err := rs.GetAllConfigs()
	if err != nil {
		t.Fatalf("GetAllConfigs failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("got %d configs, want 1", len(all))
	}
}

func TestRedisGetDomainOfCucAndFreeID(t *testing.T) {
	rs := newTestStore(t)

	if _, err := rs.GetDomainOfCuc(testutil.CucID); err == nil {
		t.Error("unknown cuc resolved")
	}

	if err := rs.SetStream(testutil.CucID, testutil.NewStream(testutil.StreamID1)); err != nil {
		t.Fatalf("SetStream failed: %v", err)
	}
	id, err := rs.GetDomainOfCuc(testutil.CucID)
	if err != nil {
		t.Fatalf("GetDomainOfCuc failed: %v", err)
	}
	if id != testutil.DomainID {
		t.Errorf("domain = %s, want %s", id, testutil.DomainID)
	}

	free, err := rs.GetFreeStreamID()
	if err != nil {
		t.Fatalf("GetFreeStreamID failed: %v", err)
	}
	if !free.Valid() || free == testutil.StreamID1 {
		t.Errorf("free id %q invalid or colliding", free)
	}
}
