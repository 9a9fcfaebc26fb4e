package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

const streamFileYAML = `streams:
  - stream_id: 00-00-00-00-00-01:00-01
    talker:
      stream_rank: 1
      interfaces:
        - mac: 00-00-00-00-01-0A
          name: eth0
      data_frame_spec:
        - vlan_tag:
            vlan_id: 10
            pcp: 5
        - ipv4_tuple:
            source_ip: 10.0.0.1
            dest_ip: 10.0.0.2
            dscp: 46
            protocol: 17
            source_port: 5000
            dest_port: 5001
      traffic_spec:
        interval_numerator: 1
        interval_denominator: 1000
        max_frames_per_interval: 1
        max_frame_size: 128
        time_aware:
          latest_offset: 10000
      requirements:
        max_latency: 100000
      capabilities:
        vlan_tag_capable: true
    listeners:
      - index: 0
        interfaces:
          - mac: 00-00-00-00-01-0B
            name: eth0
        requirements:
          max_latency: 100000
`

func writeStreamFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streams.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadStreamRequests(t *testing.T) {
	reqs, err := loadStreamRequests(writeStreamFile(t, streamFileYAML))
	if err != nil {
		t.Fatalf("loadStreamRequests failed: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(reqs))
	}

	req := reqs[0]
	if req.StreamID != "00-00-00-00-00-01:00-01" {
		t.Errorf("stream id = %s", req.StreamID)
	}
	if len(req.Talker.EndStationInterfaces) != 1 ||
		req.Talker.EndStationInterfaces[0].InterfaceID.MacAddress != "00-00-00-00-01-0A" {
		t.Errorf("talker interfaces = %+v", req.Talker.EndStationInterfaces)
	}

	spec := req.Talker.DataFrameSpecification
	if len(spec) != 2 {
		t.Fatalf("got %d data frame elements, want 2", len(spec))
	}
	vt, ok := spec[0].Field.(tsn.VlanTag)
	if !ok || vt.VlanID != 10 || vt.PriorityCodePoint != 5 {
		t.Errorf("element 0 = %#v", spec[0].Field)
	}
	ip, ok := spec[1].Field.(tsn.IPv4Tuple)
	if !ok || ip.DestPort != 5001 || ip.Protocol != 17 {
		t.Errorf("element 1 = %#v", spec[1].Field)
	}

	ts := req.Talker.TrafficSpecification
	if ts.Interval.Denominator != 1000 || ts.MaxFrameSize != 128 {
		t.Errorf("traffic spec = %+v", ts)
	}
	if ts.TimeAware == nil || ts.TimeAware.LatestTransmitOffset != 10000 {
		t.Errorf("time aware = %+v", ts.TimeAware)
	}

	if len(req.Listeners) != 1 || req.Listeners[0].EndStationInterfaces[0].InterfaceID.MacAddress != "00-00-00-00-01-0B" {
		t.Errorf("listeners = %+v", req.Listeners)
	}
}

func TestLoadStreamRequestsRejectsAmbiguousVariant(t *testing.T) {
	const bad = `streams:
  - stream_id: 00-00-00-00-00-01:00-01
    talker:
      data_frame_spec:
        - vlan_tag:
            vlan_id: 10
          ipv4_tuple:
            source_ip: 10.0.0.1
`
	if _, err := loadStreamRequests(writeStreamFile(t, bad)); err == nil {
		t.Error("element with two variants accepted")
	}
}

func TestLoadStreamRequestsRejectsEmptyVariant(t *testing.T) {
	const bad = `streams:
  - stream_id: 00-00-00-00-00-01:00-01
    talker:
      data_frame_spec:
        - {}
`
	if _, err := loadStreamRequests(writeStreamFile(t, bad)); err == nil {
		t.Error("element with no variant accepted")
	}
}
