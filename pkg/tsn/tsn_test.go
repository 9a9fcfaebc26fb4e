package tsn

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestStreamIDValid(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"00-00-00-00-00-01:00-01", true},
		{"AB-CD-EF-01-23-45:FF-00", true},
		{"ab-cd-ef-01-23-45:ff-00", false}, // lower hex
		{"00-00-00-00-00-01:00", false},    // short unique id
		{"00-00-00-00-01:00-01", false},    // short mac
		{"00-00-00-00-00-01-00-01", false}, // missing colon
		{"", false},
	}
	for _, tt := range tests {
		if got := StreamID(tt.id).Valid(); got != tt.valid {
			t.Errorf("StreamID(%q).Valid() = %v, want %v", tt.id, got, tt.valid)
		}
	}
}

func TestNodeIDIsBridge(t *testing.T) {
	if !NodeID(0).IsBridge() || !NodeID(9).IsBridge() {
		t.Error("ids below 10 should be bridges")
	}
	if NodeID(10).IsBridge() || NodeID(100).IsBridge() {
		t.Error("ids 10 and above should be end stations")
	}
}

func sampleStream() *Stream {
	return &Stream{
		StreamID: "00-00-00-00-00-01:00-01",
		Status:   StreamStatusPlanned,
		Talker: Talker{
			GroupTalker: GroupTalker{
				StreamRank: 1,
				EndStationInterfaces: []EndStationInterface{{
					Index:       0,
					InterfaceID: GroupInterfaceID{InterfaceName: "eth0", MacAddress: "00-00-00-00-01-0A"},
				}},
				DataFrameSpecification: []DataFrameSpecificationElement{
					{Index: 0, Field: VlanTag{VlanID: 10, PriorityCodePoint: 5}},
					{Index: 1, Field: MacAddresses{DestMAC: "FF-FF-FF-FF-FF-FF", SrcMAC: "00-00-00-00-01-0A"}},
					{Index: 2, Field: IPv4Tuple{SourceIP: "10.0.0.1", DestIP: "10.0.0.2", Protocol: 17, SourcePort: 1000, DestPort: 1001}},
					{Index: 3, Field: IPv6Tuple{SourceIP: "fd00::1", DestIP: "fd00::2", Protocol: 17}},
				},
				TrafficSpecification: TrafficSpecificationContainer{
					Interval:  TrafficSpecificationInterval{Numerator: 1, Denominator: 1000},
					TimeAware: &TimeAwareContainer{LatestTransmitOffset: 500},
				},
			},
			GroupStatusTalkerListener: GroupStatusTalkerListener{
				AccumulatedLatency: 50000,
				InterfaceConfiguration: InterfaceConfiguration{
					InterfaceList: []InterfaceListElement{{
						GroupInterfaceID: GroupInterfaceID{InterfaceName: "eth0", MacAddress: "00-00-00-00-01-0A"},
						ConfigList: []ConfigListElement{
							{Index: 0, ConfigValue: VlanTag{VlanID: 10, PriorityCodePoint: 5}},
							{Index: 1, ConfigValue: TimeAwareOffset(12345)},
						},
					}},
				},
			},
		},
		Listeners: []Listener{{
			Index: 0,
			GroupListener: GroupListener{
				Index: 0,
				EndStationInterfaces: []EndStationInterface{{
					InterfaceID: GroupInterfaceID{InterfaceName: "eth0", MacAddress: "00-00-00-00-01-0B"},
				}},
			},
		}},
	}
}

func TestStreamCloneIsDeep(t *testing.T) {
	orig := sampleStream()
	clone := orig.Clone()

	if !reflect.DeepEqual(orig, clone) {
		t.Fatal("clone differs from original")
	}

	clone.Talker.GroupTalker.EndStationInterfaces[0].InterfaceID.InterfaceName = "eth9"
	clone.Talker.GroupStatusTalkerListener.InterfaceConfiguration.InterfaceList[0].ConfigList[0] = ConfigListElement{Index: 99}
	clone.Listeners[0].GroupListener.EndStationInterfaces[0].InterfaceID.MacAddress = "FF-FF-FF-FF-FF-FF"

	if orig.Talker.GroupTalker.EndStationInterfaces[0].InterfaceID.InterfaceName != "eth0" {
		t.Error("mutating clone's talker interfaces leaked into original")
	}
	if orig.Talker.GroupStatusTalkerListener.InterfaceConfiguration.InterfaceList[0].ConfigList[0].Index != 0 {
		t.Error("mutating clone's config list leaked into original")
	}
	if orig.Listeners[0].GroupListener.EndStationInterfaces[0].InterfaceID.MacAddress != "00-00-00-00-01-0B" {
		t.Error("mutating clone's listener interfaces leaked into original")
	}
}

func TestStreamJSONRoundTrip(t *testing.T) {
	orig := sampleStream()

	first, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Stream
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(orig, &decoded) {
		t.Fatalf("decoded stream differs from original:\n got %+v\nwant %+v", &decoded, orig)
	}

	second, err := json.Marshal(&decoded)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("re-encoded payload differs:\n first %s\nsecond %s", first, second)
	}
}

func TestDataFrameFieldVariantsSurviveDecode(t *testing.T) {
	orig := sampleStream()
	data, _ := json.Marshal(orig)
	var decoded Stream
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	spec := decoded.Talker.GroupTalker.DataFrameSpecification
	if _, ok := spec[0].Field.(VlanTag); !ok {
		t.Errorf("element 0: got %T, want VlanTag", spec[0].Field)
	}
	if _, ok := spec[1].Field.(MacAddresses); !ok {
		t.Errorf("element 1: got %T, want MacAddresses", spec[1].Field)
	}
	if _, ok := spec[2].Field.(IPv4Tuple); !ok {
		t.Errorf("element 2: got %T, want IPv4Tuple", spec[2].Field)
	}
	if _, ok := spec[3].Field.(IPv6Tuple); !ok {
		t.Errorf("element 3: got %T, want IPv6Tuple", spec[3].Field)
	}

	cl := decoded.Talker.GroupStatusTalkerListener.InterfaceConfiguration.InterfaceList[0].ConfigList
	if v, ok := cl[1].ConfigValue.(TimeAwareOffset); !ok || uint32(v) != 12345 {
		t.Errorf("config element 1: got %T (%v), want TimeAwareOffset(12345)", cl[1].ConfigValue, cl[1].ConfigValue)
	}
}

func TestDomainEnsureCuc(t *testing.T) {
	d := &Domain{DomainID: "test-domain-id", CNCEnabled: true}
	c1 := d.EnsureCuc("test-cuc-id")
	c2 := d.EnsureCuc("test-cuc-id")
	if c1 != c2 {
		t.Error("EnsureCuc created a duplicate CUC")
	}
	if len(d.Cucs) != 1 {
		t.Errorf("got %d cucs, want 1", len(d.Cucs))
	}
}

func TestStreamStatusStrings(t *testing.T) {
	if StreamStatusPlanned.String() != "Planned" ||
		StreamStatusConfigured.String() != "Configured" ||
		StreamStatusModified.String() != "Modified" {
		t.Error("unexpected status strings")
	}
}
