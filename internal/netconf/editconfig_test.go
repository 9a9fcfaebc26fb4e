package netconf

import (
	"strings"
	"testing"

	"github.com/ieee8021/tsn-cnc/pkg/sched"
)

func gateFixture() sched.PortConfiguration {
	return sched.PortConfiguration{
		Name:       "sw0p2",
		MacAddress: "00-00-00-00-00-12",
		Config: sched.GateParameterTable{
			GateEnable:      true,
			AdminGateStates: 255,
			AdminControlList: []sched.GateControlEntry{{
				Operation:       sched.OperationSetGateStates,
				TimeIntervalNS:  320000,
				GateStatesValue: 255,
			}},
			AdminCycleTime:          sched.Rational{Numerator: 320000, Denominator: 1000000000},
			AdminBaseTime:           sched.BaseTime{Seconds: 0, FractionalSeconds: 0},
			AdminCycleTimeExtension: 0,
			ConfigChange:            true,
		},
	}
}

// requireText asserts a single element at path whose text is want.
func requireText(t *testing.T, root *Node, path, want string) {
	t.Helper()
	matches := FindAll(root, path)
	if len(matches) != 1 {
		t.Fatalf("path %s: got %d matches, want 1", path, len(matches))
	}
	if got := matches[0].Text(); got != want {
		t.Errorf("path %s = %q, want %q", path, got, want)
	}
}

func TestBuildGateParametersEdit(t *testing.T) {
	xml := BuildGateParametersEdit(gateFixture())
	root, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("produced payload does not parse: %v", err)
	}

	base := "interface[name='sw0p2']/gate-parameters"
	requireText(t, root, base+"/gate-enabled", "true")
	requireText(t, root, base+"/admin-gate-states", "255")
	requireText(t, root, base+"/admin-control-list[index=0]/operation-name", "set-gate-states")
	requireText(t, root, base+"/admin-control-list[index=0]/sgs-params/gate-states-value", "255")
	requireText(t, root, base+"/admin-control-list[index=0]/sgs-params/time-interval-value", "320000")
	requireText(t, root, base+"/admin-control-list-length", "1")
	requireText(t, root, base+"/admin-cycle-time/numerator", "320000")
	requireText(t, root, base+"/admin-cycle-time/denominator", "1000000000")
	requireText(t, root, base+"/admin-base-time/seconds", "0")
	requireText(t, root, base+"/admin-base-time/fractional-seconds", "0")
	requireText(t, root, base+"/admin-cycle-time-extension", "0")
	requireText(t, root, base+"/config-change", "true")
}

func TestBuildGateParametersEditEmptyListDeletes(t *testing.T) {
	port := gateFixture()
	port.Config.AdminControlList = nil
	xml := BuildGateParametersEdit(port)

	root, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("produced payload does not parse: %v", err)
	}
	matches := FindAll(root, "interface/gate-parameters/admin-control-list")
	if len(matches) != 1 {
		t.Fatalf("got %d admin-control-list elements, want 1 (the delete marker)", len(matches))
	}
	if op := matches[0].Attr("operation"); op != "delete" {
		t.Errorf("admin-control-list operation = %q, want delete", op)
	}
	if len(matches[0].Children) != 0 {
		t.Error("delete marker should carry no entries")
	}
	requireText(t, root, "interface/gate-parameters/admin-control-list-length", "0")
}

func TestBuildGateParametersEditMultipleEntries(t *testing.T) {
	port := gateFixture()
	port.Config.AdminControlList = append(port.Config.AdminControlList, sched.GateControlEntry{
		Operation:       sched.OperationSetAndHoldMAC,
		TimeIntervalNS:  80000,
		GateStatesValue: 1,
	})
	xml := BuildGateParametersEdit(port)
	root, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("produced payload does not parse: %v", err)
	}

	base := "interface/gate-parameters"
	requireText(t, root, base+"/admin-control-list-length", "2")
	requireText(t, root, base+"/admin-control-list[index=1]/operation-name", "set-and-hold-mac")
	requireText(t, root, base+"/admin-control-list[index=1]/sgs-params/time-interval-value", "80000")
}

func TestBuildGateParametersEditTagsComeFromPathTable(t *testing.T) {
	orig := GateParameterPaths["GateEnabled"]
	GateParameterPaths["GateEnabled"] = "gate-enabled-v2"
	defer func() { GateParameterPaths["GateEnabled"] = orig }()

	xml := BuildGateParametersEdit(gateFixture())
	root, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("produced payload does not parse: %v", err)
	}
	requireText(t, root, "interface/gate-parameters/gate-enabled-v2", "true")
	if got := FindAll(root, "interface/gate-parameters/gate-enabled"); got != nil {
		t.Error("old tag still emitted after swapping the path table")
	}
}

func TestBuildGateParametersEditEscapesName(t *testing.T) {
	port := gateFixture()
	port.Name = `sw<&>"0`
	xml := BuildGateParametersEdit(port)
	if strings.Contains(xml, "<name>sw<") {
		t.Error("interface name not escaped")
	}
	if _, err := Parse([]byte(xml)); err != nil {
		t.Fatalf("escaped payload does not parse: %v", err)
	}
}
