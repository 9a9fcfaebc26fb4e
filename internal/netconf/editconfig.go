package netconf

import (
	"fmt"
	"strings"

	"github.com/ieee8021/tsn-cnc/pkg/sched"
)

// EditPort pulls the current gate-parameters subtree from candidate,
// then materializes port.Config into it via <edit-config>. A failure of
// the initial read aborts the edit: a bridge that cannot serve its own
// candidate config will not accept an edit either.
func (s *Session) EditPort(port sched.PortConfiguration) error {
	if _, err := s.GetConfig("candidate", InterfaceFilter); err != nil {
		return err
	}
	editXML := BuildGateParametersEdit(port)
	return s.EditConfig(editXML)
}

// BuildGateParametersEdit renders the <interfaces> edit-config payload
// for one port's gate-parameters subtree. Every element tag below the
// interface wrapper comes from GateParameterPaths, so retargeting a
// bridge whose YANG revision renames a node means swapping that map,
// not editing this function. An empty AdminControlList removes the
// admin-control-list subtree entirely (nc:operation="delete").
func BuildGateParametersEdit(port sched.PortConfiguration) string {
	var b strings.Builder
	b.WriteString(`<interfaces xmlns="urn:ietf:params:xml:ns:yang:ietf-interfaces" xmlns:nc="urn:ietf:params:xml:ns:netconf:base:1.0">`)
	fmt.Fprintf(&b, `<interface><name>%s</name>`, xmlEscape(port.Name))
	fmt.Fprintf(&b, `<%s xmlns="urn:ieee:std:802.1Q:yang:ieee802-dot1q-sched">`, leafName("GateParameters"))

	writeLeaf(&b, leafName("GateEnabled"), "%t", port.Config.GateEnable)
	writeLeaf(&b, leafName("AdminGateStates"), "%d", port.Config.AdminGateStates)

	listEl := segmentName("AdminControlListOperation", 0)
	if len(port.Config.AdminControlList) == 0 {
		fmt.Fprintf(&b, `<%s nc:operation="delete"/>`, listEl)
	} else {
		indexEl := predicateKey("AdminControlListOperation", 0)
		sgsEl := segmentName("AdminControlListGateStates", 1)
		for i, entry := range port.Config.AdminControlList {
			fmt.Fprintf(&b, `<%s>`, listEl)
			writeLeaf(&b, indexEl, "%d", i)
			writeLeaf(&b, leafName("AdminControlListOperation"), "%s", entry.Operation)
			fmt.Fprintf(&b, `<%s>`, sgsEl)
			writeLeaf(&b, leafName("AdminControlListGateStates"), "%d", entry.GateStatesValue)
			writeLeaf(&b, leafName("AdminControlListTimeInterval"), "%d", entry.TimeIntervalNS)
			fmt.Fprintf(&b, `</%s></%s>`, sgsEl, listEl)
		}
	}
	writeLeaf(&b, leafName("AdminControlListLength"), "%d", len(port.Config.AdminControlList))

	cycleEl := segmentName("AdminCycleTimeNumerator", 0)
	fmt.Fprintf(&b, `<%s>`, cycleEl)
	writeLeaf(&b, leafName("AdminCycleTimeNumerator"), "%d", port.Config.AdminCycleTime.Numerator)
	writeLeaf(&b, leafName("AdminCycleTimeDenominator"), "%d", port.Config.AdminCycleTime.Denominator)
	fmt.Fprintf(&b, `</%s>`, cycleEl)

	baseEl := segmentName("AdminBaseTimeSeconds", 0)
	fmt.Fprintf(&b, `<%s>`, baseEl)
	writeLeaf(&b, leafName("AdminBaseTimeSeconds"), "%d", port.Config.AdminBaseTime.Seconds)
	writeLeaf(&b, leafName("AdminBaseTimeFractional"), "%d", port.Config.AdminBaseTime.FractionalSeconds)
	fmt.Fprintf(&b, `</%s>`, baseEl)

	writeLeaf(&b, leafName("AdminCycleTimeExtension"), "%d", port.Config.AdminCycleTimeExtension)
	writeLeaf(&b, leafName("ConfigChange"), "%t", port.Config.ConfigChange)

	fmt.Fprintf(&b, `</%s></interface></interfaces>`, leafName("GateParameters"))
	return b.String()
}

// writeLeaf renders one <tag>value</tag> leaf with the value formatted
// per format.
func writeLeaf(b *strings.Builder, tag, format string, value interface{}) {
	fmt.Fprintf(b, "<%s>"+format+"</%s>", tag, value, tag)
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
