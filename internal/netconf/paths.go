package netconf

import "strings"

// GateParameterPaths centralizes the XPaths EditPort materializes
// under /interfaces/interface[name='<port>']/gate-parameters, keyed by
// a symbolic name rather than hard-coded inline. BuildGateParametersEdit
// derives its element tags from these paths, so a different target
// bridge's YANG revision is supported by swapping this one map.
var GateParameterPaths = map[string]string{
	"GateParameters":               "gate-parameters",
	"GateEnabled":                  "gate-enabled",
	"AdminGateStates":              "admin-gate-states",
	"AdminControlListOperation":    "admin-control-list[index=%d]/operation-name",
	"AdminControlListGateStates":   "admin-control-list[index=%d]/sgs-params/gate-states-value",
	"AdminControlListTimeInterval": "admin-control-list[index=%d]/sgs-params/time-interval-value",
	"AdminControlListLength":       "admin-control-list-length",
	"AdminCycleTimeNumerator":      "admin-cycle-time/numerator",
	"AdminCycleTimeDenominator":    "admin-cycle-time/denominator",
	"AdminBaseTimeSeconds":         "admin-base-time/seconds",
	"AdminBaseTimeFractional":      "admin-base-time/fractional-seconds",
	"AdminCycleTimeExtension":      "admin-cycle-time-extension",
	"ConfigChange":                 "config-change",
}

// pathNames returns the element names along the XPath registered for
// key, predicates stripped. Unknown keys return an empty slice, which
// surfaces as an empty tag in the produced payload rather than a panic.
func pathNames(key string) []string {
	segs := parsePath(GateParameterPaths[key])
	names := make([]string, 0, len(segs))
	for _, s := range segs {
		names = append(names, s.name)
	}
	return names
}

// leafName returns the final element name of the XPath registered for key.
func leafName(key string) string {
	names := pathNames(key)
	if len(names) == 0 {
		return ""
	}
	return names[len(names)-1]
}

// segmentName returns element name i of the XPath registered for key.
func segmentName(key string, i int) string {
	names := pathNames(key)
	if i < 0 || i >= len(names) {
		return ""
	}
	return names[i]
}

// predicateKey returns the bracketed predicate's key name on segment i
// of the XPath registered for key, e.g. "index" for
// "admin-control-list[index=%d]/...".
func predicateKey(key string, i int) string {
	segs := parsePath(GateParameterPaths[key])
	if i < 0 || i >= len(segs) || len(segs[i].predicates) == 0 {
		return ""
	}
	return segs[i].predicates[0][0]
}

// InterfaceFilter is the <get-config>/<get> subtree filter used to pull
// the current gate-parameters subtree for one port before editing it.
const InterfaceFilter = `
<filter type="subtree">
  <interfaces xmlns="urn:ietf:params:xml:ns:yang:ietf-interfaces">
    <interface>
      <gate-parameters xmlns="urn:ieee:std:802.1Q:yang:ieee802-dot1q-sched"/>
    </interface>
  </interfaces>
</filter>`

// AllInterfacesFilter pulls the full /interfaces/interface subtree, used
// by retrieve_station_capabilities.
const AllInterfacesFilter = `
<filter type="subtree">
  <interfaces xmlns="urn:ietf:params:xml:ns:yang:ietf-interfaces"/>
</filter>`

// LLDPFilter pulls /lldp/port/remote-systems-data, used by retrieve_lldp.
const LLDPFilter = `
<filter type="subtree">
  <lldp xmlns="urn:ieee:std:802.1AB:yang:ieee802-dot1ab-lldp">
    <port>
      <remote-systems-data/>
    </port>
  </lldp>
</filter>`

// YANGModules is the module set required of the reference bridge. The
// hello exchange checks each bridge's advertised capabilities against
// it and warns about gaps; a target bridge with a different revision
// substitutes its own set here and in GateParameterPaths.
var YANGModules = []string{
	"ietf-interfaces",
	"ietf-yang-types",
	"iana-if-type",
	"ieee802-types",
	"ieee802-dot1q-bridge",
	"ieee802-dot1q-types",
	"ieee802-dot1q-bridge-delays",
	"ieee802-dot1q-preemption",
	"ieee802-dot1q-sched",
	"ietf-routing",
	"ieee802-dot1ab-types",
	"ieee802-dot1ab-lldp",
}

// MissingModules returns the entries of modules a server's <hello> does
// not advertise. A module counts as advertised when some capability URI
// carries a module=<name> parameter or ends in the module name; the
// match is deliberately loose since bridges differ in how much of the
// capability URI (revision, features) they include.
func MissingModules(serverHello *Node, modules []string) []string {
	var caps []string
	for _, c := range FindAll(serverHello, "capabilities/capability") {
		caps = append(caps, c.Text())
	}

	var missing []string
	for _, m := range modules {
		advertised := false
		for _, c := range caps {
			if strings.HasSuffix(c, m) ||
				strings.HasSuffix(c, "module="+m) ||
				strings.Contains(c, "module="+m+"&") {
				advertised = true
				break
			}
		}
		if !advertised {
			missing = append(missing, m)
		}
	}
	return missing
}
