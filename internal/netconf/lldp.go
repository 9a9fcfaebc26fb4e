package netconf

import (
	"strings"
)

// ChassisID is the LLDP chassis identifier (subtype + value).
type ChassisID struct {
	Subtype string
	Value   string
}

// PortID is the LLDP port identifier (subtype + value).
type PortID struct {
	Subtype string
	Value   string
}

// ManagementAddress is one LLDP management-address entry, keyed by
// address-type and address.
type ManagementAddress struct {
	AddressType string
	Address     string
}

// RemoteSystem is one LLDP neighbor, as extracted from a
// remote-systems-data element.
type RemoteSystem struct {
	ChassisID             ChassisID
	PortID                PortID
	PortDescription       string
	SystemName            string
	SystemDescription     string
	CapabilitiesSupported []string
	CapabilitiesEnabled   []string
	TimeMark              uint32
	RemoteIndex           uint32
	ManagementAddresses   []ManagementAddress
}

// RetrieveLLDP opens a session to ssh, runs a filtered <get> for
// /lldp/port/remote-systems-data, and extracts one RemoteSystem per
// remote-systems-data element.
func RetrieveLLDP(nodeID uint32, host string, port int, user, pass string) ([]RemoteSystem, error) {
	s, err := Dial(nodeID, host, port, user, pass, defaultTimeout)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	reply, err := s.Get(LLDPFilter)
	if err != nil {
		return nil, err
	}
	data := reply.Child("data")
	if data == nil {
		return nil, nil
	}

	var systems []RemoteSystem
	for _, rsd := range FindAll(data, "lldp/port/remote-systems-data") {
		systems = append(systems, ExtractRemoteSystem(rsd))
	}
	return systems, nil
}

// ExtractRemoteSystem builds one RemoteSystem from a
// <remote-systems-data> element: scalar fields come from element text,
// management addresses from their YANG list keys.
func ExtractRemoteSystem(n *Node) RemoteSystem {
	rs := RemoteSystem{
		PortDescription:   textOf(n.Child("port-desc")),
		SystemName:        textOf(n.Child("system-name")),
		SystemDescription: textOf(n.Child("system-description")),
		TimeMark:          parseU32(n.Child("time-mark")),
		RemoteIndex:       parseU32(n.Child("remote-index")),
	}
	rs.ChassisID = ChassisID{
		Subtype: textOf(n.Child("chassis-id-subtype")),
		Value:   textOf(n.Child("chassis-id")),
	}
	rs.PortID = PortID{
		Subtype: textOf(n.Child("port-id-subtype")),
		Value:   textOf(n.Child("port-id")),
	}
	if caps := n.Child("system-capabilities-supported"); caps != nil {
		rs.CapabilitiesSupported = splitCapabilities(caps.Text())
	}
	if caps := n.Child("system-capabilities-enabled"); caps != nil {
		rs.CapabilitiesEnabled = splitCapabilities(caps.Text())
	}
	for _, ma := range n.ChildrenNamed("management-address") {
		rs.ManagementAddresses = append(rs.ManagementAddresses, ExtractManagementAddress(ma))
	}
	return rs
}

func splitCapabilities(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	return fields
}

// ExtractManagementAddress reads a management-address list entry's two
// YANG list keys, address-type and address. NETCONF serializes them as
// the entry's own child elements rather than as a single value element,
// so the extractor reads the key fields directly instead of looking for
// one "value" node.
func ExtractManagementAddress(n *Node) ManagementAddress {
	return ManagementAddress{
		AddressType: textOf(n.Child("address-type")),
		Address:     textOf(n.Child("address")),
	}
}
