package netconf

import (
	"strconv"

	topo "github.com/ieee8021/tsn-cnc/pkg/topology"
)

// RetrieveStationCapabilities opens a session to ssh, runs a filtered
// <get> for /interfaces/interface, and extracts each port's name, MAC
// address, tick granularity, and bridge-port-delays blocks.
func RetrieveStationCapabilities(nodeID uint32, host string, port int, user, pass string) ([]topo.Port, error) {
	s, err := Dial(nodeID, host, port, user, pass, defaultTimeout)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	reply, err := s.Get(AllInterfacesFilter)
	if err != nil {
		return nil, err
	}
	data := reply.Child("data")
	if data == nil {
		return nil, nil
	}
	return ExtractPorts(data), nil
}

// ExtractPorts pulls each interface's name, MAC address, tick
// granularity, and bridge-port-delays blocks out of a <get> reply.
func ExtractPorts(reply *Node) []topo.Port {
	var ports []topo.Port
	for _, ifNode := range FindAll(reply, "interfaces/interface") {
		p := topo.Port{
			Name:       textOf(ifNode.Child("name")),
			MacAddress: textOf(ifNode.Child("mac-address")),
		}
		if tg := ifNode.Child("tick-granularity"); tg != nil {
			if v, err := strconv.ParseUint(tg.Text(), 10, 32); err == nil {
				p.TickGranularity = uint32(v)
			}
		}
		for _, d := range FindAll(ifNode, "bridge-port-delays") {
			p.Delays = append(p.Delays, parseBridgePortDelays(d))
		}
		ports = append(ports, p)
	}
	return ports
}

func parseBridgePortDelays(n *Node) topo.BridgePortDelays {
	return topo.BridgePortDelays{
		PortSpeed:              parseU32(n.Child("port-speed")),
		DependentRxDelayMin:    parseU32(n.Child("dependent-rx-delay-min")),
		DependentRxDelayMax:    parseU32(n.Child("dependent-rx-delay-max")),
		IndependentRxDelayMin:  parseU32(n.Child("independent-rx-delay-min")),
		IndependentRxDelayMax:  parseU32(n.Child("independent-rx-delay-max")),
		IndependentRlyDelayMin: parseU32(n.Child("independent-rly-delay-min")),
		IndependentRlyDelayMax: parseU32(n.Child("independent-rly-delay-max")),
		IndependentTxDelayMin:  parseU32(n.Child("independent-tx-delay-min")),
		IndependentTxDelayMax:  parseU32(n.Child("independent-tx-delay-max")),
	}
}

func parseU32(n *Node) uint32 {
	if n == nil {
		return 0
	}
	v, _ := strconv.ParseUint(n.Text(), 10, 32)
	return uint32(v)
}

func textOf(n *Node) string {
	if n == nil {
		return ""
	}
	return n.Text()
}
