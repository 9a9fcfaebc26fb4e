package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// The YAML stream-request file lets an operator submit talker/listener
// specifications without a CUC transport. Each data-frame entry sets
// exactly one variant key.

type yamlStreamFile struct {
	Streams []yamlStreamRequest `yaml:"streams"`
}

type yamlStreamRequest struct {
	StreamID  string         `yaml:"stream_id"`
	Talker    yamlTalker     `yaml:"talker"`
	Listeners []yamlListener `yaml:"listeners"`
}

type yamlTalker struct {
	StreamRank    uint32              `yaml:"stream_rank"`
	Interfaces    []yamlInterface     `yaml:"interfaces"`
	DataFrameSpec []yamlDataFrameSpec `yaml:"data_frame_spec"`
	TrafficSpec   yamlTrafficSpec     `yaml:"traffic_spec"`
	Requirements  yamlRequirements    `yaml:"requirements"`
	Capabilities  yamlCapabilities    `yaml:"capabilities"`
}

type yamlListener struct {
	Index        uint32           `yaml:"index"`
	Interfaces   []yamlInterface  `yaml:"interfaces"`
	Requirements yamlRequirements `yaml:"requirements"`
	Capabilities yamlCapabilities `yaml:"capabilities"`
}

type yamlInterface struct {
	Mac  string `yaml:"mac"`
	Name string `yaml:"name"`
}

type yamlDataFrameSpec struct {
	MacAddresses *struct {
		Dest string `yaml:"dest"`
		Src  string `yaml:"src"`
	} `yaml:"mac_addresses,omitempty"`
	VlanTag *struct {
		VlanID uint16 `yaml:"vlan_id"`
		PCP    uint8  `yaml:"pcp"`
	} `yaml:"vlan_tag,omitempty"`
	IPv4 *yamlIPTuple `yaml:"ipv4_tuple,omitempty"`
	IPv6 *yamlIPTuple `yaml:"ipv6_tuple,omitempty"`
}

type yamlIPTuple struct {
	SourceIP string `yaml:"source_ip"`
	DestIP   string `yaml:"dest_ip"`
	DSCP     uint8  `yaml:"dscp"`
	Protocol uint8  `yaml:"protocol"`
	SrcPort  uint16 `yaml:"source_port"`
	DstPort  uint16 `yaml:"dest_port"`
}

type yamlTrafficSpec struct {
	IntervalNumerator   uint32 `yaml:"interval_numerator"`
	IntervalDenominator uint32 `yaml:"interval_denominator"`
	MaxFramesPerInterval uint32 `yaml:"max_frames_per_interval"`
	MaxFrameSize         uint32 `yaml:"max_frame_size"`
	TransmissionSelection uint8 `yaml:"transmission_selection"`
	TimeAware            *struct {
		EarliestOffset uint32 `yaml:"earliest_offset"`
		LatestOffset   uint32 `yaml:"latest_offset"`
		Jitter         uint32 `yaml:"jitter"`
	} `yaml:"time_aware,omitempty"`
}

type yamlRequirements struct {
	NumSeamlessTrees uint32 `yaml:"num_seamless_trees"`
	MaxLatency       uint32 `yaml:"max_latency"`
}

type yamlCapabilities struct {
	VlanTagCapable bool     `yaml:"vlan_tag_capable"`
	CBStreamIden   []uint32 `yaml:"cb_stream_iden_types"`
	CBSequence     []uint32 `yaml:"cb_sequence_types"`
}

// loadStreamRequests parses a stream-request file into the northbound
// set_streams payload.
func loadStreamRequests(path string) ([]tsn.StreamRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f yamlStreamFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing stream file %s: %w", path, err)
	}

	reqs := make([]tsn.StreamRequest, 0, len(f.Streams))
	for _, ys := range f.Streams {
		req := tsn.StreamRequest{StreamID: tsn.StreamID(ys.StreamID)}

		req.Talker = tsn.GroupTalker{
			StreamRank:           ys.Talker.StreamRank,
			EndStationInterfaces: toInterfaces(ys.Talker.Interfaces),
			TrafficSpecification: toTrafficSpec(ys.Talker.TrafficSpec),
			UserToNetworkRequirements: tsn.UserToNetworkRequirements{
				NumSeamlessTrees: ys.Talker.Requirements.NumSeamlessTrees,
				MaxLatency:       ys.Talker.Requirements.MaxLatency,
			},
			InterfaceCapabilities: toCapabilities(ys.Talker.Capabilities),
		}
		for i, df := range ys.Talker.DataFrameSpec {
			field, err := toDataFrameField(df)
			if err != nil {
				return nil, fmt.Errorf("stream %s, data_frame_spec[%d]: %w", ys.StreamID, i, err)
			}
			req.Talker.DataFrameSpecification = append(req.Talker.DataFrameSpecification,
				tsn.DataFrameSpecificationElement{Index: uint32(i), Field: field})
		}

		for _, yl := range ys.Listeners {
			req.Listeners = append(req.Listeners, tsn.GroupListener{
				Index:                yl.Index,
				EndStationInterfaces: toInterfaces(yl.Interfaces),
				UserToNetworkRequirements: tsn.UserToNetworkRequirements{
					NumSeamlessTrees: yl.Requirements.NumSeamlessTrees,
					MaxLatency:       yl.Requirements.MaxLatency,
				},
				InterfaceCapabilities: toCapabilities(yl.Capabilities),
			})
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func toInterfaces(in []yamlInterface) []tsn.EndStationInterface {
	out := make([]tsn.EndStationInterface, 0, len(in))
	for i, iface := range in {
		out = append(out, tsn.EndStationInterface{
			Index: uint32(i),
			InterfaceID: tsn.GroupInterfaceID{
				InterfaceName: iface.Name,
				MacAddress:    iface.Mac,
			},
		})
	}
	return out
}

func toTrafficSpec(in yamlTrafficSpec) tsn.TrafficSpecificationContainer {
	spec := tsn.TrafficSpecificationContainer{
		Interval: tsn.TrafficSpecificationInterval{
			Numerator:   in.IntervalNumerator,
			Denominator: in.IntervalDenominator,
		},
		MaxFramesPerInterval:  in.MaxFramesPerInterval,
		MaxFrameSize:          in.MaxFrameSize,
		TransmissionSelection: in.TransmissionSelection,
	}
	if in.TimeAware != nil {
		spec.TimeAware = &tsn.TimeAwareContainer{
			EarliestTransmitOffset: in.TimeAware.EarliestOffset,
			LatestTransmitOffset:   in.TimeAware.LatestOffset,
			Jitter:                 in.TimeAware.Jitter,
		}
	}
	return spec
}

func toCapabilities(in yamlCapabilities) tsn.InterfaceCapabilities {
	return tsn.InterfaceCapabilities{
		VlanTagCapable:       in.VlanTagCapable,
		CBStreamIdenTypeList: in.CBStreamIden,
		CBSequenceTypeList:   in.CBSequence,
	}
}

func toDataFrameField(df yamlDataFrameSpec) (tsn.DataFrameField, error) {
	set := 0
	var field tsn.DataFrameField
	if df.MacAddresses != nil {
		set++
		field = tsn.MacAddresses{DestMAC: df.MacAddresses.Dest, SrcMAC: df.MacAddresses.Src}
	}
	if df.VlanTag != nil {
		set++
		field = tsn.VlanTag{VlanID: df.VlanTag.VlanID, PriorityCodePoint: df.VlanTag.PCP}
	}
	if df.IPv4 != nil {
		set++
		field = tsn.IPv4Tuple{
			SourceIP: df.IPv4.SourceIP, DestIP: df.IPv4.DestIP,
			DSCP: df.IPv4.DSCP, Protocol: df.IPv4.Protocol,
			SourcePort: df.IPv4.SrcPort, DestPort: df.IPv4.DstPort,
		}
	}
	if df.IPv6 != nil {
		set++
		field = tsn.IPv6Tuple{
			SourceIP: df.IPv6.SourceIP, DestIP: df.IPv6.DestIP,
			DSCP: df.IPv6.DSCP, Protocol: df.IPv6.Protocol,
			SourcePort: df.IPv6.SrcPort, DestPort: df.IPv6.DstPort,
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of mac_addresses, vlan_tag, ipv4_tuple, ipv6_tuple must be set")
	}
	return field, nil
}
