// Package tsn models the IEEE 802.1Q centralized-model Stream/Domain/CUC
// data tree: the identifiers, the talker/listener group specifications,
// and the three-state Stream status lifecycle.
package tsn

import "regexp"

// DomainID and CucID are opaque identifiers assigned by the operator or CUC.
type DomainID string

// CucID identifies a Centralized User Configuration client.
type CucID string

// StreamID is a 48-bit MAC address plus a 16-bit unique suffix, formatted
// "XX-XX-XX-XX-XX-XX:XX-XX" in upper hex.
type StreamID string

// NodeID is a topology node identifier. By convention ids below 10 denote
// configurable bridges; ids 10 and above denote end stations.
type NodeID uint32

var streamIDPattern = regexp.MustCompile(`^[0-9A-F]{2}(-[0-9A-F]{2}){5}:[0-9A-F]{2}-[0-9A-F]{2}$`)

// Valid reports whether id matches the canonical Stream ID format.
func (id StreamID) Valid() bool {
	return streamIDPattern.MatchString(string(id))
}

// IsBridge reports whether this node id denotes a configurable bridge
// rather than an end station.
func (n NodeID) IsBridge() bool { return n < 10 }
