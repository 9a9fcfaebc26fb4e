package tsn

import "fmt"

// StreamStatus is the three-state Stream lifecycle: Planned on first
// submission, Configured after a successful network push, Modified on
// replacement or configuration failure.
type StreamStatus int

const (
	StreamStatusPlanned StreamStatus = iota
	StreamStatusConfigured
	StreamStatusModified
)

func (s StreamStatus) String() string {
	switch s {
	case StreamStatusConfigured:
		return "Configured"
	case StreamStatusModified:
		return "Modified"
	default:
		return "Planned"
	}
}

// Stream is one entry of a CUC's stream list.
type Stream struct {
	StreamID    StreamID
	Status      StreamStatus
	Talker      Talker
	Listeners   []Listener
	GroupStatus GroupStatusStream
}

// Clone returns a deep copy of the stream, used wherever storage must
// hand back or accept a value independent of its internal tree (the
// "deep copy" requirement on select/modify_streams).
func (s *Stream) Clone() *Stream {
	if s == nil {
		return nil
	}
	out := *s
	out.Talker.GroupTalker.EndStationInterfaces = append([]EndStationInterface(nil), s.Talker.GroupTalker.EndStationInterfaces...)
	out.Talker.GroupTalker.DataFrameSpecification = append([]DataFrameSpecificationElement(nil), s.Talker.GroupTalker.DataFrameSpecification...)
	out.Talker.GroupStatusTalkerListener.InterfaceConfiguration.InterfaceList = cloneInterfaceList(s.Talker.GroupStatusTalkerListener.InterfaceConfiguration.InterfaceList)
	out.Listeners = make([]Listener, len(s.Listeners))
	for i, l := range s.Listeners {
		l.GroupListener.EndStationInterfaces = append([]EndStationInterface(nil), l.GroupListener.EndStationInterfaces...)
		l.GroupStatusTalkerListener.InterfaceConfiguration.InterfaceList = cloneInterfaceList(l.GroupStatusTalkerListener.InterfaceConfiguration.InterfaceList)
		out.Listeners[i] = l
	}
	out.GroupStatus.FailedInterfaces = append([]GroupInterfaceID(nil), s.GroupStatus.FailedInterfaces...)
	return &out
}

func cloneInterfaceList(in []InterfaceListElement) []InterfaceListElement {
	if in == nil {
		return nil
	}
	out := make([]InterfaceListElement, len(in))
	for i, e := range in {
		e.ConfigList = append([]ConfigListElement(nil), e.ConfigList...)
		out[i] = e
	}
	return out
}

// Cuc is a Centralized User Configuration client's stream collection
// within a Domain.
type Cuc struct {
	CucID   CucID
	Streams []*Stream
}

// FindStream returns the stream with the given id, or nil.
func (c *Cuc) FindStream(id StreamID) *Stream {
	for _, s := range c.Streams {
		if s.StreamID == id {
			return s
		}
	}
	return nil
}

// Domain is the top-level tree node: a CNC-enabled domain and its CUCs.
type Domain struct {
	DomainID   DomainID
	CNCEnabled bool
	Cucs       []*Cuc
}

// FindCuc returns the CUC with the given id, or nil.
func (d *Domain) FindCuc(id CucID) *Cuc {
	for _, c := range d.Cucs {
		if c.CucID == id {
			return c
		}
	}
	return nil
}

// EnsureCuc returns the CUC with the given id, creating it (empty) if absent.
func (d *Domain) EnsureCuc(id CucID) *Cuc {
	if c := d.FindCuc(id); c != nil {
		return c
	}
	c := &Cuc{CucID: id}
	d.Cucs = append(d.Cucs, c)
	return c
}

// Clone returns a deep copy of the domain subtree.
func (d *Domain) Clone() *Domain {
	if d == nil {
		return nil
	}
	out := &Domain{DomainID: d.DomainID, CNCEnabled: d.CNCEnabled}
	out.Cucs = make([]*Cuc, len(d.Cucs))
	for i, c := range d.Cucs {
		nc := &Cuc{CucID: c.CucID}
		nc.Streams = make([]*Stream, len(c.Streams))
		for j, s := range c.Streams {
			nc.Streams[j] = s.Clone()
		}
		out.Cucs[i] = nc
	}
	return out
}

func (d *Domain) String() string {
	return fmt.Sprintf("Domain{%s, cucs=%d}", d.DomainID, len(d.Cucs))
}

// StreamRequest is what a CUC submits to set_streams: a stream id plus
// its talker and listener specifications, prior to any status or
// scheduler annotation.
type StreamRequest struct {
	StreamID  StreamID
	Talker    GroupTalker
	Listeners []GroupListener
}
