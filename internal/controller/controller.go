// Package controller implements the CNC orchestrator: it owns the five
// collaborators (northbound, southbound, storage, topology, scheduler),
// serializes every compute request through a single pipeline, and drives
// the status lifecycle of every stream.
package controller

import (
	"fmt"
	"sync"

	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/internal/cnclog"
	"github.com/ieee8021/tsn-cnc/internal/northbound"
	"github.com/ieee8021/tsn-cnc/internal/scheduler"
	"github.com/ieee8021/tsn-cnc/internal/southbound"
	"github.com/ieee8021/tsn-cnc/internal/storage"
	topoadapter "github.com/ieee8021/tsn-cnc/internal/topology"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// DefaultQueueDepth is the compute channel's buffer size when the
// configuration does not override it.
const DefaultQueueDepth = 16

// Controller is the CNC core object. Collaborators call back into it
// through the ccref.Ref handed to them at construction; the controller
// itself holds the only strong references to its collaborators.
type Controller struct {
	domainID tsn.DomainID

	north northbound.Adapter
	south southbound.Adapter
	store storage.Store
	topo  topoadapter.Adapter
	sched scheduler.Adapter

	ref       *ccref.Ref
	computeCh chan tsn.ComputationType

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New wires the five collaborators to a new controller. Each collaborator
// receives the controller's resolvable back-reference before New returns;
// none of them holds the controller alive.
func New(domainID tsn.DomainID, queueDepth int,
	north northbound.Adapter, south southbound.Adapter, store storage.Store,
	topo topoadapter.Adapter, schedAdapter scheduler.Adapter) *Controller {

	if queueDepth <= 0 {
		queueDepth = DefaultQueueDepth
	}
	c := &Controller{
		domainID:  domainID,
		north:     north,
		south:     south,
		store:     store,
		topo:      topo,
		sched:     schedAdapter,
		ref:       ccref.New(),
		computeCh: make(chan tsn.ComputationType, queueDepth),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	c.ref.Bind(c)
	north.SetControllerRef(c.ref)
	south.SetControllerRef(c.ref)
	store.SetControllerRef(c.ref)
	topo.SetControllerRef(c.ref)
	schedAdapter.SetControllerRef(c.ref)
	return c
}

// DomainID returns the domain this controller manages.
func (c *Controller) DomainID() tsn.DomainID { return c.domainID }

// Start loads storage, launches the collaborators' background workers,
// and starts the main loop draining the compute channel. The main loop
// runs on its own goroutine; Start returns once it is launched.
func (c *Controller) Start() error {
	if err := c.store.Configure(c.domainID); err != nil {
		return err
	}
	c.topo.Run()
	c.north.Run()
	go c.run()
	cnclog.WithDomain(string(c.domainID)).Info("controller: started")
	return nil
}

// Stop requests a cooperative shutdown: a compute request already
// executing runs to completion, then the main loop exits. The controller
// back-reference is released so late collaborator calls fail cleanly.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.ref.Release()
	})
}

// Wait blocks until the main loop has exited.
func (c *Controller) Wait() { <-c.doneCh }

// run drains the compute channel strictly serially: only one pipeline is
// in flight at any time, which is the ordering contract that lets the
// pipeline stages run without locking.
func (c *Controller) run() {
	defer close(c.doneCh)
	for {
		select {
		case <-c.stopCh:
			return
		case req, ok := <-c.computeCh:
			if !ok {
				return
			}
			c.executePipeline(req)
		}
	}
}

// ComputeStreams enqueues a compute request without blocking, returning
// "Success" or the transport error's textual form.
func (c *Controller) ComputeStreams(req tsn.ComputationType) string {
	select {
	case <-c.stopCh:
		return "controller stopped"
	default:
	}
	select {
	case c.computeCh <- req:
		return "Success"
	default:
		return fmt.Sprintf("compute queue full (%d pending)", cap(c.computeCh))
	}
}

// RemoveStreams removes each named stream from storage and emits one
// RemoveStreamsCompleted notification covering all of them. Removing a
// stream that does not exist is a no-op and still succeeds.
func (c *Controller) RemoveStreams(cucID tsn.CucID, streamIDs []tsn.StreamID) string {
	notif := tsn.NotificationDomain{DomainID: c.domainID}
	nc := tsn.NotificationCuc{CucID: cucID}
	for _, id := range streamIDs {
		var code uint8
		if err := c.store.RemoveStream(cucID, id); err != nil {
			cnclog.WithStream(string(id)).WithError(err).Error("controller: remove_stream failed")
			code = 1
		}
		nc.Streams = append(nc.Streams, tsn.NotificationStream{StreamID: id, FailureCode: code})
	}
	notif.Cucs = append(notif.Cucs, nc)
	c.north.NotifyRemoveStreamsCompleted(tsn.NotificationContent{notif})
	return "Success"
}

// RequestDomainID returns the domain owning cucID, or "Failure".
func (c *Controller) RequestDomainID(cucID tsn.CucID) string {
	id, err := c.store.GetDomainOfCuc(cucID)
	if err != nil {
		return "Failure"
	}
	return string(id)
}

// RequestFreeStreamID returns a stream id not currently in use anywhere
// in the tree, or "no id".
func (c *Controller) RequestFreeStreamID(domainID tsn.DomainID, cucID tsn.CucID) string {
	id, err := c.store.GetFreeStreamID()
	if err != nil {
		return "no id"
	}
	return string(id)
}

// SetStreams turns each request into a stream with status Planned (or
// Modified, when it replaces an existing stream — storage applies that
// transition) and persists the batch.
func (c *Controller) SetStreams(cucID tsn.CucID, reqs []tsn.StreamRequest) string {
	streams := make([]*tsn.Stream, 0, len(reqs))
	for _, r := range reqs {
		if !r.StreamID.Valid() {
			cnclog.WithCUC(string(cucID)).WithField("stream_id", string(r.StreamID)).
				Warn("controller: rejecting malformed stream id")
			return "Failure"
		}
		s := &tsn.Stream{
			StreamID: r.StreamID,
			Status:   tsn.StreamStatusPlanned,
			Talker:   tsn.Talker{GroupTalker: r.Talker},
		}
		for i, l := range r.Listeners {
			idx := l.Index
			if idx == 0 {
				idx = uint32(i)
			}
			s.Listeners = append(s.Listeners, tsn.Listener{Index: idx, GroupListener: l})
		}
		streams = append(streams, s)
	}
	if err := c.store.SetStreams(cucID, streams); err != nil {
		cnclog.WithCUC(string(cucID)).WithError(err).Error("controller: set_streams failed")
		return "Failure"
	}
	return "Success"
}

// GetStreams returns the subtree for cucID within the controller's own
// domain.
func (c *Controller) GetStreams(cucID tsn.CucID) (*tsn.Domain, error) {
	domains, err := c.store.Select([]tsn.RequestDomain{{
		DomainID: c.domainID,
		Cucs:     []tsn.RequestCuc{{CucID: cucID}},
	}}, false)
	if err != nil {
		return nil, err
	}
	if len(domains) == 0 {
		return &tsn.Domain{DomainID: c.domainID, CNCEnabled: true}, nil
	}
	return domains[0], nil
}

// NotifyTopologyChanged accepts a topology-change notification. The
// controller does not re-schedule on it; whether it should is an open
// question left to a future strategy.
func (c *Controller) NotifyTopologyChanged() {
	cnclog.WithDomain(string(c.domainID)).Info("controller: topology change notified, no recomputation triggered")
}
