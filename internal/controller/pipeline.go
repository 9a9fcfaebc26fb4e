package controller

import (
	"github.com/ieee8021/tsn-cnc/internal/cnclog"
	"github.com/ieee8021/tsn-cnc/pkg/sched"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// executePipeline runs one compute request end to end. Interface configs
// are persisted and the compute notification is sent before the network
// push begins, so CUCs see the schedule decisions even if configuration
// later fails.
func (c *Controller) executePipeline(req tsn.ComputationType) {
	log := cnclog.WithDomain(string(c.domainID)).WithField("computation", kindName(req.Kind))
	log.Info("controller: compute pipeline starting")

	topo, err := c.topo.Get()
	if err != nil {
		log.WithError(err).Error("controller: topology snapshot failed, aborting pipeline")
		return
	}

	domains, err := c.store.Select(req.Domains, req.Kind == tsn.ComputationPlannedAndModified)
	if err != nil {
		log.WithError(err).Error("controller: domain selection failed, aborting pipeline")
		return
	}
	if countStreams(domains) == 0 {
		log.Info("controller: no streams selected, pipeline done")
		c.north.NotifyComputeStreamsCompleted(tsn.NotificationContent{})
		c.north.NotifyConfigureStreamsCompleted(tsn.NotificationContent{})
		return
	}

	cr, err := c.sched.Compute(topo, domains)
	if err != nil {
		log.WithError(err).Error("controller: scheduler compute failed, aborting pipeline")
		return
	}

	// Storage save errors leave durable state inconsistent; the
	// controller cannot continue past them.
	if err := c.store.PutConfigs(cr.Schedule.Configs); err != nil {
		log.WithError(err).Fatal("controller: persisting schedule configs failed")
		return
	}
	if err := c.store.ModifyStreams(cr.Domains); err != nil {
		log.WithError(err).Fatal("controller: scheduler writeback failed")
		return
	}

	c.north.NotifyComputeStreamsCompleted(buildComputeNotification(domains, cr.FailedStreams))

	failed, err := c.south.ConfigureNetwork(topo, cr.Schedule)
	if err != nil {
		log.WithError(err).Error("controller: configure_network failed")
	}

	if err := c.store.SetConfigured(domains, failed); err != nil {
		log.WithError(err).Fatal("controller: persisting configured statuses failed")
		return
	}

	c.north.NotifyConfigureStreamsCompleted(buildConfigureNotification(domains, failed))
	log.WithField("failed_interfaces", len(failed.Interfaces)).Info("controller: compute pipeline finished")
}

func kindName(k tsn.ComputationKind) string {
	switch k {
	case tsn.ComputationPlannedAndModified:
		return "planned-and-modified"
	case tsn.ComputationList:
		return "list"
	default:
		return "all"
	}
}

func countStreams(domains []*tsn.Domain) int {
	n := 0
	for _, d := range domains {
		for _, cuc := range d.Cucs {
			n += len(cuc.Streams)
		}
	}
	return n
}

type failedKey struct {
	domain tsn.DomainID
	cuc    tsn.CucID
	stream tsn.StreamID
}

// buildComputeNotification lists every stream in domains, with
// failure_code=1 exactly when the scheduler reported the stream
// unplaceable.
func buildComputeNotification(domains []*tsn.Domain, failedStreams []sched.FailedStream) tsn.NotificationContent {
	failed := make(map[failedKey]struct{}, len(failedStreams))
	for _, f := range failedStreams {
		failed[failedKey{domain: f.DomainID, cuc: f.CucID, stream: f.StreamID}] = struct{}{}
	}
	return buildNotification(domains, func(d tsn.DomainID, cu tsn.CucID, s tsn.StreamID) uint8 {
		if _, ok := failed[failedKey{domain: d, cuc: cu, stream: s}]; ok {
			return 1
		}
		return 0
	})
}

// buildConfigureNotification lists every stream in domains, with
// failure_code=1 exactly when some failed interface's affected set
// contains the stream.
func buildConfigureNotification(domains []*tsn.Domain, failed sched.FailedInterfaces) tsn.NotificationContent {
	return buildNotification(domains, func(_ tsn.DomainID, _ tsn.CucID, s tsn.StreamID) uint8 {
		if failed.AffectsStream(s) {
			return 1
		}
		return 0
	})
}

func buildNotification(domains []*tsn.Domain, code func(tsn.DomainID, tsn.CucID, tsn.StreamID) uint8) tsn.NotificationContent {
	content := make(tsn.NotificationContent, 0, len(domains))
	for _, d := range domains {
		nd := tsn.NotificationDomain{DomainID: d.DomainID}
		for _, cuc := range d.Cucs {
			nc := tsn.NotificationCuc{CucID: cuc.CucID}
			for _, s := range cuc.Streams {
				nc.Streams = append(nc.Streams, tsn.NotificationStream{
					StreamID:    s.StreamID,
					FailureCode: code(d.DomainID, cuc.CucID, s.StreamID),
				})
			}
			nd.Cucs = append(nd.Cucs, nc)
		}
		content = append(content, nd)
	}
	return content
}
