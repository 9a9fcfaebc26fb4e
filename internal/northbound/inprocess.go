package northbound

import (
	"time"

	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/internal/cnclog"
	"github.com/ieee8021/tsn-cnc/pkg/audit"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// InProcessAdapter forwards CUC calls directly into the controller via
// its controller reference — the transport used by cncd's local
// command entry points.
type InProcessAdapter struct {
	ref *ccref.Ref

	// notify, if set, receives every notification this adapter emits —
	// used by tests and by a future real transport to fan out to CUCs.
	notify func(kind string, content tsn.NotificationContent)
}

// NewInProcessAdapter returns an InProcessAdapter. notify may be nil.
func NewInProcessAdapter(notify func(kind string, content tsn.NotificationContent)) *InProcessAdapter {
	return &InProcessAdapter{notify: notify}
}

func (a *InProcessAdapter) SetControllerRef(ref *ccref.Ref) { a.ref = ref }

func (a *InProcessAdapter) Run() {}

func (a *InProcessAdapter) ComputeStreams(req tsn.ComputationType) Result {
	h, err := a.ref.Get()
	if err != nil {
		return Failure(err.Error())
	}
	start := time.Now()
	res := wireResult(h.ComputeStreams(req))
	for _, rd := range req.Domains {
		audit.Log(audit.NewEvent(string(rd.DomainID), "", audit.OpComputeStreams).
			WithResult(res.String()).
			WithDuration(time.Since(start)))
	}
	return res
}

func (a *InProcessAdapter) RemoveStreams(cucID tsn.CucID, streamIDs []tsn.StreamID) Result {
	h, err := a.ref.Get()
	if err != nil {
		return Failure(err.Error())
	}
	start := time.Now()
	res := wireResult(h.RemoveStreams(cucID, streamIDs))
	audit.Log(audit.NewEvent("", string(cucID), audit.OpRemoveStreams).
		WithStreams(streamIDStrings(streamIDs)).
		WithResult(res.String()).
		WithDuration(time.Since(start)))
	return res
}

func (a *InProcessAdapter) RequestDomainID(cucID tsn.CucID) Result {
	h, err := a.ref.Get()
	if err != nil {
		return Failure(err.Error())
	}
	s := h.RequestDomainID(cucID)
	if s == "Failure" {
		return Failure("")
	}
	return ID(s)
}

func (a *InProcessAdapter) RequestFreeStreamID(domainID tsn.DomainID, cucID tsn.CucID) Result {
	h, err := a.ref.Get()
	if err != nil {
		return Failure(err.Error())
	}
	s := h.RequestFreeStreamID(domainID, cucID)
	if s == "no id" {
		return NoID()
	}
	return ID(s)
}

func (a *InProcessAdapter) SetStreams(cucID tsn.CucID, reqs []tsn.StreamRequest) Result {
	h, err := a.ref.Get()
	if err != nil {
		return Failure(err.Error())
	}
	ids := make([]tsn.StreamID, len(reqs))
	for i, r := range reqs {
		ids[i] = r.StreamID
	}
	start := time.Now()
	res := wireResult(h.SetStreams(cucID, reqs))
	audit.Log(audit.NewEvent("", string(cucID), audit.OpSetStreams).
		WithStreams(streamIDStrings(ids)).
		WithResult(res.String()).
		WithDuration(time.Since(start)))
	return res
}

func (a *InProcessAdapter) GetStreams(cucID tsn.CucID) Result {
	h, err := a.ref.Get()
	if err != nil {
		return Failure(err.Error())
	}
	d, err := h.GetStreams(cucID)
	if err != nil {
		return Failure(err.Error())
	}
	return DomainResult(d)
}

func (a *InProcessAdapter) NotifyComputeStreamsCompleted(content tsn.NotificationContent) {
	a.emit("ComputeStreamsCompleted", content)
}

func (a *InProcessAdapter) NotifyConfigureStreamsCompleted(content tsn.NotificationContent) {
	a.emit("ConfigureStreamsCompleted", content)
}

func (a *InProcessAdapter) NotifyRemoveStreamsCompleted(content tsn.NotificationContent) {
	a.emit("RemoveStreamsCompleted", content)
}

func (a *InProcessAdapter) emit(kind string, content tsn.NotificationContent) {
	cnclog.Logger.WithField("notification", kind).Info("northbound: notification emitted")
	if a.notify != nil {
		a.notify(kind, content)
	}
}

func wireResult(s string) Result {
	if s == "Success" {
		return Success()
	}
	if s == "Failure" {
		return Failure("")
	}
	return Failure(s)
}

func streamIDStrings(ids []tsn.StreamID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
