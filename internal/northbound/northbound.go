// Package northbound implements the northbound collaborator: the thin
// transport bridge between CUC callers and the controller's operations,
// and the three fire-and-forget notifications it emits back. The CUC
// transport itself (YANG RPC, RESTCONF, or in-process invocation) is
// left to Adapter implementations; only the operation set is fixed.
package northbound

import (
	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// ResultKind discriminates the Result sum type.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultFailure
	ResultID
	ResultDomain
)

// Result is the internal result sum type. Its String method produces
// the wire strings CUCs expect ("Success", "Failure", "no id", or the
// returned id/domain), so callers stay typed while the wire protocol
// stays stringly.
type Result struct {
	Kind   ResultKind
	Reason string // set when Kind == ResultFailure; "" means plain "Failure"
	NoID   bool   // set when Kind == ResultFailure and the specific reason is "no id"
	IDVal  string
	Domain *tsn.Domain
}

func Success() Result                { return Result{Kind: ResultSuccess} }
func Failure(reason string) Result   { return Result{Kind: ResultFailure, Reason: reason} }
func NoID() Result                   { return Result{Kind: ResultFailure, NoID: true} }
func ID(id string) Result            { return Result{Kind: ResultID, IDVal: id} }
func DomainResult(d *tsn.Domain) Result { return Result{Kind: ResultDomain, Domain: d} }

func (r Result) String() string {
	switch r.Kind {
	case ResultSuccess:
		return "Success"
	case ResultID:
		return r.IDVal
	case ResultDomain:
		if r.Domain != nil {
			return r.Domain.String()
		}
		return "Failure"
	default:
		if r.NoID {
			return "no id"
		}
		if r.Reason != "" {
			return r.Reason
		}
		return "Failure"
	}
}

// Adapter is the northbound collaborator's operation set: it forwards
// CUC calls into the controller and exposes the three notifications a
// transport implementation publishes outward.
type Adapter interface {
	// ComputeStreams forwards compute_streams to the controller.
	ComputeStreams(req tsn.ComputationType) Result

	// RemoveStreams forwards remove_streams to the controller.
	RemoveStreams(cucID tsn.CucID, streamIDs []tsn.StreamID) Result

	// RequestDomainID forwards request_domain_id to the controller.
	RequestDomainID(cucID tsn.CucID) Result

	// RequestFreeStreamID forwards request_free_stream_id to the controller.
	RequestFreeStreamID(domainID tsn.DomainID, cucID tsn.CucID) Result

	// SetStreams forwards set_streams to the controller.
	SetStreams(cucID tsn.CucID, reqs []tsn.StreamRequest) Result

	// GetStreams forwards get_streams to the controller.
	GetStreams(cucID tsn.CucID) Result

	// NotifyComputeStreamsCompleted emits the ComputeStreamsCompleted notification.
	NotifyComputeStreamsCompleted(content tsn.NotificationContent)

	// NotifyConfigureStreamsCompleted emits the ConfigureStreamsCompleted notification.
	NotifyConfigureStreamsCompleted(content tsn.NotificationContent)

	// NotifyRemoveStreamsCompleted emits the RemoveStreamsCompleted notification.
	NotifyRemoveStreamsCompleted(content tsn.NotificationContent)

	// Run starts the collaborator's background worker (if any). Must not
	// block the controller.
	Run()

	// SetControllerRef binds the collaborator's controller back-reference.
	SetControllerRef(ref *ccref.Ref)
}
