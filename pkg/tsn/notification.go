package tsn

// NotificationStream is one stream entry within a notification payload.
type NotificationStream struct {
	StreamID    StreamID
	FailureCode uint8
}

// NotificationCuc is one CUC's streams within a notification payload.
type NotificationCuc struct {
	CucID   CucID
	Streams []NotificationStream
}

// NotificationDomain is one domain's CUCs within a notification payload.
type NotificationDomain struct {
	DomainID DomainID
	Cucs     []NotificationCuc
}

// NotificationContent is the payload carried by every northbound
// notification (ComputeStreamsCompleted, ConfigureStreamsCompleted,
// RemoveStreamsCompleted).
type NotificationContent []NotificationDomain

// RequestCuc names one CUC and, optionally, a specific stream subset
// within a ComputationType request. A nil StreamList means "all streams
// in that CUC".
type RequestCuc struct {
	CucID      CucID
	StreamList []StreamID
}

// RequestDomain names one domain and the CUCs (and optionally stream
// subsets) to include in a compute request.
type RequestDomain struct {
	DomainID DomainID
	Cucs     []RequestCuc
}

// ComputationKind discriminates the ComputationType tagged variant.
type ComputationKind int

const (
	ComputationAll ComputationKind = iota
	ComputationPlannedAndModified
	ComputationList
)

// ComputationType is the tagged request submitted to compute_streams:
// All(domains), PlannedAndModified(domains), or List(domains).
type ComputationType struct {
	Kind    ComputationKind
	Domains []RequestDomain
}
