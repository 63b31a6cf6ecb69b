package models

// Status is the lifecycle state of a seller order. Sellers drive it forward
// one step at a time; cancellation is only reachable before work starts.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusPreparing  Status = "preparing"
	StatusReady      Status = "ready"
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusDispatched, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// validNext is the checked transition table. Non-adjacent forward jumps
// (pending straight to delivered) are rejected: a seller can only report
// the next step of work actually done.
var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:  {StatusPreparing: true, StatusCancelled: true},
	StatusPreparing:  {StatusReady: true},
	StatusReady:      {StatusDispatched: true},
	StatusDispatched: {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether a seller order may move from one status to
// another.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// overallPrecedence orders the any-match reduction below, least advanced
// last.
var overallPrecedence = []Status{
	StatusDispatched,
	StatusReady,
	StatusPreparing,
	StatusConfirmed,
}

// OverallStatus reduces the child statuses of one parent order into the
// single buyer-visible state. The reduction is deliberately lossy: it
// surfaces the furthest milestone any seller has reached, except that
// "delivered" requires every seller to be done. Callers that need the
// full picture use the per-seller breakdown alongside this value.
func OverallStatus(children []Status) Status {
	if len(children) == 0 {
		return StatusPending
	}

	allDelivered := true
	for _, st := range children {
		if st != StatusDelivered {
			allDelivered = false
			break
		}
	}
	if allDelivered {
		return StatusDelivered
	}

	for _, candidate := range overallPrecedence {
		for _, st := range children {
			if st == candidate {
				return candidate
			}
		}
	}
	return StatusPending
}
