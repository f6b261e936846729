package market

type Status string

const (
	StatusPending    Status = "pending"    // direct placement, payment not confirmed
	StatusProcessing Status = "processing" // payment confirmed, awaiting fulfillment
	StatusDelivered  Status = "delivered"  // terminal
	StatusCancelled  Status = "cancelled"  // terminal
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Mutable reports whether items/amount may still change and cancellation is
// still allowed.
func (s Status) Mutable() bool {
	return s == StatusPending || s == StatusProcessing
}
