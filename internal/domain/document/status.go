package document

import (
	"smartbiz/internal/core/apperror"
)

var initialStatus = map[Kind]Status{
	{DomainSales, TypeEstimate}: StatusDraft,
	{DomainSales, TypeOrder}:    StatusPending,
	{DomainSales, TypeDelivery}: StatusCompleted,
	{DomainSales, TypeInvoice}:  StatusPending,
	{DomainSales, TypeIssue}:    StatusCompleted,
	{DomainSales, TypeReturn}:   StatusProcessed,

	{DomainPurchase, TypePurchaseRequest}: StatusPending,
	{DomainPurchase, TypeRFQ}:             StatusSent,
	{DomainPurchase, TypeOrder}:           StatusPending,
	{DomainPurchase, TypeDelivery}:        StatusReceived,
	{DomainPurchase, TypeInvoice}:         StatusPaid,
	{DomainPurchase, TypeReturn}:          StatusProcessed,
}

// InitialStatus returns the status a freshly created document starts in.
func InitialStatus(kind Kind) Status {
	if s, ok := initialStatus[kind]; ok {
		return s
	}
	return StatusDraft
}

// Manual status changes. Statuses set by operations (responded, accepted,
// received on orders) are absent here so they cannot be forced by hand.
var transitions = map[Kind]map[Status][]Status{
	{DomainSales, TypeEstimate}: {
		StatusDraft: {StatusSent, StatusCancelled},
		StatusSent:  {StatusAccepted, StatusRejected, StatusCancelled},
	},
	{DomainSales, TypeOrder}: {
		StatusPending: {StatusCompleted, StatusCancelled},
	},
	{DomainSales, TypeInvoice}: {
		StatusPending: {StatusPaid, StatusOverdue, StatusCancelled},
		StatusOverdue: {StatusPaid, StatusCancelled},
	},

	{DomainPurchase, TypePurchaseRequest}: {
		StatusPending: {StatusApproved, StatusRejected},
	},
	{DomainPurchase, TypeRFQ}: {
		StatusSent:      {StatusCancelled},
		StatusResponded: {StatusRejected, StatusCancelled},
	},
	{DomainPurchase, TypeOrder}: {
		StatusPending:  {StatusCancelled},
		StatusReceived: {StatusCompleted},
	},
	{DomainPurchase, TypeDelivery}: {
		StatusReceived: {StatusCompleted},
	},
}

// CanTransition reports whether a document of kind may move from -> to by hand.
func CanTransition(kind Kind, from, to Status) bool {
	for _, allowed := range transitions[kind][from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CheckTransition returns INVALID_STATUS_TRANSITION when the change is not allowed.
func CheckTransition(kind Kind, from, to Status) error {
	if !CanTransition(kind, from, to) {
		return apperror.NewInvalidStatusTransition(kind.String(), string(from), string(to))
	}
	return nil
}

// IsEditable reports whether lines of a document in this state may still change.
func IsEditable(h *Header) bool {
	switch h.Status {
	case StatusDraft, StatusSent, StatusPending:
		return true
	}
	return false
}

// SettleReceipt marks a pending purchase order received once every line is
// fully fulfilled. It reports whether the status changed.
func SettleReceipt(h *Header) bool {
	if h.Kind() != (Kind{Domain: DomainPurchase, Type: TypeOrder}) || h.Status != StatusPending {
		return false
	}
	if len(h.Items) == 0 {
		return false
	}
	for _, li := range h.Items {
		if !li.IsFullyFulfilled() {
			return false
		}
	}
	h.Status = StatusReceived
	return true
}
