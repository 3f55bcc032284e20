package domain

// OrderStatus is the closed set of order lifecycle states. It is the single
// source of truth for which actions are legal on an order.
type OrderStatus string

const (
	StatusDraft                  OrderStatus = "draft"
	StatusCheckoutInitiated      OrderStatus = "checkout_initiated"
	StatusAwaitingPayment        OrderStatus = "awaiting_payment"
	StatusPaid                   OrderStatus = "paid"
	StatusProcessing             OrderStatus = "processing"
	StatusAwaitingInfo           OrderStatus = "awaiting_info"
	StatusReady                  OrderStatus = "ready"
	StatusLinksSent              OrderStatus = "links_sent"
	StatusCompleted              OrderStatus = "completed"
	StatusCompletedPartialRefund OrderStatus = "completed_partial_refund"
	StatusRefundRequired         OrderStatus = "refund_required"
	StatusRefundedPartial        OrderStatus = "refunded_partial"
	StatusRefundedFull           OrderStatus = "refunded_full"
	StatusCancelledUnpaid        OrderStatus = "cancelled_unpaid"
	StatusCancelledManual        OrderStatus = "cancelled_manual"
)

// StatusMeta is display metadata for one status code.
type StatusMeta struct {
	Code     OrderStatus
	Label    string
	Badge    string
	Category string
}

// statusOrder fixes the presentation order for filter dropdowns.
var statusOrder = []OrderStatus{
	StatusDraft,
	StatusCheckoutInitiated,
	StatusAwaitingPayment,
	StatusPaid,
	StatusProcessing,
	StatusAwaitingInfo,
	StatusReady,
	StatusLinksSent,
	StatusCompleted,
	StatusCompletedPartialRefund,
	StatusRefundRequired,
	StatusRefundedPartial,
	StatusRefundedFull,
	StatusCancelledUnpaid,
	StatusCancelledManual,
}

var statusDefinitions = map[OrderStatus]StatusMeta{
	StatusDraft:                  {StatusDraft, "Draft", "secondary", "default"},
	StatusCheckoutInitiated:      {StatusCheckoutInitiated, "Checkout initiated", "secondary", "default"},
	StatusAwaitingPayment:        {StatusAwaitingPayment, "Awaiting payment", "warning", "default"},
	StatusPaid:                   {StatusPaid, "Paid (awaiting operator)", "info", "default"},
	StatusProcessing:             {StatusProcessing, "Processing by operator", "primary", "default"},
	StatusAwaitingInfo:           {StatusAwaitingInfo, "Details needed", "warning", "default"},
	StatusReady:                  {StatusReady, "Ready to send", "info", "default"},
	StatusLinksSent:              {StatusLinksSent, "Links sent", "primary", "default"},
	StatusCompleted:              {StatusCompleted, "Completed", "success", "default"},
	StatusCompletedPartialRefund: {StatusCompletedPartialRefund, "Completed (partial refund)", "success", "default"},
	StatusRefundRequired:         {StatusRefundRequired, "Refund required", "warning", "default"},
	StatusRefundedPartial:        {StatusRefundedPartial, "Partially refunded", "warning", "default"},
	StatusRefundedFull:           {StatusRefundedFull, "Fully refunded", "danger", "default"},
	StatusCancelledUnpaid:        {StatusCancelledUnpaid, "Cancelled (unpaid)", "secondary", "cancelled"},
	StatusCancelledManual:        {StatusCancelledManual, "Cancelled manually", "dark", "cancelled"},
}

// legacyStatusAliases keeps old filter links working.
var legacyStatusAliases = map[string][]OrderStatus{
	"pending":         {StatusPaid},
	"pending_payment": {StatusAwaitingPayment},
	"cancelled":       {StatusCancelledUnpaid, StatusCancelledManual},
}

// StatusLabel returns the human-readable name for a status code. Unknown
// codes fall back to the code itself.
func StatusLabel(code OrderStatus) string {
	if meta, ok := statusDefinitions[code]; ok {
		return meta.Label
	}
	return string(code)
}

// StatusBadge returns the css badge class for a status code.
func StatusBadge(code OrderStatus) string {
	if meta, ok := statusDefinitions[code]; ok {
		return meta.Badge
	}
	return "secondary"
}

// ExpandStatusFilter resolves a filter value into the concrete status set,
// supporting legacy aliases like "cancelled".
func ExpandStatusFilter(value string) []OrderStatus {
	if value == "" {
		return nil
	}
	if _, ok := statusDefinitions[OrderStatus(value)]; ok {
		return []OrderStatus{OrderStatus(value)}
	}
	return legacyStatusAliases[value]
}

// StatusFilterChoices returns metadata for building filter dropdowns, in
// registry order, optionally with the aggregated "cancelled" choice appended.
func StatusFilterChoices(includeCancelledGroup bool) []StatusMeta {
	choices := make([]StatusMeta, 0, len(statusOrder)+1)
	for _, code := range statusOrder {
		choices = append(choices, statusDefinitions[code])
	}
	if includeCancelledGroup {
		choices = append(choices, StatusMeta{Code: "cancelled", Label: "Cancelled (all)", Badge: "dark", Category: "cancelled"})
	}
	return choices
}

// orderTransitions is the transition table consulted by CanTransition. All
// status legality decisions go through it; no call site re-derives legality
// inline.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusDraft:             {StatusCheckoutInitiated, StatusAwaitingPayment, StatusCancelledManual},
	StatusCheckoutInitiated: {StatusAwaitingPayment, StatusPaid, StatusCancelledUnpaid, StatusCancelledManual},
	StatusAwaitingPayment:   {StatusPaid, StatusCancelledUnpaid, StatusCancelledManual},
	StatusPaid:              {StatusProcessing, StatusRefundRequired, StatusCancelledManual},
	StatusProcessing:        {StatusAwaitingInfo, StatusReady, StatusLinksSent, StatusRefundRequired, StatusCancelledManual},
	StatusAwaitingInfo:      {StatusProcessing, StatusLinksSent, StatusCancelledManual},
	StatusReady:             {StatusLinksSent, StatusCompleted, StatusCompletedPartialRefund, StatusCancelledManual},
	StatusLinksSent:         {StatusCompleted, StatusCompletedPartialRefund, StatusRefundRequired, StatusRefundedFull, StatusCancelledManual},
	StatusCompleted:         {StatusLinksSent, StatusCompletedPartialRefund, StatusRefundedFull},
	// Further partial refunds keep the order in the same quasi-terminal state.
	StatusCompletedPartialRefund: {StatusCompletedPartialRefund, StatusRefundedFull},
	StatusRefundRequired:         {StatusPaid, StatusProcessing, StatusLinksSent, StatusCompleted, StatusCompletedPartialRefund, StatusRefundedFull, StatusCancelledManual},
	StatusRefundedPartial:        {StatusRefundedFull, StatusCancelledManual},
	StatusRefundedFull:           {},
	StatusCancelledUnpaid:        {},
	StatusCancelledManual:        {},
}

// CanTransition reports whether moving an order from one status to another is
// legal per the transition table.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a status admits no further transitions
// except the explicit refund-from-completed path.
func IsTerminalStatus(s OrderStatus) bool {
	switch s {
	case StatusCompleted, StatusRefundedFull, StatusCancelledUnpaid, StatusCancelledManual:
		return true
	default:
		return false
	}
}
