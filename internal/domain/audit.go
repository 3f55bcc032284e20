package domain

import "time"

// Audit action codes. The set is append-only; renaming a code orphans the
// history already written under it.
const (
	ActionOrderCreated         = "ORDER_CREATED"
	ActionCheckoutInitiated    = "CHECKOUT_INITIATED"
	ActionPaymentAuthorized    = "PAYMENT_AUTHORIZED"
	ActionPaymentConfirmed     = "PAYMENT_CONFIRMED"
	ActionPaymentFailed        = "PAYMENT_FAILED"
	ActionPaymentVoided        = "PAYMENT_VOIDED"
	ActionOrderClaimed         = "ORDER_CLAIMED"
	ActionLinksSent            = "LINKS_SENT"
	ActionRefundFlagged        = "REFUND_FLAGGED"
	ActionRefundUnflagged      = "REFUND_UNFLAGGED"
	ActionPaymentCaptured      = "PAYMENT_CAPTURED"
	ActionReceiptConfirmed     = "RECEIPT_CONFIRMED"
	ActionRefundProcessed      = "REFUND_PROCESSED"
	ActionOrderCancelledManual = "ORDER_CANCELLED_MANUAL"
	ActionOrderAutoCancelled   = "ORDER_AUTO_CANCELLED_TIMEOUT"
)

// AuditEntry is one append-only row in the audit trail. ActorID is nil for
// system and webhook initiated actions.
type AuditEntry struct {
	ID           int64
	ActorID      *int64
	Action       string
	ResourceType string
	ResourceID   string
	Details      map[string]any
	IP           string
	UserAgent    string
	CreatedAt    time.Time
}

// NewAuditEntry builds an entry for an order resource.
func NewAuditEntry(actorID *int64, action, resourceType, resourceID string, details map[string]any) *AuditEntry {
	return &AuditEntry{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		CreatedAt:    time.Now(),
	}
}
