package rest

import (
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
)

// OrderResponse is the wire shape of an order for both storefront and staff
// clients. Staff-only fields are pointers and omitted for customers.
type OrderResponse struct {
	Number        string     `json:"number"`
	DisplayNumber string     `json:"displayNumber"`
	Status        string     `json:"status"`
	StatusLabel   string     `json:"statusLabel"`
	StatusBadge   string     `json:"statusBadge"`
	Total         string     `json:"total"`
	Paid          string     `json:"paid"`
	Currency      string     `json:"currency"`
	Email         string     `json:"email,omitempty"`
	OperatorID    *int64     `json:"operatorId,omitempty"`
	VideoLinks    *string    `json:"videoLinks,omitempty"`
	RefundReason  *string    `json:"refundReason,omitempty"`
	CancelReason  *string    `json:"cancelReason,omitempty"`
	Comments      *string    `json:"comments,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// PaymentResponse is one ledger row in the finance views.
type PaymentResponse struct {
	TransactionID    string    `json:"transactionId"`
	Amount           string    `json:"amount"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	Method           string    `json:"method"`
	IsRefund         bool      `json:"isRefund"`
	ReceiptConfirmed bool      `json:"receiptConfirmed"`
	CreatedAt        time.Time `json:"createdAt"`
}

func ToOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		Number:        o.Number,
		DisplayNumber: o.DisplayNumber,
		Status:        string(o.Status),
		StatusLabel:   domain.StatusLabel(o.Status),
		StatusBadge:   domain.StatusBadge(o.Status),
		Total:         domain.FormatAmount(o.TotalCents),
		Paid:          domain.FormatAmount(o.PaidCents),
		Currency:      o.Currency,
		Email:         o.CustomerEmail,
		OperatorID:    o.OperatorID,
		VideoLinks:    o.VideoLinks,
		RefundReason:  o.RefundReason,
		CancelReason:  o.CancelReason,
		Comments:      o.Comments,
		ExpiresAt:     o.PaymentExpiresAt,
		CreatedAt:     o.CreatedAt,
	}
}

// ToPublicOrderResponse strips staff-only fields for the customer status
// page.
func ToPublicOrderResponse(o *domain.Order) OrderResponse {
	resp := ToOrderResponse(o)
	resp.Email = ""
	resp.OperatorID = nil
	resp.RefundReason = nil
	resp.Comments = nil
	return resp
}

func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		TransactionID:    p.TransactionID,
		Amount:           domain.FormatAmount(p.AmountCents),
		Currency:         p.Currency,
		Status:           string(p.Status),
		Method:           string(p.Method),
		IsRefund:         p.IsRefund(),
		ReceiptConfirmed: p.ReceiptConfirmed,
		CreatedAt:        p.CreatedAt,
	}
}

func ToPaymentResponses(rows []*domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, ToPaymentResponse(p))
	}
	return out
}

func ToOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out
}
