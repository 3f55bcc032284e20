package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application/services"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/interfaces/rest"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/interfaces/rest/middleware"
	"github.com/gin-gonic/gin"
)

// StatusChoices lists the statuses the staff views can filter by, including
// the aggregated cancelled group.
func (h *Handlers) StatusChoices(c *gin.Context) {
	type choice struct {
		Code  string `json:"code"`
		Label string `json:"label"`
		Badge string `json:"badge"`
	}

	var out []choice
	for _, meta := range domain.StatusFilterChoices(true) {
		out = append(out, choice{
			Code:  string(meta.Code),
			Label: meta.Label,
			Badge: meta.Badge,
		})
	}

	respond(c, http.StatusOK, out)
}

// ListOrders serves the staff work queue. Filters are optional; the service
// clamps the page size.
func (h *Handlers) ListOrders(c *gin.Context) {
	filter := application.OrderFilter{}

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, domain.ExpandStatusFilter(strings.TrimSpace(s))...)
		}
	}
	if raw := c.Query("operator_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			rest.WriteError(c, application.NewInvalidInputError(fmt.Errorf("invalid operator_id: %q", raw)), h.logger)
			return
		}
		filter.OperatorID = &id
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))
	filter.Offset, _ = strconv.Atoi(c.Query("offset"))

	orders, err := h.ledger.ListOrders(c.Request.Context(), middleware.Actor(c), filter)
	if err != nil {
		rest.WriteError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, rest.ToOrderResponses(orders))
}

func (h *Handlers) StaffGetOrder(c *gin.Context) {
	order, err := h.ledger.GetOrder(c.Request.Context(), c.Param("number"))
	if err != nil {
		rest.WriteError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, rest.ToOrderResponse(order))
}

func (h *Handlers) ClaimOrder(c *gin.Context) {
	h.runOrderAction(c, func(actor domain.Actor, number string) (*domain.Order, error) {
		return h.operator.Claim(c.Request.Context(), actor, number)
	})
}

type sendLinksRequest struct {
	Links string `json:"links" binding:"required"`
}

func (h *Handlers) SendLinks(c *gin.Context) {
	var req sendLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rest.WriteError(c, application.NewInvalidInputError(fmt.Errorf("invalid request body: %w", err)), h.logger)
		return
	}

	h.runOrderAction(c, func(actor domain.Actor, number string) (*domain.Order, error) {
		return h.operator.SendLinks(c.Request.Context(), actor, services.SendLinksCommand{
			OrderNumber: number,
			Links:       req.Links,
		})
	})
}

func (h *Handlers) RequestInfo(c *gin.Context) {
	h.runOrderAction(c, func(actor domain.Actor, number string) (*domain.Order, error) {
		return h.operator.RequestInfo(c.Request.Context(), actor, number)
	})
}

func (h *Handlers) ResumeProcessing(c *gin.Context) {
	h.runOrderAction(c, func(actor domain.Actor, number string) (*domain.Order, error) {
		return h.operator.ResumeProcessing(c.Request.Context(), actor, number)
	})
}

func (h *Handlers) MarkReady(c *gin.Context) {
	h.runOrderAction(c, func(actor domain.Actor, number string) (*domain.Order, error) {
		return h.operator.MarkReady(c.Request.Context(), actor, number)
	})
}

type reasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handlers) FlagRefund(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rest.WriteError(c, application.NewInvalidInputError(fmt.Errorf("invalid request body: %w", err)), h.logger)
		return
	}

	h.runOrderAction(c, func(actor domain.Actor, number string) (*domain.Order, error) {
		return h.operator.FlagRefund(c.Request.Context(), actor, number, req.Reason)
	})
}

func (h *Handlers) UnflagRefund(c *gin.Context) {
	h.runOrderAction(c, func(actor domain.Actor, number string) (*domain.Order, error) {
		return h.operator.UnflagRefund(c.Request.Context(), actor, number)
	})
}

type commentsRequest struct {
	Comments string `json:"comments"`
}

func (h *Handlers) UpdateComments(c *gin.Context) {
	var req commentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rest.WriteError(c, application.NewInvalidInputError(fmt.Errorf("invalid request body: %w", err)), h.logger)
		return
	}

	h.runOrderAction(c, func(actor domain.Actor, number string) (*domain.Order, error) {
		return h.operator.UpdateComments(c.Request.Context(), actor, number, req.Comments)
	})
}

type captureRequest struct {
	// Amount empty means capture the full authorized amount.
	Amount string `json:"amount"`
}

func (h *Handlers) Capture(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		rest.WriteError(c, application.NewInvalidInputError(fmt.Errorf("invalid request body: %w", err)), h.logger)
		return
	}

	var amountCents int64
	if req.Amount != "" {
		parsed, err := domain.ParseAmount(req.Amount)
		if err != nil {
			rest.WriteError(c, application.NewInvalidInputError(err), h.logger)
			return
		}
		amountCents = parsed
	}

	h.runOrderAction(c, func(actor domain.Actor, number string) (*domain.Order, error) {
		return h.finance.Capture(c.Request.Context(), actor, services.CaptureCommand{
			OrderNumber: number,
			AmountCents: amountCents,
		})
	})
}

type refundRequest struct {
	Amount        string `json:"amount" binding:"required"`
	TransactionID string `json:"transactionId"`
	Reason        string `json:"reason"`
}

func (h *Handlers) Refund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rest.WriteError(c, application.NewInvalidInputError(fmt.Errorf("invalid request body: %w", err)), h.logger)
		return
	}

	amountCents, err := domain.ParseAmount(req.Amount)
	if err != nil {
		rest.WriteError(c, application.NewInvalidInputError(err), h.logger)
		return
	}

	h.runOrderAction(c, func(actor domain.Actor, number string) (*domain.Order, error) {
		return h.finance.Refund(c.Request.Context(), actor, services.RefundCommand{
			OrderNumber:   number,
			TransactionID: req.TransactionID,
			AmountCents:   amountCents,
			Reason:        req.Reason,
		})
	})
}

func (h *Handlers) Void(c *gin.Context) {
	h.runOrderAction(c, func(actor domain.Actor, number string) (*domain.Order, error) {
		return h.finance.Void(c.Request.Context(), actor, number)
	})
}

func (h *Handlers) CancelManual(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rest.WriteError(c, application.NewInvalidInputError(fmt.Errorf("invalid request body: %w", err)), h.logger)
		return
	}

	h.runOrderAction(c, func(actor domain.Actor, number string) (*domain.Order, error) {
		return h.admin.CancelManual(c.Request.Context(), actor, number, req.Reason)
	})
}

func (h *Handlers) Totals(c *gin.Context) {
	totals, err := h.ledger.Totals(c.Request.Context(), middleware.Actor(c), c.Param("number"))
	if err != nil {
		rest.WriteError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"captured":  domain.FormatAmount(totals.CapturedCents),
		"refunded":  domain.FormatAmount(totals.RefundedCents),
		"available": domain.FormatAmount(totals.AvailableCents),
	})
}

func (h *Handlers) PaymentHistory(c *gin.Context) {
	rows, err := h.ledger.History(c.Request.Context(), middleware.Actor(c), c.Param("number"))
	if err != nil {
		rest.WriteError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, rest.ToPaymentResponses(rows))
}

type paymentTTLRequest struct {
	Minutes int `json:"minutes" binding:"required"`
}

func (h *Handlers) SetPaymentTTL(c *gin.Context) {
	var req paymentTTLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rest.WriteError(c, application.NewInvalidInputError(fmt.Errorf("invalid request body: %w", err)), h.logger)
		return
	}

	if err := h.admin.SetPaymentTTL(c.Request.Context(), middleware.Actor(c), req.Minutes); err != nil {
		rest.WriteError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, gin.H{"paymentTtlMinutes": req.Minutes})
}

// runOrderAction wraps the shared read-path of the staff mutations: resolve
// the actor, run the action against the order number from the route, render
// the updated order.
func (h *Handlers) runOrderAction(c *gin.Context, action func(domain.Actor, string) (*domain.Order, error)) {
	order, err := action(middleware.Actor(c), c.Param("number"))
	if err != nil {
		rest.WriteError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, rest.ToOrderResponse(order))
}
