package handlers

import (
	"fmt"
	"net/http"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application/services"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/interfaces/rest"
	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	Email    string   `json:"email" binding:"required"`
	Amount   string   `json:"amount" binding:"required"`
	Currency string   `json:"currency"`
	Items    []string `json:"items"`
}

// CreateOrder registers a draft order for the given videos.
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rest.WriteError(c, application.NewInvalidInputError(fmt.Errorf("invalid request body: %w", err)), h.logger)
		return
	}

	totalCents, err := domain.ParseAmount(req.Amount)
	if err != nil {
		rest.WriteError(c, application.NewInvalidInputError(err), h.logger)
		return
	}

	order, err := h.checkout.CreateOrder(c.Request.Context(), services.CreateOrderCommand{
		CustomerEmail: req.Email,
		TotalCents:    totalCents,
		Currency:      req.Currency,
		VideoItems:    req.Items,
	})
	if err != nil {
		rest.WriteError(c, err, h.logger)
		return
	}

	respond(c, http.StatusCreated, rest.ToPublicOrderResponse(order))
}

// BeginCheckout opens the payment window and returns the widget payload.
func (h *Handlers) BeginCheckout(c *gin.Context) {
	widget, err := h.checkout.BeginCheckout(c.Request.Context(), c.Param("number"))
	if err != nil {
		rest.WriteError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, widget)
}

// GetOrder serves the customer status page. Staff-only fields are stripped.
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.ledger.GetOrder(c.Request.Context(), c.Param("number"))
	if err != nil {
		rest.WriteError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, rest.ToPublicOrderResponse(order))
}
