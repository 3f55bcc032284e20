package handlers

import (
	"log/slog"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application/services"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/config"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/interfaces/rest/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP endpoints over the application services.
type Handlers struct {
	checkout *services.CheckoutService
	webhook  *services.WebhookService
	operator *services.OperatorService
	finance  *services.FinanceService
	admin    *services.AdminService
	ledger   *services.LedgerService

	gatewayCfg config.GatewayConfig
	logger     *slog.Logger
}

func NewHandlers(
	checkout *services.CheckoutService,
	webhook *services.WebhookService,
	operator *services.OperatorService,
	finance *services.FinanceService,
	admin *services.AdminService,
	ledger *services.LedgerService,
	gatewayCfg config.GatewayConfig,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		checkout:   checkout,
		webhook:    webhook,
		operator:   operator,
		finance:    finance,
		admin:      admin,
		ledger:     ledger,
		gatewayCfg: gatewayCfg,
		logger:     logger,
	}
}

// RegisterRoutes wires every endpoint onto the router. Webhooks and the
// storefront are open; staff routes sit behind the auth proxy headers.
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	store := r.Group("/api/v1")
	{
		store.POST("/orders", h.CreateOrder)
		store.POST("/orders/:number/checkout", h.BeginCheckout)
		store.GET("/orders/:number", h.GetOrder)
	}

	hooks := r.Group("/api/v1/webhooks/payment")
	{
		hooks.POST("/check", h.WebhookCheck)
		hooks.POST("/pay", h.WebhookPay)
		hooks.POST("/fail", h.WebhookFail)
		hooks.POST("/confirm", h.WebhookConfirm)
		hooks.POST("/refund", h.WebhookRefund)
		hooks.POST("/cancel", h.WebhookCancel)
	}

	staff := r.Group("/api/v1/staff", middleware.StaffAuth(h.logger))
	{
		staff.GET("/statuses", h.StatusChoices)
		staff.GET("/orders", h.ListOrders)
		staff.GET("/orders/:number", h.StaffGetOrder)
		staff.POST("/orders/:number/claim", h.ClaimOrder)
		staff.POST("/orders/:number/links", h.SendLinks)
		staff.POST("/orders/:number/request-info", h.RequestInfo)
		staff.POST("/orders/:number/resume", h.ResumeProcessing)
		staff.POST("/orders/:number/ready", h.MarkReady)
		staff.POST("/orders/:number/refund-flag", h.FlagRefund)
		staff.DELETE("/orders/:number/refund-flag", h.UnflagRefund)
		staff.PUT("/orders/:number/comments", h.UpdateComments)

		staff.POST("/orders/:number/capture", h.Capture)
		staff.POST("/orders/:number/refund", h.Refund)
		staff.POST("/orders/:number/void", h.Void)
		staff.POST("/orders/:number/cancel", h.CancelManual)
		staff.GET("/orders/:number/totals", h.Totals)
		staff.GET("/orders/:number/payments", h.PaymentHistory)

		staff.PUT("/settings/payment-ttl", h.SetPaymentTTL)
	}
}
