package http

import (
	"net/http"

	"giveaway-settlement/internal/common/errors"
	"giveaway-settlement/internal/common/middleware"
	"giveaway-settlement/internal/features/payments/models/dto"
	paymentsservice "giveaway-settlement/internal/features/payments/service"
	"giveaway-settlement/internal/platform/paystack"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentsHandler struct {
	topups        paymentsservice.TopUpService
	reconciler    *paymentsservice.Reconciler
	webhookSecret string
	logger        *zap.Logger
}

func NewPaymentsHandler(topups paymentsservice.TopUpService, reconciler *paymentsservice.Reconciler, webhookSecret string, logger *zap.Logger) *PaymentsHandler {
	return &PaymentsHandler{
		topups:        topups,
		reconciler:    reconciler,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

func (h *PaymentsHandler) RegisterRoutes(router *gin.RouterGroup) {
	wrap := middleware.HandleErrorWrapper(h.logger)

	router.POST("/giveaways/:id/topup", middleware.RequireUser(h.logger), wrap(h.topUp))

	paystackGroup := router.Group("/payments/paystack")
	{
		paystackGroup.GET("/callback", wrap(h.callback))
		paystackGroup.POST("/webhook", middleware.PaystackSignature(h.webhookSecret, h.logger), h.webhook)
	}
}

func (h *PaymentsHandler) topUp(c *gin.Context) {
	var input dto.TopUpRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(errors.NewValidationError("email", err.Error()))
			return
		}
	}
	email := input.Email
	if email == "" {
		email = middleware.UserEmail(c)
	}

	userID, _ := middleware.UserID(c)
	res, err := h.topups.Initiate(c.Request.Context(), userID, email, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// callback is where the gateway redirects the payer after checkout.
func (h *PaymentsHandler) callback(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		reference = c.Query("trxref")
	}
	if reference == "" {
		_ = c.Error(errors.NewValidationError("reference", "reference is required"))
		return
	}

	out, err := h.reconciler.Verify(c.Request.Context(), reference)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// webhook acknowledges every signed event. Processing failures are logged; the gateway is not
// asked to redeliver.
func (h *PaymentsHandler) webhook(c *gin.Context) {
	body := c.MustGet(middleware.WebhookBodyKey).([]byte)

	ev, err := paystack.ParseEvent(body)
	if err != nil {
		h.logger.Warn("Malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	if err := h.reconciler.HandleWebhook(c.Request.Context(), ev); err != nil {
		h.logger.Error("Failed to process webhook",
			zap.String("event", ev.Event),
			zap.String("reference", ev.Data.Reference),
			zap.Error(err),
		)
	}
	c.JSON(http.StatusOK, gin.H{})
}
