package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/wanderstay/service-booking/internal/application"
	"github.com/wanderstay/service-booking/internal/auth"
	"github.com/wanderstay/service-booking/internal/events"
	"github.com/wanderstay/service-booking/internal/middleware"
	"github.com/wanderstay/service-booking/internal/provider"
	"github.com/wanderstay/service-booking/internal/response"
)

const maxWebhookBodyBytes = 65536

// PaymentHandler handles HTTP requests for payment operations, including the
// provider webhook.
type PaymentHandler struct {
	service       *application.PaymentService
	webhookSecret string
	logger        *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService, webhookSecret string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:       service,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// RegisterRoutes registers payment routes. The webhook is unauthenticated;
// its trust comes from the provider signature, not a bearer token.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	payments := r.Group("/api/v1/payments")
	{
		payments.POST("/webhook", h.HandleWebhook)
	}

	authed := r.Group("/api/v1/bookings/:id/payments")
	authed.Use(authMW)
	{
		authed.POST("/intent", h.CreateIntent)
		authed.GET("", h.ListBookingPayments)
	}
}

// CreateIntent handles POST /api/v1/bookings/:id/payments/intent.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.CreateIntent(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookingPayments handles GET /api/v1/bookings/:id/payments.
func (h *PaymentHandler) ListBookingPayments(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBookingPayments(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// HandleWebhook handles POST /api/v1/payments/webhook. The payload signature
// is verified against the provider webhook secret before anything is
// processed. A non-2xx response makes the provider redeliver, so transient
// reconciliation failures are returned as errors while duplicates succeed as
// no-ops.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		response.BadRequest(c, "failed to read webhook body")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		h.handleIntentSucceeded(c, event)
	case "payment_intent.payment_failed":
		h.handleIntentFailed(c, event)
	default:
		h.logger.Debug("ignoring unhandled webhook event type",
			zap.String("type", string(event.Type)),
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *PaymentHandler) handleIntentSucceeded(c *gin.Context, event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		response.BadRequest(c, "malformed payment intent payload")
		return
	}

	bookingID, err := uuid.Parse(pi.Metadata[provider.MetadataBookingID])
	if err != nil {
		h.logger.Error("payment intent missing booking metadata",
			zap.String("provider_txn_id", pi.ID),
		)
		response.BadRequest(c, "payment intent carries no booking reference")
		return
	}

	req := application.ReconcileRequest{
		EventType:     events.PaymentSucceeded,
		ProviderTxnID: pi.ID,
		BookingID:     bookingID,
		AmountCents:   pi.Amount,
		Currency:      string(pi.Currency),
	}
	if pi.LatestCharge != nil {
		req.ReceiptURL = pi.LatestCharge.ReceiptURL
	}

	if err := h.service.Reconcile(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaymentHandler) handleIntentFailed(c *gin.Context, event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		response.BadRequest(c, "malformed payment intent payload")
		return
	}

	if err := h.service.RecordFailure(c.Request.Context(), pi.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
