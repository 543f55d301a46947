package handler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/lms-payment-gateway/internal/payment_gateway/middleware"
	"github.com/lms-payment-gateway/internal/payment_gateway/service"
	"github.com/lms-payment-gateway/internal/platform/vnpay"
)

// MerchantInfo exposes the merchant settings the gateway signs with
type MerchantInfo interface {
	Merchant() vnpay.MerchantConfig
}

// PaymentHandler handles HTTP requests for starting VNPay payments
type PaymentHandler struct {
	orderService service.OrderService
	merchant     MerchantInfo
	logger       *slog.Logger
}

func NewPaymentHandler(logger *slog.Logger, orderService service.OrderService, merchant MerchantInfo) *PaymentHandler {
	return &PaymentHandler{
		orderService: orderService,
		merchant:     merchant,
		logger:       logger,
	}
}

// Create builds a signed VNPay URL for a course purchase and records the PENDING transaction
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount, ok := vnpay.ToMinorUnits(req.Amount)
	if !ok {
		RespondValidationError(c, "amount must be positive with at most two decimal places")
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &service.CreateOrderRequest{
		UserID:        req.UserID,
		CourseID:      req.CourseID,
		Amount:        amount,
		OrderInfo:     req.OrderInfo,
		ReturnURL:     req.ReturnURL,
		Reference:     req.Reference,
		ClientIP:      c.ClientIP(),
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		var cfgErr *vnpay.ConfigurationError
		var validationErr *payment.ValidationError
		switch {
		case errors.As(err, &cfgErr):
			RespondConfigurationError(c, "VNPay is not configured: "+strings.Join(cfgErr.Problems, "; "))
		case errors.As(err, &validationErr):
			RespondValidationError(c, validationErr.Error())
		default:
			h.logger.Error("Failed to create payment order", "user_id", req.UserID, "course_id", req.CourseID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, CreatePaymentResponse{
		Reference:  order.Transaction.Reference,
		PaymentURL: order.PaymentURL,
		Amount:     vnpay.FromMinorUnits(order.Transaction.Amount),
		Reused:     order.Reused,
	})
}

// ConfigStatus reports which merchant settings are present. The hash secret is never returned.
func (h *PaymentHandler) ConfigStatus(c *gin.Context) {
	RespondOK(c, h.merchant.Merchant().Status())
}
