package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/lms-payment-gateway/internal/payment_gateway/middleware"
	"github.com/lms-payment-gateway/internal/payment_gateway/service"
)

// CallbackHandler receives VNPay's browser return and server-to-server IPN calls
type CallbackHandler struct {
	callbackService service.CallbackService
	statusPageURL   string
	logger          *slog.Logger
}

func NewCallbackHandler(logger *slog.Logger, callbackService service.CallbackService, statusPageURL string) *CallbackHandler {
	return &CallbackHandler{
		callbackService: callbackService,
		statusPageURL:   statusPageURL,
		logger:          logger,
	}
}

// IPN answers VNPay with {RspCode, Message}. It is always HTTP 200; VNPay reads the code.
func (h *CallbackHandler) IPN(c *gin.Context) {
	middleware.OnPanic(c, func(c *gin.Context) {
		c.JSON(http.StatusOK, IPNResponse{
			RspCode: payment.OutcomeInternalError.Code(),
			Message: payment.OutcomeInternalError.Message(),
		})
	})

	result := h.callbackService.HandleIPN(c.Request.Context(), h.input(c))

	c.JSON(http.StatusOK, IPNResponse{
		RspCode: result.Outcome.Code(),
		Message: result.Outcome.Message(),
	})
}

// Return redirects the buyer's browser to the status page
func (h *CallbackHandler) Return(c *gin.Context) {
	middleware.OnPanic(c, func(c *gin.Context) {
		c.Redirect(http.StatusFound, h.statusPage(&service.CallbackResult{Outcome: payment.OutcomeInternalError}))
	})

	result := h.callbackService.HandleReturn(c.Request.Context(), h.input(c))
	c.Redirect(http.StatusFound, h.statusPage(result))
}

func (h *CallbackHandler) input(c *gin.Context) *service.CallbackInput {
	return &service.CallbackInput{
		Query:         c.Request.URL.Query(),
		ClientIP:      c.ClientIP(),
		CorrelationID: middleware.GetCorrelationID(c),
	}
}

func (h *CallbackHandler) statusPage(result *service.CallbackResult) string {
	query := url.Values{}
	if result.Outcome == payment.OutcomeInternalError || result.Outcome == "" {
		query.Set("success", "false")
		query.Set("message", "Error")
	} else {
		query.Set("responseCode", result.ResponseCode)
		query.Set("reference", result.Reference)
		query.Set("amount", strconv.FormatInt(result.Amount, 10))
		query.Set("success", strconv.FormatBool(result.Succeeded))
		query.Set("message", returnMessage(result))
	}

	separator := "?"
	if strings.Contains(h.statusPageURL, "?") {
		separator = "&"
	}
	return h.statusPageURL + separator + query.Encode()
}

func returnMessage(result *service.CallbackResult) string {
	switch result.Outcome {
	case payment.OutcomeConfirmed:
		if result.Succeeded {
			return "Payment successful"
		}
		return "Payment failed"
	case payment.OutcomeAlreadyProcessed:
		return "Payment already processed"
	case payment.OutcomeUnknownOrder:
		return "Order not found"
	case payment.OutcomeAmountMismatch:
		return "Invalid amount"
	case payment.OutcomeInvalidSignature:
		return "Invalid signature"
	default:
		return "Error"
	}
}
