package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/lms-payment-gateway/internal/payment_gateway/service"
)

// TransactionHandler handles HTTP requests for payment transaction lookups
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// GetByReference retrieves a transaction by its gateway reference, returns 404 if not found
func (h *TransactionHandler) GetByReference(c *gin.Context) {
	reference := c.Param("reference")

	txn, err := h.transactionService.GetByReference(c.Request.Context(), reference)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound{}) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		h.logger.Error("Failed to get transaction", "reference", reference, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// GetCallbacks retrieves the paginated callback audit trail for a transaction, newest first
func (h *TransactionHandler) GetCallbacks(c *gin.Context) {
	reference := c.Param("reference")

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	records, total, err := h.transactionService.GetCallbacks(c.Request.Context(), reference, pagination.PerPage, pagination.offset())
	if err != nil {
		h.logger.Error("Failed to get callbacks", "reference", reference, "error", err)
		RespondInternalError(c)
		return
	}

	callbacks := make([]CallbackRecordResponse, 0, len(records))
	for _, record := range records {
		callbacks = append(callbacks, mapCallbackRecordToResponse(record))
	}

	RespondWithPaginatedData(c, http.StatusOK, callbacks, pagination.Page, pagination.PerPage, int(total))
}

// GetPaymentStatus reports whether the user has a successful payment for the course
func (h *TransactionHandler) GetPaymentStatus(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		RespondBadRequest(c, "Invalid user ID")
		return
	}
	courseID, err := strconv.ParseInt(c.Param("course_id"), 10, 64)
	if err != nil || courseID <= 0 {
		RespondBadRequest(c, "Invalid course ID")
		return
	}

	completed, err := h.transactionService.HasCompletedPayment(c.Request.Context(), userID, courseID)
	if err != nil {
		h.logger.Error("Failed to check payment status", "user_id", userID, "course_id", courseID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, PaymentStatusResponse{UserID: userID, CourseID: courseID, Completed: completed})
}
