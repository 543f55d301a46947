package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lms-payment-gateway/internal/domain/callback"
	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTransactionRouter(h *TransactionHandler) *gin.Engine {
	router := gin.New()
	router.GET("/transactions/:reference", h.GetByReference)
	router.GET("/transactions/:reference/callbacks", h.GetCallbacks)
	router.GET("/users/:user_id/courses/:course_id/payment-status", h.GetPaymentStatus)
	return router
}

func TestTransactionHandler_GetByReference(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		paidAt := time.Date(2024, 1, 15, 3, 35, 12, 0, time.UTC)
		mockService := new(MockTransactionService)
		mockService.On("GetByReference", mock.Anything, "ref42").Return(&payment.Transaction{
			Reference:            "ref42",
			UserID:               7,
			CourseID:             42,
			Amount:               50000000,
			Currency:             "VND",
			Method:               payment.MethodVNPay,
			Status:               payment.StatusSuccess,
			GatewayTransactionID: "14226112",
			PaidAt:               &paidAt,
			CreatedAt:            paidAt.Add(-5 * time.Minute),
		}, nil).Once()

		rr := getPath(newTransactionRouter(NewTransactionHandler(newTestLogger(), mockService)), "/transactions/ref42")

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp TypedResponse[TransactionResponse]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "ref42", resp.Data.Reference)
		assert.Equal(t, "500000", resp.Data.Amount.String())
		assert.Equal(t, "SUCCESS", resp.Data.Status)
		assert.Equal(t, "VNPAY", resp.Data.Method)
		assert.Equal(t, "2024-01-15T03:35:12Z", resp.Data.PaidAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockTransactionService)
		mockService.On("GetByReference", mock.Anything, "missing").
			Return(nil, payment.ErrTransactionNotFound{Reference: "missing"}).Once()

		rr := getPath(newTransactionRouter(NewTransactionHandler(newTestLogger(), mockService)), "/transactions/missing")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockTransactionService)
		mockService.On("GetByReference", mock.Anything, "ref42").Return(nil, errors.New("timeout")).Once()

		rr := getPath(newTransactionRouter(NewTransactionHandler(newTestLogger(), mockService)), "/transactions/ref42")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestTransactionHandler_GetCallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		records := []*callback.Record{
			{Reference: "ref42", Channel: callback.ChannelIPN, Outcome: "ALREADY_PROCESSED", SignatureValid: true, ReceivedAt: time.Now()},
			{Reference: "ref42", Channel: callback.ChannelReturn, Outcome: "CONFIRMED", SignatureValid: true, ReceivedAt: time.Now()},
		}
		mockService.On("GetCallbacks", mock.Anything, "ref42", 2, 2).Return(records, int64(5), nil).Once()

		rr := getPath(newTransactionRouter(NewTransactionHandler(newTestLogger(), mockService)), "/transactions/ref42/callbacks?page=2&per_page=2")

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp PaginatedResponse[CallbackRecordResponse]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "IPN", resp.Data[0].Channel)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 3, resp.Meta.TotalPages)
		assert.Equal(t, 5, resp.Meta.TotalItems)
		mockService.AssertExpectations(t)
	})

	t.Run("EmptyIsArray", func(t *testing.T) {
		mockService := new(MockTransactionService)
		mockService.On("GetCallbacks", mock.Anything, "ref42", 20, 0).Return([]*callback.Record{}, int64(0), nil).Once()

		rr := getPath(newTransactionRouter(NewTransactionHandler(newTestLogger(), mockService)), "/transactions/ref42/callbacks")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"data":[]`)
	})

	t.Run("InvalidPagination", func(t *testing.T) {
		mockService := new(MockTransactionService)
		rr := getPath(newTransactionRouter(NewTransactionHandler(newTestLogger(), mockService)), "/transactions/ref42/callbacks?per_page=1000")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetCallbacks", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTransactionHandler_GetPaymentStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Completed", func(t *testing.T) {
		mockService := new(MockTransactionService)
		mockService.On("HasCompletedPayment", mock.Anything, int64(7), int64(42)).Return(true, nil).Once()

		rr := getPath(newTransactionRouter(NewTransactionHandler(newTestLogger(), mockService)), "/users/7/courses/42/payment-status")

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp TypedResponse[PaymentStatusResponse]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, PaymentStatusResponse{UserID: 7, CourseID: 42, Completed: true}, resp.Data)
	})

	t.Run("InvalidIDs", func(t *testing.T) {
		mockService := new(MockTransactionService)
		router := newTransactionRouter(NewTransactionHandler(newTestLogger(), mockService))

		assert.Equal(t, http.StatusBadRequest, getPath(router, "/users/abc/courses/42/payment-status").Code)
		assert.Equal(t, http.StatusBadRequest, getPath(router, "/users/7/courses/0/payment-status").Code)
		mockService.AssertNotCalled(t, "HasCompletedPayment", mock.Anything, mock.Anything, mock.Anything)
	})
}
