package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lms-payment-gateway/internal/config"
	"github.com/lms-payment-gateway/internal/domain/callback"
	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/lms-payment-gateway/internal/platform/vnpay"
)

type CallbackServiceImpl struct {
	verifier    CallbackVerifier
	reconciler  Reconciler
	paymentRepo payment.Repository
	audit       AuditRecorder
	returnMode  string
	logger      *slog.Logger
}

func NewCallbackService(
	logger *slog.Logger,
	cfg *config.PaymentConfig,
	verifier CallbackVerifier,
	reconciler Reconciler,
	paymentRepo payment.Repository,
	audit AuditRecorder,
) *CallbackServiceImpl {
	return &CallbackServiceImpl{
		verifier:    verifier,
		reconciler:  reconciler,
		paymentRepo: paymentRepo,
		audit:       audit,
		returnMode:  cfg.ReturnMode,
		logger:      logger,
	}
}

// HandleIPN processes the server-to-server notification. It is the authoritative channel.
func (s *CallbackServiceImpl) HandleIPN(ctx context.Context, in *CallbackInput) *CallbackResult {
	return s.handle(ctx, callback.ChannelIPN, in, true)
}

// HandleReturn processes the browser redirect. In advisory mode it only reports the
// stored state and leaves the transition to the IPN.
func (s *CallbackServiceImpl) HandleReturn(ctx context.Context, in *CallbackInput) *CallbackResult {
	return s.handle(ctx, callback.ChannelReturn, in, s.returnMode != config.ReturnModeAdvisory)
}

func (s *CallbackServiceImpl) handle(ctx context.Context, channel callback.Channel, in *CallbackInput, mutate bool) *CallbackResult {
	logger := s.logger.With("channel", string(channel), "client_ip", in.ClientIP)
	if in.CorrelationID != "" {
		logger = logger.With("correlation_id", in.CorrelationID)
	}

	record := &callback.Record{
		ID:            uuid.New(),
		Reference:     in.Query.Get(vnpay.ParamTxnRef),
		Channel:       channel,
		ClientIP:      in.ClientIP,
		CorrelationID: in.CorrelationID,
		ReceivedAt:    time.Now().UTC(),
	}
	result := &CallbackResult{
		Reference:    record.Reference,
		ResponseCode: in.Query.Get(vnpay.ParamResponseCode),
	}
	result.Amount, _ = strconv.ParseInt(in.Query.Get(vnpay.ParamAmount), 10, 64)

	defer func() {
		record.Outcome = string(result.Outcome)
		record.ResponseCode = result.ResponseCode
		s.audit.Record(ctx, record)
	}()

	verification, err := s.verifier.VerifyCallback(in.Query)
	if verification != nil {
		record.Params = verification.Params
	}
	if err != nil {
		logger.Error("Callback parameters could not be canonicalized",
			"reference", record.Reference,
			"params", record.Params,
			"error", err,
		)
		record.Error = err.Error()
		result.Outcome = payment.OutcomeInternalError
		return result
	}
	record.SignatureValid = verification.Verified

	if !verification.Verified {
		logger.Error("Callback signature verification failed", "reference", record.Reference)
		res, _ := s.reconciler.Reconcile(ctx, &ReconcileRequest{Reference: record.Reference, CorrelationID: in.CorrelationID})
		result.Outcome = res.Outcome
		return result
	}

	cb, err := s.verifier.ParseCallback(verification)
	if err != nil {
		logger.Warn("Verified callback has malformed fields", "reference", record.Reference, "error", err)
		record.Error = err.Error()
		result.Outcome = payment.OutcomeInternalError
		return result
	}
	result.Amount = cb.Amount

	var res payment.Result
	if mutate {
		res, err = s.reconciler.Reconcile(ctx, &ReconcileRequest{
			Reference:            cb.Reference,
			Verified:             true,
			Amount:               cb.Amount,
			Succeeded:            cb.Succeeded(),
			ResponseCode:         cb.ResponseCode,
			GatewayTransactionID: cb.GatewayTransactionID,
			BankCode:             cb.BankCode,
			PaidAt:               cb.PayDate,
			CorrelationID:        in.CorrelationID,
		})
	} else {
		res, err = s.inspect(ctx, cb)
	}
	if err != nil {
		record.Error = err.Error()
	}

	result.Outcome = res.Outcome
	result.Status = res.Status
	result.Succeeded = cb.Succeeded() &&
		(res.Outcome == payment.OutcomeConfirmed || res.Outcome == payment.OutcomeAlreadyProcessed)

	switch res.Outcome {
	case payment.OutcomeConfirmed, payment.OutcomeAlreadyProcessed:
		logger.Info("Callback processed",
			"reference", cb.Reference,
			"outcome", string(res.Outcome),
			"status", string(res.Status),
			"response_code", cb.ResponseCode,
		)
	case payment.OutcomeInternalError:
		// logged where the error occurred
	default:
		logger.Warn("Callback rejected", "reference", cb.Reference, "outcome", string(res.Outcome))
	}

	return result
}

// inspect compares the callback with the stored transaction without writing anything.
func (s *CallbackServiceImpl) inspect(ctx context.Context, cb *vnpay.Callback) (payment.Result, error) {
	txn, err := s.paymentRepo.GetByReference(ctx, cb.Reference)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound{}) {
			return payment.Result{Outcome: payment.OutcomeUnknownOrder}, nil
		}
		s.logger.Error("Failed to load transaction for return callback", "reference", cb.Reference, "error", err)
		return payment.Result{Outcome: payment.OutcomeInternalError}, err
	}
	if txn.Amount != cb.Amount {
		return payment.Result{Outcome: payment.OutcomeAmountMismatch, Status: txn.Status}, nil
	}
	return payment.Result{Outcome: payment.OutcomeConfirmed, Status: txn.Status}, nil
}
