package service

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lms-payment-gateway/internal/domain/callback"
	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, txn *payment.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByReference(ctx context.Context, reference string) (*payment.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockPaymentRepository) Settle(ctx context.Context, reference string, s payment.Settlement) (bool, error) {
	args := m.Called(ctx, reference, s)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) HasCompletedPayment(ctx context.Context, userID, courseID int64) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) WithTx(tx pgx.Tx) payment.Repository {
	return m
}

type MockGrantQueuer struct {
	mock.Mock
}

func (m *MockGrantQueuer) QueueGrant(ctx context.Context, tx pgx.Tx, txn *payment.Transaction, paidAt time.Time, correlationID string) error {
	args := m.Called(ctx, tx, txn, paidAt, correlationID)
	return args.Error(0)
}

type MockCallbackRepository struct {
	mock.Mock
}

func (m *MockCallbackRepository) Create(ctx context.Context, record *callback.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockCallbackRepository) GetByReference(ctx context.Context, reference string, limit, offset int) ([]*callback.Record, error) {
	args := m.Called(ctx, reference, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*callback.Record), args.Error(1)
}

func (m *MockCallbackRepository) CountByReference(ctx context.Context, reference string) (int64, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(int64), args.Error(1)
}

// fakeTxExecutor runs fn with a nil tx and reports fn's error, like a commit or rollback.
type fakeTxExecutor struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTxExecutor) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return fn(nil)
}

// recordingAudit keeps every record it is given.
type recordingAudit struct {
	mu      sync.Mutex
	records []*callback.Record
}

func (a *recordingAudit) Record(_ context.Context, record *callback.Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, record)
}

func (a *recordingAudit) last() *callback.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.records) == 0 {
		return nil
	}
	return a.records[len(a.records)-1]
}

// memoryStore is an in-memory payment.Repository whose Settle is a real compare-and-swap.
// Rollback is not modelled, which is enough for the reconciler's single write.
type memoryStore struct {
	mu           sync.Mutex
	transactions map[string]*payment.Transaction
	settles      int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{transactions: make(map[string]*payment.Transaction)}
}

func (s *memoryStore) Create(_ context.Context, txn *payment.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[txn.Reference]; ok {
		return payment.ErrDuplicateReference{Reference: txn.Reference}
	}
	cp := *txn
	s.transactions[txn.Reference] = &cp
	return nil
}

func (s *memoryStore) GetByReference(_ context.Context, reference string) (*payment.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[reference]
	if !ok {
		return nil, payment.ErrTransactionNotFound{Reference: reference}
	}
	cp := *txn
	return &cp, nil
}

func (s *memoryStore) Settle(_ context.Context, reference string, st payment.Settlement) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[reference]
	if !ok || txn.Status != payment.StatusPending {
		return false, nil
	}
	txn.Status = st.Status
	txn.GatewayTransactionID = st.GatewayTransactionID
	txn.BankCode = st.BankCode
	txn.ResponseCode = st.ResponseCode
	txn.PaidAt = st.PaidAt
	s.settles++
	return true, nil
}

func (s *memoryStore) HasCompletedPayment(_ context.Context, userID, courseID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range s.transactions {
		if txn.UserID == userID && txn.CourseID == courseID && txn.Status == payment.StatusSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) WithTx(pgx.Tx) payment.Repository {
	return s
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

// countingGrants counts queued grants per reference.
type countingGrants struct {
	mu     sync.Mutex
	grants map[string]int
}

func newCountingGrants() *countingGrants {
	return &countingGrants{grants: make(map[string]int)}
}

func (g *countingGrants) QueueGrant(_ context.Context, _ pgx.Tx, txn *payment.Transaction, _ time.Time, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grants[txn.Reference]++
	return nil
}

func (g *countingGrants) count(reference string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.grants[reference]
}
