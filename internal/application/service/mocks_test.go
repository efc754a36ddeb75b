package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/domain/entity"
	"github.com/garyjia/rendicion/internal/domain/receipt"
)

// Mock repositories
type mockExpenseRepo struct {
	mu         sync.Mutex
	expenses   []*entity.TripExpense
	createFunc func(ctx context.Context, e *entity.TripExpense) error
	listErr    error
}

func (m *mockExpenseRepo) Create(ctx context.Context, e *entity.TripExpense) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses = append(m.expenses, e)
	return nil
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, id string) (*entity.TripExpense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockExpenseRepo) List(ctx context.Context) ([]*entity.TripExpense, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entity.TripExpense(nil), m.expenses...), nil
}

func (m *mockExpenseRepo) ListByTrip(ctx context.Context, tripNumber int64) ([]*entity.TripExpense, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.TripExpense
	for _, e := range m.expenses {
		if e.TripNumber == tripNumber {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockExpenseRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.expenses {
		if e.ID == id {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			break
		}
	}
	return nil
}

type mockApprovalRepo struct {
	approvals map[int64]*entity.TripApproval
	saveFunc  func(ctx context.Context, a *entity.TripApproval) error
}

func newMockApprovalRepo() *mockApprovalRepo {
	return &mockApprovalRepo{approvals: make(map[int64]*entity.TripApproval)}
}

func (m *mockApprovalRepo) Save(ctx context.Context, a *entity.TripApproval) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, a)
	}
	m.approvals[a.TripNumber] = a
	return nil
}

func (m *mockApprovalRepo) GetByTrip(ctx context.Context, tripNumber int64) (*entity.TripApproval, error) {
	return m.approvals[tripNumber], nil
}

func (m *mockApprovalRepo) List(ctx context.Context) ([]*entity.TripApproval, error) {
	out := make([]*entity.TripApproval, 0, len(m.approvals))
	for _, a := range m.approvals {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TripNumber < out[j].TripNumber })
	return out, nil
}

func (m *mockApprovalRepo) Delete(ctx context.Context, tripNumber int64) error {
	delete(m.approvals, tripNumber)
	return nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockNotifier struct {
	tripApprovedFunc func(ctx context.Context, a *entity.TripApproval, count int) error
	sent             []*entity.TripApproval
}

func (m *mockNotifier) TripApproved(ctx context.Context, a *entity.TripApproval, count int) error {
	m.sent = append(m.sent, a)
	if m.tripApprovedFunc != nil {
		return m.tripApprovedFunc(ctx, a, count)
	}
	return nil
}

type staticCatalog struct{}

func (staticCatalog) Catalog() *receipt.Catalog { return receipt.DefaultCatalog() }

type mockReader struct {
	name   string
	result port.Result[*port.ReceiptReading]
	calls  int
}

func (m *mockReader) Name() string { return m.name }

func (m *mockReader) ReadReceipt(ctx context.Context, img port.ReceiptImage) port.Result[*port.ReceiptReading] {
	m.calls++
	return m.result
}

type mockOCR struct {
	recognizeFunc func(ctx context.Context, img port.ReceiptImage) (string, error)
}

func (m *mockOCR) Recognize(ctx context.Context, img port.ReceiptImage) (string, error) {
	return m.recognizeFunc(ctx, img)
}

type mockRasterizer struct {
	got []byte
}

func (m *mockRasterizer) FirstPageJPEG(ctx context.Context, pdf []byte) ([]byte, error) {
	m.got = pdf
	return []byte{0xFF, 0xD8, 0xFF, 0xE0}, nil
}

type mockStorage struct {
	saved map[string][]byte
}

func (m *mockStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[path] = content
	return nil
}

func (m *mockStorage) Read(ctx context.Context, path string) ([]byte, error) {
	return m.saved[path], nil
}

func (m *mockStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.saved[path]
	return ok
}

func (m *mockStorage) Delete(ctx context.Context, path string) error {
	delete(m.saved, path)
	return nil
}

type mockReportWriter struct {
	summary *entity.TripSummary
}

func (m *mockReportWriter) WriteTripReport(w io.Writer, s *entity.TripSummary) error {
	m.summary = s
	_, err := fmt.Fprintf(w, "trip %d", s.TripNumber)
	return err
}

type mockLogger struct {
	mu     sync.Mutex
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}
