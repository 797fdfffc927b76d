package cashier

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrDuplicateReceipt is returned by SaveReceipt when the receipt number
// lost the check-and-insert race. The pre-check in Validate is advisory;
// this is the authoritative answer.
var ErrDuplicateReceipt = errors.New("receipt number already exists")

var ErrReceiptNotFound = errors.New("receipt not found")

// Store persists accepted transactions and the derived ledger rows.
type Store interface {
	// ReceiptNoTaken is the advisory pre-check used during validation.
	ReceiptNoTaken(ctx context.Context, receiptNo string) (bool, error)
	// SaveReceipt atomically inserts the receipt, its line items, the
	// per-item ledger charges and the payment entry. Returns
	// ErrDuplicateReceipt when the receipt number is already persisted.
	SaveReceipt(ctx context.Context, r Receipt) (Receipt, error)
	GetReceipt(ctx context.Context, id string) (Receipt, error)
	ListReceipts(ctx context.Context, studentID string, limit, offset int) ([]Receipt, error)
	// StudentLedger returns the append-only entries plus the running
	// balance (charges minus payments).
	StudentLedger(ctx context.Context, studentID string) ([]LedgerEntry, decimal.Decimal, error)
}

type memoryStore struct {
	mu       sync.Mutex
	receipts map[string]Receipt // by ID
	byNo     map[string]string  // receipt_no -> ID
	ledger   []LedgerEntry
}

// NewInMemoryStore backs tests and the demo mode; the gateway uses the
// SQL store.
func NewInMemoryStore() Store {
	return &memoryStore{
		receipts: map[string]Receipt{},
		byNo:     map[string]string{},
	}
}

func (m *memoryStore) ReceiptNoTaken(_ context.Context, receiptNo string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byNo[receiptNo]
	return ok, nil
}

func (m *memoryStore) SaveReceipt(_ context.Context, r Receipt) (Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byNo[r.ReceiptNo]; ok {
		return Receipt{}, ErrDuplicateReceipt
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
	m.receipts[r.ID] = r
	m.byNo[r.ReceiptNo] = r.ID
	for _, it := range r.Items {
		m.ledger = append(m.ledger, LedgerEntry{
			ID:          uuid.NewString(),
			StudentID:   r.StudentID,
			ReceiptID:   r.ID,
			Type:        EntryCharge,
			Description: it.Description,
			Amount:      it.Amount,
			CreatedAt:   r.CreatedAt,
		})
	}
	m.ledger = append(m.ledger, LedgerEntry{
		ID:          uuid.NewString(),
		StudentID:   r.StudentID,
		ReceiptID:   r.ID,
		Type:        EntryPayment,
		Description: "OR " + r.ReceiptNo,
		Amount:      r.Total,
		CreatedAt:   r.CreatedAt,
	})
	return r, nil
}

func (m *memoryStore) GetReceipt(_ context.Context, id string) (Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.receipts[id]
	if !ok {
		return Receipt{}, ErrReceiptNotFound
	}
	return r, nil
}

// ListReceipts pages newest-first, the same contract as the SQL store.
func (m *memoryStore) ListReceipts(_ context.Context, studentID string, limit, offset int) ([]Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	out := make([]Receipt, 0)
	for _, r := range m.receipts {
		if studentID == "" || r.StudentID == studentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	if offset >= len(out) {
		return []Receipt{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) StudentLedger(_ context.Context, studentID string) ([]LedgerEntry, decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LedgerEntry, 0)
	balance := decimal.Zero
	for _, e := range m.ledger {
		if e.StudentID != studentID {
			continue
		}
		out = append(out, e)
		switch e.Type {
		case EntryCharge:
			balance = balance.Add(e.Amount)
		case EntryPayment:
			balance = balance.Sub(e.Amount)
		}
	}
	return out, balance, nil
}
