package cashier

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SQLStore persists receipts and ledger entries over database/sql. Works
// against both the sqlite and postgres schemas ensured by internal/db.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) ReceiptNoTaken(ctx context.Context, receiptNo string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM receipts WHERE receipt_no=$1`, receiptNo).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveReceipt writes the receipt, its items and the derived ledger rows in
// one DB transaction. The UNIQUE constraint on receipts.receipt_no settles
// concurrent submissions with the same number: the loser's insert fails
// and surfaces as ErrDuplicateReceipt.
func (s *SQLStore) SaveReceipt(ctx context.Context, r Receipt) (Receipt, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Receipt{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO receipts
		(id, receipt_no, student_id, payment_mode, total, tendered, change, cashier_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		r.ID, r.ReceiptNo, r.StudentID, string(r.Mode),
		r.Total.String(), r.Tendered.String(), r.Change.String(), r.CashierID, r.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Receipt{}, ErrDuplicateReceipt
		}
		return Receipt{}, err
	}

	for i, it := range r.Items {
		feeID := sql.NullString{String: it.FeeID, Valid: it.FeeID != ""}
		itemID := sql.NullString{String: it.ItemID, Valid: it.ItemID != ""}
		_, err = tx.ExecContext(ctx, `INSERT INTO receipt_items
			(id, receipt_id, position, kind, description, amount, fee_id, item_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			uuid.NewString(), r.ID, i+1, string(it.Kind), it.Description, it.Amount.String(), feeID, itemID)
		if err != nil {
			return Receipt{}, err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO ledger_entries
			(id, student_id, receipt_id, entry_type, description, amount, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.NewString(), r.StudentID, r.ID, string(EntryCharge), it.Description, it.Amount.String(), r.CreatedAt)
		if err != nil {
			return Receipt{}, err
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO ledger_entries
		(id, student_id, receipt_id, entry_type, description, amount, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		uuid.NewString(), r.StudentID, r.ID, string(EntryPayment), "OR "+r.ReceiptNo, r.Total.String(), r.CreatedAt)
	if err != nil {
		return Receipt{}, err
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return Receipt{}, ErrDuplicateReceipt
		}
		return Receipt{}, err
	}
	return r, nil
}

func (s *SQLStore) GetReceipt(ctx context.Context, id string) (Receipt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, receipt_no, student_id, payment_mode, total, tendered, change, cashier_id, created_at
		FROM receipts WHERE id=$1`, id)
	r, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Receipt{}, ErrReceiptNotFound
		}
		return Receipt{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT kind, description, amount, fee_id, item_id
		FROM receipt_items WHERE receipt_id=$1 ORDER BY position`, id)
	if err != nil {
		return Receipt{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it LineItem
		var kind, amount string
		var feeID, itemID sql.NullString
		if err := rows.Scan(&kind, &it.Description, &amount, &feeID, &itemID); err != nil {
			return Receipt{}, err
		}
		it.Kind = ItemKind(kind)
		it.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return Receipt{}, err
		}
		it.FeeID, it.ItemID = feeID.String, itemID.String
		r.Items = append(r.Items, it)
	}
	return r, rows.Err()
}

func (s *SQLStore) ListReceipts(ctx context.Context, studentID string, limit, offset int) ([]Receipt, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT id, receipt_no, student_id, payment_mode, total, tendered, change, cashier_id, created_at
		FROM receipts`
	args := []any{}
	if studentID != "" {
		q += ` WHERE student_id=$1`
		args = append(args, studentID)
		q += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	} else {
		q += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Receipt, 0, limit)
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) StudentLedger(ctx context.Context, studentID string) ([]LedgerEntry, decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, student_id, receipt_id, entry_type, description, amount, created_at
		FROM ledger_entries WHERE student_id=$1 ORDER BY created_at, id`, studentID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer rows.Close()

	out := make([]LedgerEntry, 0)
	balance := decimal.Zero
	for rows.Next() {
		var e LedgerEntry
		var receiptID sql.NullString
		var typ, amount string
		if err := rows.Scan(&e.ID, &e.StudentID, &receiptID, &typ, &e.Description, &amount, &e.CreatedAt); err != nil {
			return nil, decimal.Zero, err
		}
		e.ReceiptID = receiptID.String
		e.Type = EntryType(typ)
		e.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, decimal.Zero, err
		}
		switch e.Type {
		case EntryCharge:
			balance = balance.Add(e.Amount)
		case EntryPayment:
			balance = balance.Sub(e.Amount)
		}
		out = append(out, e)
	}
	return out, balance, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (Receipt, error) {
	var r Receipt
	var mode, total, tendered, change string
	if err := row.Scan(&r.ID, &r.ReceiptNo, &r.StudentID, &mode, &total, &tendered, &change, &r.CashierID, &r.CreatedAt); err != nil {
		return Receipt{}, err
	}
	r.Mode = PaymentMode(mode)
	var err error
	if r.Total, err = decimal.NewFromString(total); err != nil {
		return Receipt{}, err
	}
	if r.Tendered, err = decimal.NewFromString(tendered); err != nil {
		return Receipt{}, err
	}
	if r.Change, err = decimal.NewFromString(change); err != nil {
		return Receipt{}, err
	}
	return r, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
