package cashier

import (
	"github.com/shopspring/decimal"
)

// PaymentMode is the closed set of tender types the cashier window accepts.
type PaymentMode string

const (
	ModeCash         PaymentMode = "cash"
	ModeGCash        PaymentMode = "gcash"
	ModeBankTransfer PaymentMode = "bank_transfer"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case ModeCash, ModeGCash, ModeBankTransfer:
		return true
	}
	return false
}

// ItemKind distinguishes the three charge sources on one receipt.
type ItemKind string

const (
	KindFee       ItemKind = "fee"
	KindInventory ItemKind = "inventory"
	KindCustom    ItemKind = "custom"
)

func (k ItemKind) Valid() bool {
	switch k {
	case KindFee, KindInventory, KindCustom:
		return true
	}
	return false
}

// LineItem is one charge component of a proposed transaction. Exactly one
// of FeeID/ItemID is set, matching Kind; custom items carry neither.
type LineItem struct {
	Kind        ItemKind        `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	FeeID       string          `json:"fee_id,omitempty"`
	ItemID      string          `json:"item_id,omitempty"`
}

// Transaction is a proposed cashier transaction, built from request input
// and validated before anything is persisted. The total is always derived
// from Items; there is no client-supplied total field.
type Transaction struct {
	StudentID string          `json:"student_id"`
	ReceiptNo string          `json:"receipt_no"`
	Mode      PaymentMode     `json:"payment_mode"`
	Tendered  decimal.Decimal `json:"tendered_amount"`
	Items     []LineItem      `json:"items"`
}

// Outcome is the success result of validation: the authoritative total and
// the change owed, computed from the same decimal sum used for the tender
// check.
type Outcome struct {
	Total  decimal.Decimal `json:"total"`
	Change decimal.Decimal `json:"change"`
}

// Receipt is the persisted, immutable form of an accepted transaction.
type Receipt struct {
	ID        string          `json:"id"`
	ReceiptNo string          `json:"receipt_no"`
	StudentID string          `json:"student_id"`
	Mode      PaymentMode     `json:"payment_mode"`
	Total     decimal.Decimal `json:"total"`
	Tendered  decimal.Decimal `json:"tendered"`
	Change    decimal.Decimal `json:"change"`
	CashierID string          `json:"cashier_id"`
	Items     []LineItem      `json:"items"`
	CreatedAt int64           `json:"created_at"`
}

// EntryType tags one side of the student ledger.
type EntryType string

const (
	EntryCharge  EntryType = "charge"
	EntryPayment EntryType = "payment"
)

// LedgerEntry is one append-only row in a student's charge/payment history.
type LedgerEntry struct {
	ID          string          `json:"id"`
	StudentID   string          `json:"student_id"`
	ReceiptID   string          `json:"receipt_id,omitempty"`
	Type        EntryType       `json:"entry_type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   int64           `json:"created_at"`
}
