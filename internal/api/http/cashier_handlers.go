package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/opencampus/opencampus-sis/internal/auth"
	"github.com/opencampus/opencampus-sis/internal/cashier"
	"github.com/opencampus/opencampus-sis/internal/fieldvalid"
	"github.com/opencampus/opencampus-sis/internal/money"
	"github.com/opencampus/opencampus-sis/internal/rbac"
)

// Amounts travel as JSON strings so nothing passes through binary floats
// on the way in.
type checkoutItemReq struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	FeeID       string `json:"fee_id,omitempty"`
	ItemID      string `json:"item_id,omitempty"`
}

type checkoutReq struct {
	StudentID string            `json:"student_id"`
	ReceiptNo string            `json:"receipt_no"`
	Mode      string            `json:"payment_mode"`
	Tendered  string            `json:"tendered_amount"`
	Items     []checkoutItemReq `json:"items"`
}

// parseTransaction turns the wire form into a typed transaction. Amounts
// that fail to parse become field failures; the validator then sees a zero
// amount and reports its own rules on top.
func parseTransaction(req checkoutReq) (cashier.Transaction, fieldvalid.FieldErrors) {
	var c fieldvalid.Collector
	tx := cashier.Transaction{
		StudentID: strings.TrimSpace(req.StudentID),
		ReceiptNo: strings.TrimSpace(req.ReceiptNo),
		Mode:      cashier.PaymentMode(req.Mode),
	}
	var err error
	if tx.Tendered, err = money.Parse(req.Tendered); err != nil {
		c.Add("tendered_amount", "Tendered amount must be a valid amount")
	}
	for i, it := range req.Items {
		li := cashier.LineItem{
			Kind:        cashier.ItemKind(it.Kind),
			Description: strings.TrimSpace(it.Description),
			FeeID:       it.FeeID,
			ItemID:      it.ItemID,
		}
		if li.Amount, err = money.Parse(it.Amount); err != nil {
			c.Add("items."+strconv.Itoa(i)+".amount", "Amount must be a valid amount")
		}
		tx.Items = append(tx.Items, li)
	}
	return tx, c.Err()
}

// POST /cashier/checkout
func CheckoutHandler(v *cashier.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		tx, parseErrs := parseTransaction(req)
		if parseErrs != nil {
			writeError(w, parseErrs)
			return
		}
		receipt, err := v.Checkout(r.Context(), tx, auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, receipt)
	}
}

// GET /cashier/receipts?student_id=&limit=&offset=
func ListReceiptsHandler(store cashier.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		receipts, err := store.ListReceipts(r.Context(), q.Get("student_id"), limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, receipts)
	}
}

// GET /cashier/receipts/{receiptID}
// Ownership can only be decided after the receipt is loaded, so callers
// without the broad view permission are checked against the receipt's
// student here rather than in middleware.
func GetReceiptHandler(store cashier.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "receiptID")
		receipt, err := store.GetReceipt(r.Context(), id)
		if errors.Is(err, cashier.ErrReceiptNotFound) {
			http.Error(w, "receipt not found", http.StatusNotFound)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		if !rbac.Allowed(role, "cashier:view") && receipt.StudentID != auth.PersonFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, receipt)
	}
}

// GET /students/{studentID}/ledger
func StudentLedgerHandler(store cashier.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		entries, balance, err := store.StudentLedger(r.Context(), studentID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Entries []cashier.LedgerEntry `json:"entries"`
			Balance decimal.Decimal       `json:"balance"`
		}{Entries: entries, Balance: balance})
	}
}
