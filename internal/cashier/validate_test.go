package cashier

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/opencampus/opencampus-sis/internal/fieldvalid"
)

type fakeDirectory struct {
	students map[string]bool
	fees     map[string]bool
	items    map[string]bool
}

func (d fakeDirectory) StudentExists(_ context.Context, id string) (bool, error) {
	return d.students[id], nil
}
func (d fakeDirectory) FeeExists(_ context.Context, id string) (bool, error) {
	return d.fees[id], nil
}
func (d fakeDirectory) ItemExists(_ context.Context, id string) (bool, error) {
	return d.items[id], nil
}

func newTestValidator() *Validator {
	dir := fakeDirectory{
		students: map[string]bool{"stu-1": true},
		fees:     map[string]bool{"fee-1": true, "fee-2": true},
		items:    map[string]bool{"inv-1": true},
	}
	return NewValidator(dir, NewInMemoryStore())
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validTx() Transaction {
	return Transaction{
		StudentID: "stu-1",
		ReceiptNo: "OR-0001",
		Mode:      ModeCash,
		Tendered:  dec("1500.00"),
		Items: []LineItem{
			{Kind: KindFee, Description: "Tuition Q1", Amount: dec("1000.00"), FeeID: "fee-1"},
			{Kind: KindCustom, Description: "ID lace", Amount: dec("250.50")},
		},
	}
}

func fieldMessages(t *testing.T, err error) map[string][]string {
	t.Helper()
	fe, ok := err.(fieldvalid.FieldErrors)
	if !ok {
		t.Fatalf("expected FieldErrors, got %T: %v", err, err)
	}
	return fe.ByField()
}

func TestValidateAcceptsAndExposesTotal(t *testing.T) {
	v := newTestValidator()
	out, err := v.Validate(context.Background(), validTx())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !out.Total.Equal(dec("1250.50")) {
		t.Errorf("total = %s, want 1250.50", out.Total)
	}
	if !out.Change.Equal(dec("249.50")) {
		t.Errorf("change = %s, want 249.50", out.Change)
	}
}

func TestValidateExactTenderHasZeroChange(t *testing.T) {
	v := newTestValidator()
	tx := validTx()
	tx.Tendered = dec("1250.50")
	out, err := v.Validate(context.Background(), tx)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !out.Change.IsZero() {
		t.Errorf("change = %s, want 0", out.Change)
	}
}

func TestReconcileOrderIndependent(t *testing.T) {
	a := []LineItem{
		{Amount: dec("0.10")},
		{Amount: dec("0.20")},
		{Amount: dec("999.70")},
	}
	b := []LineItem{a[2], a[0], a[1]}
	if !Reconcile(a).Equal(Reconcile(b)) {
		t.Errorf("Reconcile order-dependent: %s vs %s", Reconcile(a), Reconcile(b))
	}
	if !Reconcile(a).Equal(dec("1000.00")) {
		t.Errorf("Reconcile = %s, want 1000.00", Reconcile(a))
	}
}

func TestValidateMissingFeeReference(t *testing.T) {
	v := newTestValidator()
	tx := validTx()
	tx.Items[0].FeeID = ""
	_, err := v.Validate(context.Background(), tx)
	msgs := fieldMessages(t, err)
	got := msgs["items.0.fee_id"]
	if len(got) != 1 || got[0] != "Fee item is required for line 1" {
		t.Errorf("items.0.fee_id = %q", got)
	}
}

func TestValidateMissingInventoryReference(t *testing.T) {
	v := newTestValidator()
	tx := validTx()
	tx.Items = append(tx.Items, LineItem{Kind: KindInventory, Description: "PE shirt", Amount: dec("300.00")})
	tx.Tendered = dec("2000.00")
	_, err := v.Validate(context.Background(), tx)
	msgs := fieldMessages(t, err)
	got := msgs["items.2.item_id"]
	if len(got) != 1 || got[0] != "Inventory item is required for line 3" {
		t.Errorf("items.2.item_id = %q", got)
	}
}

func TestValidateCollectsAllFailures(t *testing.T) {
	v := newTestValidator()
	tx := validTx()
	tx.StudentID = "ghost"
	tx.Items[0].FeeID = ""
	tx.Items[1].Description = ""
	_, err := v.Validate(context.Background(), tx)
	msgs := fieldMessages(t, err)
	for _, f := range []string{"student_id", "items.0.fee_id", "items.1.description"} {
		if len(msgs[f]) == 0 {
			t.Errorf("missing failure on %s; got %v", f, msgs)
		}
	}
}

func TestValidateZeroTotalSkipsTenderCheck(t *testing.T) {
	v := newTestValidator()
	tx := validTx()
	// Negative and zero amounts: item-level failures plus an items-level
	// total failure, and the tender rule must stay silent even though the
	// tendered amount is negative too.
	tx.Items = []LineItem{
		{Kind: KindCustom, Description: "adjustment", Amount: dec("-5.00")},
	}
	tx.Tendered = dec("-1.00")
	_, err := v.Validate(context.Background(), tx)
	msgs := fieldMessages(t, err)

	found := false
	for _, m := range msgs["items"] {
		if m == "Transaction must include at least one item with a valid amount" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing items-total failure; got %v", msgs["items"])
	}
	for _, m := range msgs["tendered_amount"] {
		if m == "Tendered amount must be at least the transaction total" {
			t.Errorf("tender check ran despite invalid total: %v", msgs["tendered_amount"])
		}
	}
}

func TestValidateInsufficientTender(t *testing.T) {
	v := newTestValidator()
	tx := validTx()
	tx.Tendered = dec("1250.49")
	_, err := v.Validate(context.Background(), tx)
	msgs := fieldMessages(t, err)
	got := msgs["tendered_amount"]
	if len(got) != 1 || got[0] != "Tendered amount must be at least the transaction total" {
		t.Errorf("tendered_amount = %q", got)
	}
}

func TestValidateDanglingReferences(t *testing.T) {
	v := newTestValidator()
	tx := validTx()
	tx.Items[0].FeeID = "fee-missing"
	_, err := v.Validate(context.Background(), tx)
	msgs := fieldMessages(t, err)
	if len(msgs["items.0.fee_id"]) == 0 {
		t.Errorf("missing dangling-fee failure; got %v", msgs)
	}
}

func TestValidateAdvisoryReceiptCheck(t *testing.T) {
	v := newTestValidator()
	ctx := context.Background()
	if _, err := v.Checkout(ctx, validTx(), "cashier-1"); err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	_, err := v.Validate(ctx, validTx())
	msgs := fieldMessages(t, err)
	got := msgs["receipt_no"]
	if len(got) != 1 || got[0] != "Receipt number is already in use" {
		t.Errorf("receipt_no = %q", got)
	}
}

func TestMemoryStoreListReceiptsPaginates(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	for i, no := range []string{"OR-1", "OR-2", "OR-3"} {
		r := Receipt{
			ReceiptNo: no,
			StudentID: "stu-1",
			Mode:      ModeCash,
			Total:     dec("100.00"),
			Tendered:  dec("100.00"),
			Change:    decimal.Zero,
			CreatedAt: int64(1000 + i),
			Items:     []LineItem{{Kind: KindCustom, Description: "Misc", Amount: dec("100.00")}},
		}
		if _, err := store.SaveReceipt(ctx, r); err != nil {
			t.Fatalf("SaveReceipt %s: %v", no, err)
		}
	}

	page, err := store.ListReceipts(ctx, "stu-1", 2, 0)
	if err != nil {
		t.Fatalf("ListReceipts: %v", err)
	}
	if len(page) != 2 || page[0].ReceiptNo != "OR-3" || page[1].ReceiptNo != "OR-2" {
		t.Errorf("first page = %v", receiptNos(page))
	}
	page, err = store.ListReceipts(ctx, "stu-1", 2, 2)
	if err != nil {
		t.Fatalf("ListReceipts offset: %v", err)
	}
	if len(page) != 1 || page[0].ReceiptNo != "OR-1" {
		t.Errorf("second page = %v", receiptNos(page))
	}
	if page, _ := store.ListReceipts(ctx, "stu-1", 2, 10); len(page) != 0 {
		t.Errorf("past-the-end page = %v", receiptNos(page))
	}
}

func receiptNos(rs []Receipt) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ReceiptNo
	}
	return out
}

func TestCheckoutWritesLedger(t *testing.T) {
	v := newTestValidator()
	ctx := context.Background()
	r, err := v.Checkout(ctx, validTx(), "cashier-1")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if !r.Total.Equal(dec("1250.50")) {
		t.Errorf("total = %s, want 1250.50", r.Total)
	}
	entries, balance, err := v.store.StudentLedger(ctx, "stu-1")
	if err != nil {
		t.Fatalf("StudentLedger: %v", err)
	}
	// two charges plus one payment
	if len(entries) != 3 {
		t.Fatalf("ledger entries = %d, want 3", len(entries))
	}
	if !balance.IsZero() {
		t.Errorf("balance = %s, want 0 (payment covers charges)", balance)
	}
}
