package cashier

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/opencampus/opencampus-sis/internal/fieldvalid"
	"github.com/opencampus/opencampus-sis/internal/money"
)

// Directory resolves references a transaction carries. The registry package
// implements it; tests use a map-backed fake.
type Directory interface {
	StudentExists(ctx context.Context, id string) (bool, error)
	FeeExists(ctx context.Context, id string) (bool, error)
	ItemExists(ctx context.Context, id string) (bool, error)
}

// Reconcile sums the line-item amounts in exact decimal arithmetic. The
// result is the authoritative amount charged; persistence must use it and
// never a client-supplied figure.
func Reconcile(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}

// Validator checks a proposed transaction against structural, cross-field
// and referential rules. It holds no state between calls and is safe for
// concurrent use.
type Validator struct {
	dir   Directory
	store Store
}

func NewValidator(dir Directory, store Store) *Validator {
	return &Validator{dir: dir, store: store}
}

// Validate collects every failure rather than stopping at the first one.
// The only short-circuit: when the item total is not positive, the tender
// check is skipped entirely. On success the outcome carries the computed
// total and change; the total used for the tender check is the same value,
// computed once.
//
// The receipt-number check here is advisory. The store re-verifies it
// atomically at insert via the unique constraint, which is what decides a
// race between two submissions with the same number.
func (v *Validator) Validate(ctx context.Context, tx Transaction) (Outcome, error) {
	var c fieldvalid.Collector

	if tx.StudentID == "" {
		c.Add("student_id", "Student is required")
	} else {
		ok, err := v.dir.StudentExists(ctx, tx.StudentID)
		if err != nil {
			return Outcome{}, fmt.Errorf("student lookup: %w", err)
		}
		if !ok {
			c.Add("student_id", "Student does not exist")
		}
	}

	if tx.ReceiptNo == "" {
		c.Add("receipt_no", "Receipt number is required")
	}
	if !tx.Mode.Valid() {
		c.Add("payment_mode", "Payment mode must be cash, gcash, or bank_transfer")
	}
	if !money.InRange(tx.Tendered) {
		c.Add("tendered_amount", "Tendered amount must be between 0 and 999,999.99")
	}

	if len(tx.Items) == 0 {
		c.Add("items", "At least one item is required")
	}
	for i, it := range tx.Items {
		v.validateItem(&c, i, it)
	}
	if err := v.checkItemRefs(ctx, &c, tx.Items); err != nil {
		return Outcome{}, err
	}

	total := Reconcile(tx.Items)
	if total.Sign() <= 0 {
		// Once the total is invalid the tender comparison is meaningless;
		// do not also report insufficiency.
		c.Add("items", "Transaction must include at least one item with a valid amount")
	} else if tx.Tendered.LessThan(total) {
		c.Add("tendered_amount", "Tendered amount must be at least the transaction total")
	}

	if tx.ReceiptNo != "" {
		taken, err := v.store.ReceiptNoTaken(ctx, tx.ReceiptNo)
		if err != nil {
			return Outcome{}, fmt.Errorf("receipt lookup: %w", err)
		}
		if taken {
			c.Add("receipt_no", "Receipt number is already in use")
		}
	}

	if errs := c.Err(); errs != nil {
		return Outcome{}, errs
	}
	return Outcome{Total: total, Change: tx.Tendered.Sub(total)}, nil
}

func (v *Validator) validateItem(c *fieldvalid.Collector, i int, it LineItem) {
	path := func(f string) string { return fmt.Sprintf("items.%d.%s", i, f) }
	line := i + 1

	if !it.Kind.Valid() {
		c.Add(path("kind"), "Item kind must be fee, inventory, or custom")
	}
	if it.Description == "" {
		c.Add(path("description"), "Description is required")
	}
	if it.Amount.Sign() <= 0 {
		c.Add(path("amount"), "Amount must be greater than zero")
	} else if it.Amount.GreaterThan(money.MaxAmount) {
		c.Add(path("amount"), "Amount must not exceed 999,999.99")
	}

	switch it.Kind {
	case KindFee:
		if it.FeeID == "" {
			c.Add(path("fee_id"), fmt.Sprintf("Fee item is required for line %d", line))
		}
		if it.ItemID != "" {
			c.Add(path("item_id"), fmt.Sprintf("Inventory reference is not allowed for line %d", line))
		}
	case KindInventory:
		if it.ItemID == "" {
			c.Add(path("item_id"), fmt.Sprintf("Inventory item is required for line %d", line))
		}
		if it.FeeID != "" {
			c.Add(path("fee_id"), fmt.Sprintf("Fee reference is not allowed for line %d", line))
		}
	case KindCustom:
		if it.FeeID != "" || it.ItemID != "" {
			c.Add(path("kind"), fmt.Sprintf("Custom item must not reference a fee or inventory item for line %d", line))
		}
	}
}

func (v *Validator) checkItemRefs(ctx context.Context, c *fieldvalid.Collector, items []LineItem) error {
	for i, it := range items {
		switch {
		case it.Kind == KindFee && it.FeeID != "":
			ok, err := v.dir.FeeExists(ctx, it.FeeID)
			if err != nil {
				return fmt.Errorf("fee lookup: %w", err)
			}
			if !ok {
				c.Add(fmt.Sprintf("items.%d.fee_id", i), "Fee does not exist")
			}
		case it.Kind == KindInventory && it.ItemID != "":
			ok, err := v.dir.ItemExists(ctx, it.ItemID)
			if err != nil {
				return fmt.Errorf("inventory lookup: %w", err)
			}
			if !ok {
				c.Add(fmt.Sprintf("items.%d.item_id", i), "Inventory item does not exist")
			}
		}
	}
	return nil
}
