package cashier

import (
	"context"
	"errors"

	"github.com/opencampus/opencampus-sis/internal/fieldvalid"
)

// Checkout runs the full cashier flow: validate the proposed transaction,
// then persist it with the derived total. A receipt number that passes the
// advisory check but loses the insert race comes back through the same
// field-error channel as the pre-check.
func (v *Validator) Checkout(ctx context.Context, tx Transaction, cashierID string) (Receipt, error) {
	out, err := v.Validate(ctx, tx)
	if err != nil {
		return Receipt{}, err
	}
	r := Receipt{
		ReceiptNo: tx.ReceiptNo,
		StudentID: tx.StudentID,
		Mode:      tx.Mode,
		Total:     out.Total,
		Tendered:  tx.Tendered,
		Change:    out.Change,
		CashierID: cashierID,
		Items:     tx.Items,
	}
	saved, err := v.store.SaveReceipt(ctx, r)
	if errors.Is(err, ErrDuplicateReceipt) {
		return Receipt{}, fieldvalid.FieldErrors{
			{Field: "receipt_no", Message: "Receipt number is already in use"},
		}
	}
	if err != nil {
		return Receipt{}, err
	}
	return saved, nil
}
