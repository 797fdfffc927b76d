package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	api "github.com/opencampus/opencampus-sis/internal/api/http"
	"github.com/opencampus/opencampus-sis/internal/auth"
	"github.com/opencampus/opencampus-sis/internal/cashier"
	"github.com/opencampus/opencampus-sis/internal/rbac"
)

func getAs(t *testing.T, h http.Handler, role, person, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	ctx := auth.WithPerson(req.Context(), person)
	ctx = rbac.WithRole(ctx, role)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func TestStudentLedgerScopedToOwnRecord(t *testing.T) {
	store := cashier.NewInMemoryStore()
	r := chi.NewRouter()
	r.With(rbac.RequireOwnerOr("cashier:view", "cashier:view-own", api.OwnStudent)).
		Get("/students/{studentID}/ledger", api.StudentLedgerHandler(store))

	if rec := getAs(t, r, "student", "stu-1", "/students/stu-2/ledger"); rec.Code != http.StatusForbidden {
		t.Errorf("other student's ledger: status = %d, want 403", rec.Code)
	}
	if rec := getAs(t, r, "student", "stu-1", "/students/stu-1/ledger"); rec.Code != http.StatusOK {
		t.Errorf("own ledger: status = %d, want 200", rec.Code)
	}
	if rec := getAs(t, r, "parent", "stu-1", "/students/stu-2/ledger"); rec.Code != http.StatusForbidden {
		t.Errorf("parent on unlinked student: status = %d, want 403", rec.Code)
	}
	if rec := getAs(t, r, "finance", "", "/students/stu-2/ledger"); rec.Code != http.StatusOK {
		t.Errorf("finance: status = %d, want 200", rec.Code)
	}
	// a student account with no linked record owns nothing
	if rec := getAs(t, r, "student", "", "/students/stu-1/ledger"); rec.Code != http.StatusForbidden {
		t.Errorf("unlinked student account: status = %d, want 403", rec.Code)
	}
}

func TestGetReceiptScopedToOwnStudent(t *testing.T) {
	store := cashier.NewInMemoryStore()
	amt := decimal.RequireFromString("500.00")
	saved, err := store.SaveReceipt(context.Background(), cashier.Receipt{
		ReceiptNo: "OR-9001",
		StudentID: "stu-1",
		Mode:      cashier.ModeCash,
		Total:     amt,
		Tendered:  amt,
		Change:    decimal.Zero,
		CashierID: "cashier-1",
		Items:     []cashier.LineItem{{Kind: cashier.KindCustom, Description: "Misc fee", Amount: amt}},
	})
	if err != nil {
		t.Fatalf("SaveReceipt: %v", err)
	}

	r := chi.NewRouter()
	r.Get("/cashier/receipts/{receiptID}", api.GetReceiptHandler(store))
	path := "/cashier/receipts/" + saved.ID

	if rec := getAs(t, r, "student", "stu-1", path); rec.Code != http.StatusOK {
		t.Errorf("own receipt: status = %d, want 200", rec.Code)
	}
	if rec := getAs(t, r, "student", "stu-2", path); rec.Code != http.StatusForbidden {
		t.Errorf("other student's receipt: status = %d, want 403", rec.Code)
	}
	if rec := getAs(t, r, "finance", "", path); rec.Code != http.StatusOK {
		t.Errorf("finance: status = %d, want 200", rec.Code)
	}
}
