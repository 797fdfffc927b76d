package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	api "github.com/opencampus/opencampus-sis/internal/api/http"
	"github.com/opencampus/opencampus-sis/internal/cashier"
)

type staticDirectory struct{}

func (staticDirectory) StudentExists(_ context.Context, id string) (bool, error) {
	return id == "stu-1", nil
}
func (staticDirectory) FeeExists(_ context.Context, id string) (bool, error) {
	return id == "fee-1", nil
}
func (staticDirectory) ItemExists(_ context.Context, id string) (bool, error) {
	return id == "inv-1", nil
}

func checkoutBody(receiptNo string) string {
	return `{
		"student_id": "stu-1",
		"receipt_no": "` + receiptNo + `",
		"payment_mode": "cash",
		"tendered_amount": "1500.00",
		"items": [
			{"kind": "fee", "description": "Tuition Q1", "amount": "1000.00", "fee_id": "fee-1"},
			{"kind": "custom", "description": "ID lace", "amount": "250.50"}
		]
	}`
}

func newCheckoutServer() http.HandlerFunc {
	v := cashier.NewValidator(staticDirectory{}, cashier.NewInMemoryStore())
	return api.CheckoutHandler(v)
}

func TestCheckoutHandlerSuccess(t *testing.T) {
	h := newCheckoutServer()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/cashier/checkout", strings.NewReader(checkoutBody("OR-1"))))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var receipt cashier.Receipt
	if err := json.Unmarshal(rec.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if receipt.Total.StringFixed(2) != "1250.50" || receipt.Change.StringFixed(2) != "249.50" {
		t.Errorf("total = %s, change = %s", receipt.Total, receipt.Change)
	}
}

func TestCheckoutHandlerFieldErrors(t *testing.T) {
	h := newCheckoutServer()
	body := strings.Replace(checkoutBody("OR-2"), `"fee_id": "fee-1"`, `"fee_id": ""`, 1)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/cashier/checkout", strings.NewReader(body)))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := resp.Errors["items.0.fee_id"]
	if len(got) != 1 || got[0] != "Fee item is required for line 1" {
		t.Errorf("items.0.fee_id = %q", got)
	}
}

func TestCheckoutHandlerDuplicateReceipt(t *testing.T) {
	h := newCheckoutServer()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/cashier/checkout", strings.NewReader(checkoutBody("OR-3"))))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first checkout status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/cashier/checkout", strings.NewReader(checkoutBody("OR-3"))))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("second checkout status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Errors["receipt_no"]) == 0 {
		t.Errorf("missing receipt_no failure: %v", resp.Errors)
	}
}

func TestCheckoutHandlerBadAmount(t *testing.T) {
	h := newCheckoutServer()
	body := strings.Replace(checkoutBody("OR-4"), `"amount": "250.50"`, `"amount": "abc"`, 1)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/cashier/checkout", strings.NewReader(body)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
