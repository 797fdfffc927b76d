// Package fieldvalid collects field-scoped validation failures in input
// order instead of failing on the first one, so a form round-trip can show
// every problem at once.
package fieldvalid

import (
	"encoding/json"
	"strings"
)

// FieldError is one failure attached to a field path such as
// "tendered_amount" or "items.2.fee_id".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is an ordered, non-empty collection of field failures.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, len(fe))
	for i, e := range fe {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// ByField groups messages per field path, preserving message order.
func (fe FieldErrors) ByField() map[string][]string {
	out := make(map[string][]string, len(fe))
	for _, e := range fe {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

// MarshalJSON encodes as {"field": ["message", ...], ...}.
func (fe FieldErrors) MarshalJSON() ([]byte, error) {
	return json.Marshal(fe.ByField())
}

// Collector accumulates failures across independent rule checks.
type Collector struct {
	errs FieldErrors
}

func (c *Collector) Add(field, message string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: message})
}

func (c *Collector) Addf(field string, err error) {
	if err != nil {
		c.errs = append(c.errs, FieldError{Field: field, Message: err.Error()})
	}
}

// HasErrors reports whether any failure was recorded.
func (c *Collector) HasErrors() bool { return len(c.errs) > 0 }

// Err returns the collected failures, or nil when the input was clean.
func (c *Collector) Err() FieldErrors {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}
