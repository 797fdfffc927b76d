package gradebook

import (
	"github.com/opencampus/opencampus-sis/internal/fieldvalid"
)

// ValidateRubric checks the three category weights. Range failures attach
// to the offending field; the sum rule reports a single failure on
// ww_weight, which is where the form shows it.
func ValidateRubric(ww, pt, qa int) error {
	var c fieldvalid.Collector
	for _, w := range []struct {
		field string
		value int
	}{
		{"ww_weight", ww},
		{"pt_weight", pt},
		{"qa_weight", qa},
	} {
		if w.value < 0 || w.value > 100 {
			c.Add(w.field, "Weight must be between 0 and 100")
		}
	}
	if !c.HasErrors() && ww+pt+qa != 100 {
		c.Add("ww_weight", "Rubric weights must total exactly 100%")
	}
	if errs := c.Err(); errs != nil {
		return errs
	}
	return nil
}
