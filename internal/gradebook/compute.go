package gradebook

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrIncomplete marks a grade that cannot be computed yet because a weighted
// category has no recorded scores. It is an "unavailable" outcome, not a
// validation failure: a missing score and a score of zero are different
// things.
var ErrIncomplete = errors.New("grade incomplete: a weighted category has no recorded scores")

var hundred = decimal.NewFromInt(100)

// ParseScore parses a point value with at most two fractional digits.
func ParseScore(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid score %q", s)
	}
	if d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("score %q has more than two decimal places", s)
	}
	return d, nil
}

// ComputeQuarterGrade computes the weighted quarterly grade on a 0-100
// scale. Per category, the percentage is sum(recorded values) over
// sum(max scores of the recorded activities); unrecorded scores are
// excluded from both sides. A category whose rubric weight is zero is
// skipped. Any weighted category without a single recorded score makes the
// whole grade incomplete rather than silently computing over a subset.
//
// Rounding happens exactly once, half-up to two decimals, at the final
// result. Intermediate category percentages stay unrounded.
func ComputeQuarterGrade(r Rubric, scoresByCategory map[Category][]Score) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, cat := range Categories {
		weight := r.Weight(cat)
		if weight == 0 {
			continue
		}
		pct, ok, err := categoryPercentage(scoresByCategory[cat])
		if err != nil {
			return decimal.Zero, fmt.Errorf("category %s: %w", cat, err)
		}
		if !ok {
			return decimal.Zero, ErrIncomplete
		}
		sum = sum.Add(pct.Mul(decimal.NewFromInt(int64(weight))))
	}
	// grades are non-negative, so half-away-from-zero Round is half-up
	return sum.Div(hundred).Round(2), nil
}

// categoryPercentage returns the 0-100 percentage for one category's
// recorded scores. ok is false when nothing has been recorded.
func categoryPercentage(scores []Score) (decimal.Decimal, bool, error) {
	earned := decimal.Zero
	possible := decimal.Zero
	recorded := false
	for _, s := range scores {
		if s.Value == nil {
			continue
		}
		if s.MaxScore.Sign() <= 0 {
			return decimal.Zero, false, fmt.Errorf("activity %s has non-positive max score", s.ActivityID)
		}
		if s.Value.IsNegative() || s.Value.GreaterThan(s.MaxScore) {
			return decimal.Zero, false, fmt.Errorf("score %s/%s out of range for activity %s", s.Value, s.MaxScore, s.ActivityID)
		}
		earned = earned.Add(*s.Value)
		possible = possible.Add(s.MaxScore)
		recorded = true
	}
	if !recorded {
		return decimal.Zero, false, nil
	}
	// Div uses decimal's default precision (16 fractional digits), far
	// beyond what survives the single final rounding.
	return earned.Div(possible).Mul(hundred), true, nil
}
