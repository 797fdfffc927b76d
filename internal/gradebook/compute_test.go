package gradebook

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/opencampus/opencampus-sis/internal/fieldvalid"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func scored(activityID, value, max string) Score {
	v := dec(value)
	return Score{ActivityID: activityID, Value: &v, MaxScore: dec(max)}
}

func unscored(activityID, max string) Score {
	return Score{ActivityID: activityID, MaxScore: dec(max)}
}

func TestComputeQuarterGradeWeightedSum(t *testing.T) {
	// WW 80/100 = 80%, PT 90/100 = 90%, QA 45/50 = 90%
	// 0.30*80 + 0.50*90 + 0.20*90 = 24 + 45 + 18 = 87.00
	r := Rubric{WW: 30, PT: 50, QA: 20}
	scores := map[Category][]Score{
		WrittenWork:         {scored("ww-1", "50", "60"), scored("ww-2", "30", "40")},
		PerformanceTask:     {scored("pt-1", "90", "100")},
		QuarterlyAssessment: {scored("qa-1", "45", "50")},
	}
	grade, err := ComputeQuarterGrade(r, scores)
	if err != nil {
		t.Fatalf("ComputeQuarterGrade: %v", err)
	}
	if !grade.Equal(dec("87.00")) {
		t.Errorf("grade = %s, want 87.00", grade)
	}
}

func TestComputeQuarterGradeIncompleteCategory(t *testing.T) {
	r := Rubric{WW: 30, PT: 50, QA: 20}
	scores := map[Category][]Score{
		WrittenWork:     {scored("ww-1", "80", "100")},
		PerformanceTask: {scored("pt-1", "90", "100")},
		// QA activities exist but nothing recorded yet
		QuarterlyAssessment: {unscored("qa-1", "50")},
	}
	_, err := ComputeQuarterGrade(r, scores)
	if !errors.Is(err, ErrIncomplete) {
		t.Errorf("err = %v, want ErrIncomplete", err)
	}
}

func TestComputeQuarterGradeAbsentCategory(t *testing.T) {
	r := Rubric{WW: 30, PT: 50, QA: 20}
	scores := map[Category][]Score{
		WrittenWork:     {scored("ww-1", "80", "100")},
		PerformanceTask: {scored("pt-1", "90", "100")},
	}
	if _, err := ComputeQuarterGrade(r, scores); !errors.Is(err, ErrIncomplete) {
		t.Errorf("err = %v, want ErrIncomplete", err)
	}
}

func TestComputeQuarterGradeZeroWeightCategorySkipped(t *testing.T) {
	r := Rubric{WW: 0, PT: 0, QA: 100}
	scores := map[Category][]Score{
		QuarterlyAssessment: {scored("qa-1", "45", "50")},
	}
	grade, err := ComputeQuarterGrade(r, scores)
	if err != nil {
		t.Fatalf("ComputeQuarterGrade: %v", err)
	}
	if !grade.Equal(dec("90.00")) {
		t.Errorf("grade = %s, want 90.00", grade)
	}
}

func TestComputeQuarterGradeZeroScoreIsNotMissing(t *testing.T) {
	r := Rubric{WW: 50, PT: 0, QA: 50}
	scores := map[Category][]Score{
		WrittenWork:         {scored("ww-1", "0", "100")},
		QuarterlyAssessment: {scored("qa-1", "50", "50")},
	}
	grade, err := ComputeQuarterGrade(r, scores)
	if err != nil {
		t.Fatalf("ComputeQuarterGrade: %v", err)
	}
	if !grade.Equal(dec("50.00")) {
		t.Errorf("grade = %s, want 50.00", grade)
	}
}

func TestComputeQuarterGradeSingleFinalRounding(t *testing.T) {
	// Each category is 1/3 ≈ 33.33...%; rounding per category first would
	// give 33.33*... drift. 100% weight on WW with 1/3 earned:
	// 33.3333...% rounds once, half-up, to 33.33.
	r := Rubric{WW: 100, PT: 0, QA: 0}
	scores := map[Category][]Score{
		WrittenWork: {scored("ww-1", "1", "3")},
	}
	grade, err := ComputeQuarterGrade(r, scores)
	if err != nil {
		t.Fatalf("ComputeQuarterGrade: %v", err)
	}
	if !grade.Equal(dec("33.33")) {
		t.Errorf("grade = %s, want 33.33", grade)
	}
}

func TestComputeQuarterGradeRejectsOutOfRangeScore(t *testing.T) {
	r := Rubric{WW: 100, PT: 0, QA: 0}
	scores := map[Category][]Score{
		WrittenWork: {scored("ww-1", "120", "100")},
	}
	if _, err := ComputeQuarterGrade(r, scores); err == nil {
		t.Error("expected out-of-range error, got nil")
	}
}

func TestParseScore(t *testing.T) {
	if v, err := ParseScore("45.5"); err != nil || !v.Equal(dec("45.5")) {
		t.Errorf("ParseScore(45.5) = %s, %v", v, err)
	}
	if _, err := ParseScore("abc"); err == nil {
		t.Error("non-numeric score accepted")
	}
	if _, err := ParseScore("45.555"); err == nil {
		t.Error("three decimal places accepted")
	}
}

func TestUpsertScoreRejectsValueAboveMax(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	a, err := store.CreateActivity(ctx, Activity{
		SubjectID: "math-7", SectionID: "sec-1", Quarter: 1,
		Category: WrittenWork, Title: "Quiz 1", MaxScore: dec("100"),
	})
	if err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}

	over := dec("120")
	err = store.UpsertScore(ctx, a.ID, "stu-1", &over)
	var fe fieldvalid.FieldErrors
	if !errors.As(err, &fe) || len(fe.ByField()["value"]) == 0 {
		t.Fatalf("UpsertScore(120/100) err = %v, want value field error", err)
	}

	neg := dec("-1")
	if err := store.UpsertScore(ctx, a.ID, "stu-1", &neg); err == nil {
		t.Error("negative score accepted")
	}

	// boundary values are fine, and so is clearing
	full := dec("100")
	if err := store.UpsertScore(ctx, a.ID, "stu-1", &full); err != nil {
		t.Errorf("UpsertScore(100/100): %v", err)
	}
	if err := store.UpsertScore(ctx, a.ID, "stu-1", nil); err != nil {
		t.Errorf("clear score: %v", err)
	}
}

func TestGradeForUsesStoredRubricAndScores(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.UpsertRubric(ctx, Rubric{SubjectID: "math-7", WW: 30, PT: 50, QA: 20}); err != nil {
		t.Fatalf("UpsertRubric: %v", err)
	}
	acts := []Activity{
		{SubjectID: "math-7", SectionID: "sec-1", Quarter: 1, Category: WrittenWork, Title: "Quiz 1", MaxScore: dec("100")},
		{SubjectID: "math-7", SectionID: "sec-1", Quarter: 1, Category: PerformanceTask, Title: "Project", MaxScore: dec("100")},
		{SubjectID: "math-7", SectionID: "sec-1", Quarter: 1, Category: QuarterlyAssessment, Title: "Q1 Exam", MaxScore: dec("50")},
	}
	values := []string{"80", "90", "45"}
	for i, a := range acts {
		created, err := store.CreateActivity(ctx, a)
		if err != nil {
			t.Fatalf("CreateActivity: %v", err)
		}
		v := dec(values[i])
		if err := store.UpsertScore(ctx, created.ID, "stu-1", &v); err != nil {
			t.Fatalf("UpsertScore: %v", err)
		}
	}

	grade, err := GradeFor(ctx, store, "math-7", "stu-1", 1)
	if err != nil {
		t.Fatalf("GradeFor: %v", err)
	}
	if !grade.Grade.Equal(dec("87.00")) {
		t.Errorf("grade = %s, want 87.00", grade.Grade)
	}

	// another student with nothing recorded: incomplete, not zero
	if _, err := GradeFor(ctx, store, "math-7", "stu-2", 1); !errors.Is(err, ErrIncomplete) {
		t.Errorf("err = %v, want ErrIncomplete", err)
	}

	if err := store.UpsertRubric(ctx, Rubric{SubjectID: "math-7", WW: 30, PT: 30, QA: 41}); err == nil {
		t.Error("invalid rubric accepted by store")
	}
}
