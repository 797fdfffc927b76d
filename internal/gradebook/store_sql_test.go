package gradebook_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/opencampus/opencampus-sis/internal/db"
	"github.com/opencampus/opencampus-sis/internal/fieldvalid"
	"github.com/opencampus/opencampus-sis/internal/gradebook"
)

func openTestStore(t *testing.T) *gradebook.SQLStore {
	t.Helper()
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+t.TempDir()+"/gradebook.db?_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	if _, err := dbh.Exec(`INSERT INTO subjects (id, code, name, grade_level)
		VALUES ('math-7', 'MATH7', 'Mathematics 7', 7)`); err != nil {
		t.Fatalf("seed subjects: %v", err)
	}
	return gradebook.NewSQLStore(dbh)
}

func TestSQLStoreRubricRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.GetRubric(ctx, "math-7"); !errors.Is(err, gradebook.ErrRubricNotFound) {
		t.Errorf("err = %v, want ErrRubricNotFound", err)
	}
	if err := store.UpsertRubric(ctx, gradebook.Rubric{SubjectID: "math-7", WW: 30, PT: 50, QA: 20}); err != nil {
		t.Fatalf("UpsertRubric: %v", err)
	}
	// update in place
	if err := store.UpsertRubric(ctx, gradebook.Rubric{SubjectID: "math-7", WW: 40, PT: 40, QA: 20}); err != nil {
		t.Fatalf("UpsertRubric update: %v", err)
	}
	r, err := store.GetRubric(ctx, "math-7")
	if err != nil {
		t.Fatalf("GetRubric: %v", err)
	}
	if r.WW != 40 || r.PT != 40 || r.QA != 20 {
		t.Errorf("rubric = %+v", r)
	}

	err = store.UpsertRubric(ctx, gradebook.Rubric{SubjectID: "math-7", WW: 30, PT: 30, QA: 41})
	if err == nil {
		t.Fatal("invalid rubric accepted")
	}
	r, _ = store.GetRubric(ctx, "math-7")
	if r.WW != 40 {
		t.Errorf("invalid rubric overwrote the active one: %+v", r)
	}
}

func TestSQLStoreScoresAndGrade(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.UpsertRubric(ctx, gradebook.Rubric{SubjectID: "math-7", WW: 30, PT: 50, QA: 20}); err != nil {
		t.Fatalf("UpsertRubric: %v", err)
	}

	mk := func(cat gradebook.Category, title, max string) gradebook.Activity {
		a, err := store.CreateActivity(ctx, gradebook.Activity{
			SubjectID: "math-7",
			SectionID: "sec-1",
			Quarter:   1,
			Category:  cat,
			Title:     title,
			MaxScore:  decimal.RequireFromString(max),
		})
		if err != nil {
			t.Fatalf("CreateActivity %s: %v", title, err)
		}
		return a
	}
	ww := mk(gradebook.WrittenWork, "Quiz 1", "100")
	pt := mk(gradebook.PerformanceTask, "Project", "100")
	qa := mk(gradebook.QuarterlyAssessment, "Q1 Exam", "50")

	put := func(activityID, value string) {
		v := decimal.RequireFromString(value)
		if err := store.UpsertScore(ctx, activityID, "stu-1", &v); err != nil {
			t.Fatalf("UpsertScore: %v", err)
		}
	}
	put(ww.ID, "80")
	put(pt.ID, "90")

	// QA unrecorded: incomplete
	if _, err := gradebook.GradeFor(ctx, store, "math-7", "stu-1", 1); !errors.Is(err, gradebook.ErrIncomplete) {
		t.Errorf("err = %v, want ErrIncomplete", err)
	}

	put(qa.ID, "45")
	grade, err := gradebook.GradeFor(ctx, store, "math-7", "stu-1", 1)
	if err != nil {
		t.Fatalf("GradeFor: %v", err)
	}
	if !grade.Grade.Equal(decimal.RequireFromString("87.00")) {
		t.Errorf("grade = %s, want 87.00", grade.Grade)
	}

	// clearing a score reopens the category
	if err := store.UpsertScore(ctx, qa.ID, "stu-1", nil); err != nil {
		t.Fatalf("clear score: %v", err)
	}
	if _, err := gradebook.GradeFor(ctx, store, "math-7", "stu-1", 1); !errors.Is(err, gradebook.ErrIncomplete) {
		t.Errorf("after clear err = %v, want ErrIncomplete", err)
	}

	if err := store.UpsertScore(ctx, "missing", "stu-1", nil); !errors.Is(err, gradebook.ErrActivityNotFound) {
		t.Errorf("err = %v, want ErrActivityNotFound", err)
	}

	// a value above the activity max never lands, so the stored grade
	// stays computable
	over := decimal.RequireFromString("120")
	err = store.UpsertScore(ctx, ww.ID, "stu-1", &over)
	var fe fieldvalid.FieldErrors
	if !errors.As(err, &fe) || len(fe.ByField()["value"]) == 0 {
		t.Errorf("UpsertScore(120/100) err = %v, want value field error", err)
	}
}

func TestSQLStoreConductRatings(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.GetConductRating(ctx, "stu-1", "math-7", 1); err != nil || ok {
		t.Errorf("GetConductRating = %v, %v; want not found", ok, err)
	}
	if err := store.PutConductRating(ctx, "stu-1", "math-7", 1, gradebook.SometimesObserved); err != nil {
		t.Fatalf("PutConductRating: %v", err)
	}
	if err := store.PutConductRating(ctx, "stu-1", "math-7", 1, gradebook.AlwaysObserved); err != nil {
		t.Fatalf("PutConductRating update: %v", err)
	}
	r, ok, err := store.GetConductRating(ctx, "stu-1", "math-7", 1)
	if err != nil || !ok || r != gradebook.AlwaysObserved {
		t.Errorf("GetConductRating = %v, %v, %v", r, ok, err)
	}
}
