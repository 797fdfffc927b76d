package gradebook

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opencampus/opencampus-sis/internal/fieldvalid"
)

var (
	ErrRubricNotFound   = errors.New("rubric not found")
	ErrActivityNotFound = errors.New("activity not found")
)

// validateScoreValue guards the write path: a recorded value must sit in
// [0, max]. An out-of-range value must never reach storage, where it would
// fail every later grade query for the student.
func validateScoreValue(value *decimal.Decimal, max decimal.Decimal) error {
	if value == nil {
		return nil
	}
	if value.IsNegative() || value.GreaterThan(max) {
		return fieldvalid.FieldErrors{
			{Field: "value", Message: "Score must be between 0 and the activity max score"},
		}
	}
	return nil
}

// Store persists rubrics, activities, scores and conduct ratings.
// UpsertRubric must reject weights failing ValidateRubric so an invalid
// rubric is never active.
type Store interface {
	UpsertRubric(ctx context.Context, r Rubric) error
	GetRubric(ctx context.Context, subjectID string) (Rubric, error)

	CreateActivity(ctx context.Context, a Activity) (Activity, error)
	ListActivities(ctx context.Context, subjectID, sectionID string, quarter int) ([]Activity, error)

	// UpsertScore records or clears (value nil) a student's score.
	UpsertScore(ctx context.Context, activityID, studentID string, value *decimal.Decimal) error
	// ScoresByCategory returns a student's scores for a subject and
	// quarter, grouped the way ComputeQuarterGrade consumes them. Every
	// activity appears, recorded or not.
	ScoresByCategory(ctx context.Context, subjectID, studentID string, quarter int) (map[Category][]Score, error)

	PutConductRating(ctx context.Context, studentID, subjectID string, quarter int, rating ConductRating) error
	GetConductRating(ctx context.Context, studentID, subjectID string, quarter int) (ConductRating, bool, error)
}

type memoryStore struct {
	mu         sync.RWMutex
	rubrics    map[string]Rubric
	activities map[string]Activity
	scores     map[string]map[string]*decimal.Decimal // activityID -> studentID -> value
	conduct    map[string]ConductRating               // student|subject|quarter
}

func NewInMemoryStore() Store {
	return &memoryStore{
		rubrics:    map[string]Rubric{},
		activities: map[string]Activity{},
		scores:     map[string]map[string]*decimal.Decimal{},
		conduct:    map[string]ConductRating{},
	}
}

func (m *memoryStore) UpsertRubric(_ context.Context, r Rubric) error {
	if err := ValidateRubric(r.WW, r.PT, r.QA); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rubrics[r.SubjectID] = r
	return nil
}

func (m *memoryStore) GetRubric(_ context.Context, subjectID string) (Rubric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rubrics[subjectID]
	if !ok {
		return Rubric{}, ErrRubricNotFound
	}
	return r, nil
}

func (m *memoryStore) CreateActivity(_ context.Context, a Activity) (Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}
	m.activities[a.ID] = a
	return a, nil
}

func (m *memoryStore) ListActivities(_ context.Context, subjectID, sectionID string, quarter int) ([]Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Activity, 0)
	for _, a := range m.activities {
		if a.SubjectID == subjectID &&
			(sectionID == "" || a.SectionID == sectionID) &&
			(quarter == 0 || a.Quarter == quarter) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryStore) UpsertScore(_ context.Context, activityID, studentID string, value *decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.activities[activityID]
	if !ok {
		return ErrActivityNotFound
	}
	if err := validateScoreValue(value, a.MaxScore); err != nil {
		return err
	}
	if m.scores[activityID] == nil {
		m.scores[activityID] = map[string]*decimal.Decimal{}
	}
	m.scores[activityID][studentID] = value
	return nil
}

func (m *memoryStore) ScoresByCategory(_ context.Context, subjectID, studentID string, quarter int) (map[Category][]Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[Category][]Score{}
	for _, a := range m.activities {
		if a.SubjectID != subjectID || a.Quarter != quarter {
			continue
		}
		s := Score{ActivityID: a.ID, StudentID: studentID, MaxScore: a.MaxScore}
		if vals, ok := m.scores[a.ID]; ok {
			s.Value = vals[studentID]
		}
		out[a.Category] = append(out[a.Category], s)
	}
	return out, nil
}

func conductKey(studentID, subjectID string, quarter int) string {
	return studentID + "|" + subjectID + "|" + string(rune('0'+quarter))
}

func (m *memoryStore) PutConductRating(_ context.Context, studentID, subjectID string, quarter int, rating ConductRating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conduct[conductKey(studentID, subjectID, quarter)] = rating
	return nil
}

func (m *memoryStore) GetConductRating(_ context.Context, studentID, subjectID string, quarter int) (ConductRating, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.conduct[conductKey(studentID, subjectID, quarter)]
	return r, ok, nil
}
