package gradebook

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SQLStore implements Store over database/sql, against either schema from
// internal/db.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) UpsertRubric(ctx context.Context, r Rubric) error {
	if err := ValidateRubric(r.WW, r.PT, r.QA); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO rubrics (subject_id, ww_weight, pt_weight, qa_weight, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (subject_id) DO UPDATE SET
		  ww_weight=EXCLUDED.ww_weight, pt_weight=EXCLUDED.pt_weight,
		  qa_weight=EXCLUDED.qa_weight, updated_at=EXCLUDED.updated_at`,
		r.SubjectID, r.WW, r.PT, r.QA, time.Now().Unix())
	return err
}

func (s *SQLStore) GetRubric(ctx context.Context, subjectID string) (Rubric, error) {
	var r Rubric
	err := s.db.QueryRowContext(ctx, `SELECT subject_id, ww_weight, pt_weight, qa_weight
		FROM rubrics WHERE subject_id=$1`, subjectID).
		Scan(&r.SubjectID, &r.WW, &r.PT, &r.QA)
	if errors.Is(err, sql.ErrNoRows) {
		return Rubric{}, ErrRubricNotFound
	}
	if err != nil {
		return Rubric{}, err
	}
	return r, nil
}

func (s *SQLStore) CreateActivity(ctx context.Context, a Activity) (Activity, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO activities
		(id, subject_id, section_id, quarter, category, title, max_score, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.SubjectID, a.SectionID, a.Quarter, string(a.Category), a.Title, a.MaxScore.String(), a.CreatedAt)
	if err != nil {
		return Activity{}, err
	}
	return a, nil
}

func (s *SQLStore) ListActivities(ctx context.Context, subjectID, sectionID string, quarter int) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, subject_id, section_id, quarter, category, title, max_score, created_at
		FROM activities
		WHERE subject_id=$1 AND ($2='' OR section_id=$2) AND ($3=0 OR quarter=$3)
		ORDER BY created_at, id`, subjectID, sectionID, quarter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		var cat, maxScore string
		if err := rows.Scan(&a.ID, &a.SubjectID, &a.SectionID, &a.Quarter, &cat, &a.Title, &maxScore, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Category = Category(cat)
		if a.MaxScore, err = decimal.NewFromString(maxScore); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertScore(ctx context.Context, activityID, studentID string, value *decimal.Decimal) error {
	var maxScore string
	err := s.db.QueryRowContext(ctx, `SELECT max_score FROM activities WHERE id=$1`, activityID).Scan(&maxScore)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrActivityNotFound
	}
	if err != nil {
		return err
	}
	max, err := decimal.NewFromString(maxScore)
	if err != nil {
		return err
	}
	if err := validateScoreValue(value, max); err != nil {
		return err
	}
	var v sql.NullString
	if value != nil {
		v = sql.NullString{String: value.String(), Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO scores (activity_id, student_id, value, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (activity_id, student_id) DO UPDATE SET
		  value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`,
		activityID, studentID, v, time.Now().Unix())
	return err
}

func (s *SQLStore) ScoresByCategory(ctx context.Context, subjectID, studentID string, quarter int) (map[Category][]Score, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT a.id, a.category, a.max_score, sc.value
		FROM activities a
		LEFT JOIN scores sc ON sc.activity_id = a.id AND sc.student_id = $2
		WHERE a.subject_id=$1 AND a.quarter=$3
		ORDER BY a.created_at, a.id`, subjectID, studentID, quarter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[Category][]Score{}
	for rows.Next() {
		var cat, maxScore string
		var value sql.NullString
		s := Score{StudentID: studentID}
		if err := rows.Scan(&s.ActivityID, &cat, &maxScore, &value); err != nil {
			return nil, err
		}
		if s.MaxScore, err = decimal.NewFromString(maxScore); err != nil {
			return nil, err
		}
		if value.Valid {
			v, err := decimal.NewFromString(value.String)
			if err != nil {
				return nil, err
			}
			s.Value = &v
		}
		out[Category(cat)] = append(out[Category(cat)], s)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutConductRating(ctx context.Context, studentID, subjectID string, quarter int, rating ConductRating) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO conduct_ratings (student_id, subject_id, quarter, rating, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (student_id, subject_id, quarter) DO UPDATE SET
		  rating=EXCLUDED.rating, updated_at=EXCLUDED.updated_at`,
		studentID, subjectID, quarter, string(rating), time.Now().Unix())
	return err
}

func (s *SQLStore) GetConductRating(ctx context.Context, studentID, subjectID string, quarter int) (ConductRating, bool, error) {
	var rating string
	err := s.db.QueryRowContext(ctx, `SELECT rating FROM conduct_ratings
		WHERE student_id=$1 AND subject_id=$2 AND quarter=$3`, studentID, subjectID, quarter).
		Scan(&rating)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return ConductRating(rating), true, nil
}
