package gradebook

import (
	"context"
)

// GradeFor loads the subject's active rubric and the student's scores for
// the quarter, then computes the weighted grade. Callers distinguish
// ErrIncomplete (no grade yet) from real failures.
func GradeFor(ctx context.Context, store Store, subjectID, studentID string, quarter int) (QuarterGrade, error) {
	rubric, err := store.GetRubric(ctx, subjectID)
	if err != nil {
		return QuarterGrade{}, err
	}
	scores, err := store.ScoresByCategory(ctx, subjectID, studentID, quarter)
	if err != nil {
		return QuarterGrade{}, err
	}
	grade, err := ComputeQuarterGrade(rubric, scores)
	if err != nil {
		return QuarterGrade{}, err
	}
	return QuarterGrade{
		StudentID: studentID,
		SubjectID: subjectID,
		Quarter:   quarter,
		Grade:     grade,
	}, nil
}
