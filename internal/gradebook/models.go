package gradebook

import (
	"github.com/shopspring/decimal"
)

// Category is one of the three grading components every subject rubric
// weighs: Written Work, Performance Task, Quarterly Assessment.
type Category string

const (
	WrittenWork         Category = "WW"
	PerformanceTask     Category = "PT"
	QuarterlyAssessment Category = "QA"
)

// Categories lists all categories in rubric order.
var Categories = []Category{WrittenWork, PerformanceTask, QuarterlyAssessment}

func (c Category) Valid() bool {
	switch c {
	case WrittenWork, PerformanceTask, QuarterlyAssessment:
		return true
	}
	return false
}

// Rubric is a subject's category weighting. Only rubrics whose weights sum
// to exactly 100 are ever persisted or used for computation.
type Rubric struct {
	SubjectID string `json:"subject_id"`
	WW        int    `json:"ww_weight"`
	PT        int    `json:"pt_weight"`
	QA        int    `json:"qa_weight"`
}

// Weight returns the rubric weight for a category.
func (r Rubric) Weight(c Category) int {
	switch c {
	case WrittenWork:
		return r.WW
	case PerformanceTask:
		return r.PT
	default:
		return r.QA
	}
}

// Activity is one graded task (a quiz, project, exam) under a subject,
// section, quarter and category.
type Activity struct {
	ID        string          `json:"id"`
	SubjectID string          `json:"subject_id"`
	SectionID string          `json:"section_id"`
	Quarter   int             `json:"quarter"` // 1..4
	Category  Category        `json:"category"`
	Title     string          `json:"title"`
	MaxScore  decimal.Decimal `json:"max_score"`
	CreatedAt int64           `json:"created_at"`
}

// Score is one student's result on one activity. A nil Value means the
// score has not been recorded; it is distinct from a recorded zero.
type Score struct {
	ActivityID string           `json:"activity_id"`
	StudentID  string           `json:"student_id"`
	Value      *decimal.Decimal `json:"value"`
	MaxScore   decimal.Decimal  `json:"max_score"`
}

// QuarterGrade is the computed weighted grade on a 0-100 scale.
type QuarterGrade struct {
	StudentID string          `json:"student_id"`
	SubjectID string          `json:"subject_id"`
	Quarter   int             `json:"quarter"`
	Grade     decimal.Decimal `json:"grade"`
}

// ConductRating is the closed set of behavior marks a teacher records per
// student, subject and quarter.
type ConductRating string

const (
	AlwaysObserved    ConductRating = "AO"
	SometimesObserved ConductRating = "SO"
	RarelyObserved    ConductRating = "RO"
	NotObserved       ConductRating = "NO"
)

func (r ConductRating) Valid() bool {
	switch r {
	case AlwaysObserved, SometimesObserved, RarelyObserved, NotObserved:
		return true
	}
	return false
}
