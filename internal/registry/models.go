package registry

import (
	"github.com/shopspring/decimal"
)

// Student is an enrolled learner.
type Student struct {
	ID        string `json:"id"`
	LRN       string `json:"lrn"` // DepEd learner reference number
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	SectionID string `json:"section_id,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"created_at"`
}

// Section is a homeroom class for one school year.
type Section struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	GradeLevel int    `json:"grade_level"`
	SchoolYear string `json:"school_year"`
	AdviserID  string `json:"adviser_id,omitempty"`
}

type Subject struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	GradeLevel int    `json:"grade_level"`
}

// Schedule is one weekly meeting of a subject with a section.
type Schedule struct {
	ID          string `json:"id"`
	SectionID   string `json:"section_id"`
	SubjectID   string `json:"subject_id"`
	TeacherID   string `json:"teacher_id,omitempty"`
	DayOfWeek   int    `json:"day_of_week"` // 1=Monday .. 7=Sunday
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
}

// Fee is a chargeable tuition or miscellaneous fee for a school year.
type Fee struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	SchoolYear string          `json:"school_year"`
	GradeLevel int             `json:"grade_level,omitempty"` // 0 = all levels
	Active     bool            `json:"active"`
}

// Discount is a percentage reduction applied at enrollment (sibling,
// scholar, early-bird).
type Discount struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Percent int    `json:"percent"` // 0..100
	Active  bool   `json:"active"`
}

// InventoryItem is a sellable item at the cashier window (uniforms, books).
type InventoryItem struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
	Active bool            `json:"active"`
}
