package registry

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Store is the catalog CRUD surface plus the existence lookups the cashier
// validator depends on (it satisfies cashier.Directory).
type Store interface {
	CreateStudent(ctx context.Context, s Student) (Student, error)
	GetStudent(ctx context.Context, id string) (Student, error)
	ListStudents(ctx context.Context, sectionID string, limit, offset int) ([]Student, error)
	UpdateStudent(ctx context.Context, s Student) error
	StudentExists(ctx context.Context, id string) (bool, error)

	CreateSection(ctx context.Context, s Section) (Section, error)
	ListSections(ctx context.Context, schoolYear string) ([]Section, error)

	CreateSubject(ctx context.Context, s Subject) (Subject, error)
	ListSubjects(ctx context.Context, gradeLevel int) ([]Subject, error)

	CreateSchedule(ctx context.Context, s Schedule) (Schedule, error)
	ListSchedules(ctx context.Context, sectionID string) ([]Schedule, error)

	CreateFee(ctx context.Context, f Fee) (Fee, error)
	ListFees(ctx context.Context, schoolYear string, activeOnly bool) ([]Fee, error)
	SetFeeActive(ctx context.Context, id string, active bool) error
	FeeExists(ctx context.Context, id string) (bool, error)

	CreateDiscount(ctx context.Context, d Discount) (Discount, error)
	ListDiscounts(ctx context.Context, activeOnly bool) ([]Discount, error)

	CreateItem(ctx context.Context, it InventoryItem) (InventoryItem, error)
	ListItems(ctx context.Context, activeOnly bool) ([]InventoryItem, error)
	AdjustStock(ctx context.Context, id string, delta int) error
	ItemExists(ctx context.Context, id string) (bool, error)
}
