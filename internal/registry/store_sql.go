package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) exists(ctx context.Context, table, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id=$1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ---- students ----

func (s *SQLStore) CreateStudent(ctx context.Context, st Student) (Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.CreatedAt == 0 {
		st.CreatedAt = time.Now().Unix()
	}
	st.Active = true
	sectionID := sql.NullString{String: st.SectionID, Valid: st.SectionID != ""}
	_, err := s.db.ExecContext(ctx, `INSERT INTO students (id, lrn, first_name, last_name, section_id, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		st.ID, st.LRN, st.FirstName, st.LastName, sectionID, st.Active, st.CreatedAt)
	if err != nil {
		return Student{}, err
	}
	return st, nil
}

func (s *SQLStore) GetStudent(ctx context.Context, id string) (Student, error) {
	var st Student
	var sectionID sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT id, lrn, first_name, last_name, section_id, active, created_at
		FROM students WHERE id=$1`, id).
		Scan(&st.ID, &st.LRN, &st.FirstName, &st.LastName, &sectionID, &st.Active, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	if err != nil {
		return Student{}, err
	}
	st.SectionID = sectionID.String
	return st, nil
}

func (s *SQLStore) ListStudents(ctx context.Context, sectionID string, limit, offset int) ([]Student, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, lrn, first_name, last_name, section_id, active, created_at
		FROM students WHERE ($1='' OR section_id=$1)
		ORDER BY last_name, first_name LIMIT $2 OFFSET $3`, sectionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Student, 0, limit)
	for rows.Next() {
		var st Student
		var sec sql.NullString
		if err := rows.Scan(&st.ID, &st.LRN, &st.FirstName, &st.LastName, &sec, &st.Active, &st.CreatedAt); err != nil {
			return nil, err
		}
		st.SectionID = sec.String
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateStudent(ctx context.Context, st Student) error {
	sectionID := sql.NullString{String: st.SectionID, Valid: st.SectionID != ""}
	res, err := s.db.ExecContext(ctx, `UPDATE students
		SET lrn=$2, first_name=$3, last_name=$4, section_id=$5, active=$6 WHERE id=$1`,
		st.ID, st.LRN, st.FirstName, st.LastName, sectionID, st.Active)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func (s *SQLStore) StudentExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "students", id)
}

// ---- sections ----

func (s *SQLStore) CreateSection(ctx context.Context, sec Section) (Section, error) {
	if sec.ID == "" {
		sec.ID = uuid.NewString()
	}
	adviser := sql.NullString{String: sec.AdviserID, Valid: sec.AdviserID != ""}
	_, err := s.db.ExecContext(ctx, `INSERT INTO sections (id, name, grade_level, school_year, adviser_id)
		VALUES ($1,$2,$3,$4,$5)`, sec.ID, sec.Name, sec.GradeLevel, sec.SchoolYear, adviser)
	if err != nil {
		return Section{}, err
	}
	return sec, nil
}

func (s *SQLStore) ListSections(ctx context.Context, schoolYear string) ([]Section, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, grade_level, school_year, adviser_id
		FROM sections WHERE ($1='' OR school_year=$1) ORDER BY grade_level, name`, schoolYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Section, 0)
	for rows.Next() {
		var sec Section
		var adviser sql.NullString
		if err := rows.Scan(&sec.ID, &sec.Name, &sec.GradeLevel, &sec.SchoolYear, &adviser); err != nil {
			return nil, err
		}
		sec.AdviserID = adviser.String
		out = append(out, sec)
	}
	return out, rows.Err()
}

// ---- subjects ----

func (s *SQLStore) CreateSubject(ctx context.Context, sub Subject) (Subject, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO subjects (id, code, name, grade_level)
		VALUES ($1,$2,$3,$4)`, sub.ID, sub.Code, sub.Name, sub.GradeLevel)
	if err != nil {
		return Subject{}, err
	}
	return sub, nil
}

func (s *SQLStore) ListSubjects(ctx context.Context, gradeLevel int) ([]Subject, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name, grade_level
		FROM subjects WHERE ($1=0 OR grade_level=$1) ORDER BY grade_level, code`, gradeLevel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Subject, 0)
	for rows.Next() {
		var sub Subject
		if err := rows.Scan(&sub.ID, &sub.Code, &sub.Name, &sub.GradeLevel); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// ---- schedules ----

func (s *SQLStore) CreateSchedule(ctx context.Context, sc Schedule) (Schedule, error) {
	if sc.DayOfWeek < 1 || sc.DayOfWeek > 7 {
		return Schedule{}, fmt.Errorf("day_of_week %d out of range", sc.DayOfWeek)
	}
	if sc.EndMinute <= sc.StartMinute {
		return Schedule{}, fmt.Errorf("schedule must end after it starts")
	}
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	teacher := sql.NullString{String: sc.TeacherID, Valid: sc.TeacherID != ""}
	_, err := s.db.ExecContext(ctx, `INSERT INTO schedules
		(id, section_id, subject_id, teacher_id, day_of_week, start_minute, end_minute)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		sc.ID, sc.SectionID, sc.SubjectID, teacher, sc.DayOfWeek, sc.StartMinute, sc.EndMinute)
	if err != nil {
		return Schedule{}, err
	}
	return sc, nil
}

func (s *SQLStore) ListSchedules(ctx context.Context, sectionID string) ([]Schedule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, section_id, subject_id, teacher_id, day_of_week, start_minute, end_minute
		FROM schedules WHERE section_id=$1 ORDER BY day_of_week, start_minute`, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Schedule, 0)
	for rows.Next() {
		var sc Schedule
		var teacher sql.NullString
		if err := rows.Scan(&sc.ID, &sc.SectionID, &sc.SubjectID, &teacher, &sc.DayOfWeek, &sc.StartMinute, &sc.EndMinute); err != nil {
			return nil, err
		}
		sc.TeacherID = teacher.String
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ---- fees ----

func (s *SQLStore) CreateFee(ctx context.Context, f Fee) (Fee, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.Active = true
	var gradeLevel sql.NullInt64
	if f.GradeLevel != 0 {
		gradeLevel = sql.NullInt64{Int64: int64(f.GradeLevel), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO fees (id, name, amount, school_year, grade_level, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		f.ID, f.Name, f.Amount.String(), f.SchoolYear, gradeLevel, f.Active)
	if err != nil {
		return Fee{}, err
	}
	return f, nil
}

func (s *SQLStore) ListFees(ctx context.Context, schoolYear string, activeOnly bool) ([]Fee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, amount, school_year, grade_level, active
		FROM fees WHERE ($1='' OR school_year=$1) AND (NOT $2 OR active) ORDER BY name`,
		schoolYear, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Fee, 0)
	for rows.Next() {
		var f Fee
		var amount string
		var gradeLevel sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Name, &amount, &f.SchoolYear, &gradeLevel, &f.Active); err != nil {
			return nil, err
		}
		if f.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		f.GradeLevel = int(gradeLevel.Int64)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetFeeActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE fees SET active=$2 WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func (s *SQLStore) FeeExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "fees", id)
}

// ---- discounts ----

func (s *SQLStore) CreateDiscount(ctx context.Context, d Discount) (Discount, error) {
	if d.Percent < 0 || d.Percent > 100 {
		return Discount{}, fmt.Errorf("discount percent %d out of range", d.Percent)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.Active = true
	_, err := s.db.ExecContext(ctx, `INSERT INTO discounts (id, name, percent, active)
		VALUES ($1,$2,$3,$4)`, d.ID, d.Name, d.Percent, d.Active)
	if err != nil {
		return Discount{}, err
	}
	return d, nil
}

func (s *SQLStore) ListDiscounts(ctx context.Context, activeOnly bool) ([]Discount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, percent, active
		FROM discounts WHERE (NOT $1 OR active) ORDER BY name`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Discount, 0)
	for rows.Next() {
		var d Discount
		if err := rows.Scan(&d.ID, &d.Name, &d.Percent, &d.Active); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ---- inventory ----

func (s *SQLStore) CreateItem(ctx context.Context, it InventoryItem) (InventoryItem, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	it.Active = true
	_, err := s.db.ExecContext(ctx, `INSERT INTO inventory_items (id, name, price, stock, active)
		VALUES ($1,$2,$3,$4,$5)`, it.ID, it.Name, it.Price.String(), it.Stock, it.Active)
	if err != nil {
		return InventoryItem{}, err
	}
	return it, nil
}

func (s *SQLStore) ListItems(ctx context.Context, activeOnly bool) ([]InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, price, stock, active
		FROM inventory_items WHERE (NOT $1 OR active) ORDER BY name`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]InventoryItem, 0)
	for rows.Next() {
		var it InventoryItem
		var price string
		if err := rows.Scan(&it.ID, &it.Name, &price, &it.Stock, &it.Active); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *SQLStore) AdjustStock(ctx context.Context, id string, delta int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE inventory_items SET stock = stock + $2 WHERE id=$1`, id, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func (s *SQLStore) ItemExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "inventory_items", id)
}
