// Package settings holds the school-wide toggles middleware consults:
// current school year, maintenance mode, parent portal. Handlers receive a
// loaded Snapshot value per request; nothing reads mutable global state.
package settings

import (
	"context"
	"database/sql"
	"errors"
)

type Snapshot struct {
	SchoolYear      string `json:"school_year"`
	MaintenanceMode bool   `json:"maintenance_mode"`
	ParentPortal    bool   `json:"parent_portal"`
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ensure seeds the single settings row if missing.
func (s *Store) Ensure(ctx context.Context, defaultSchoolYear string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO settings (id, school_year, maintenance_mode, parent_portal)
		VALUES (1, $1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		defaultSchoolYear, false, true)
	return err
}

func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.db.QueryRowContext(ctx, `SELECT school_year, maintenance_mode, parent_portal FROM settings WHERE id=1`).
		Scan(&snap.SchoolYear, &snap.MaintenanceMode, &snap.ParentPortal)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, errors.New("settings not initialized")
	}
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	_, err := s.db.ExecContext(ctx, `UPDATE settings SET school_year=$1, maintenance_mode=$2, parent_portal=$3 WHERE id=1`,
		snap.SchoolYear, snap.MaintenanceMode, snap.ParentPortal)
	return err
}
