package store

import (
	"context"
	"database/sql"

	"etuitions-server/internal/models"
)

// InsertTuition creates a new tuition posting
func (s *Store) InsertTuition(ctx context.Context, tuition *models.Tuition) error {
	query := `
		INSERT INTO tuitions (name, student_class, location, subjects, salary, days_per_week, description, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, tuition, query,
		tuition.Name, tuition.StudentClass, tuition.Location, tuition.Subjects,
		tuition.Salary, tuition.DaysPerWeek, tuition.Description, tuition.Image)
}

// LatestTuitions retrieves the most recent postings, newest first
func (s *Store) LatestTuitions(ctx context.Context, limit int) ([]models.Tuition, error) {
	var tuitions []models.Tuition
	err := s.db.SelectContext(ctx, &tuitions,
		"SELECT * FROM tuitions ORDER BY created_at DESC LIMIT $1", limit)
	return tuitions, err
}

// ListTuitions retrieves all postings
func (s *Store) ListTuitions(ctx context.Context) ([]models.Tuition, error) {
	var tuitions []models.Tuition
	err := s.db.SelectContext(ctx, &tuitions,
		"SELECT * FROM tuitions ORDER BY created_at DESC")
	return tuitions, err
}

// GetTuitionByID retrieves a posting by ID
func (s *Store) GetTuitionByID(ctx context.Context, id int64) (*models.Tuition, error) {
	var tuition models.Tuition
	err := s.db.GetContext(ctx, &tuition, "SELECT * FROM tuitions WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tuition, nil
}

// UpdateTuition replaces the mutable fields of a posting
func (s *Store) UpdateTuition(ctx context.Context, id int64, tuition *models.Tuition) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tuitions
		SET name = $1, student_class = $2, location = $3, subjects = $4,
		    salary = $5, days_per_week = $6, description = $7, image = $8
		WHERE id = $9`,
		tuition.Name, tuition.StudentClass, tuition.Location, tuition.Subjects,
		tuition.Salary, tuition.DaysPerWeek, tuition.Description, tuition.Image, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTuition removes a posting
func (s *Store) DeleteTuition(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tuitions WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
