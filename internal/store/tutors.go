package store

import (
	"context"
	"database/sql"

	"etuitions-server/internal/models"
)

// InsertTutor creates a new tutor profile
func (s *Store) InsertTutor(ctx context.Context, tutor *models.Tutor) error {
	query := `
		INSERT INTO tutors (name, subjects, location, photo, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, tutor, query,
		tutor.Name, tutor.Subjects, tutor.Location, tutor.Photo, tutor.Description)
}

// LatestTutors retrieves the most recent tutor profiles, newest first
func (s *Store) LatestTutors(ctx context.Context, limit int) ([]models.Tutor, error) {
	var tutors []models.Tutor
	err := s.db.SelectContext(ctx, &tutors,
		"SELECT * FROM tutors ORDER BY created_at DESC LIMIT $1", limit)
	return tutors, err
}

// ListTutors retrieves all tutor profiles
func (s *Store) ListTutors(ctx context.Context) ([]models.Tutor, error) {
	var tutors []models.Tutor
	err := s.db.SelectContext(ctx, &tutors,
		"SELECT * FROM tutors ORDER BY created_at DESC")
	return tutors, err
}

// GetTutorByID retrieves a tutor profile by ID
func (s *Store) GetTutorByID(ctx context.Context, id int64) (*models.Tutor, error) {
	var tutor models.Tutor
	err := s.db.GetContext(ctx, &tutor, "SELECT * FROM tutors WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tutor, nil
}
