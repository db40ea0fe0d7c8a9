package repositories

import (
	"context"
	"fmt"

	"github.com/JakitaK/dataset-webapi-group2/pkg/database"
	"github.com/JakitaK/dataset-webapi-group2/pkg/models"
)

// DirectorRepository provides read access to director rows for the API.
type DirectorRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.Director, error)
	Count(ctx context.Context) (int, error)
}

type directorRepository struct {
	db *database.DB
}

// NewDirectorRepository creates a new DirectorRepository.
func NewDirectorRepository(db *database.DB) DirectorRepository {
	return &directorRepository{db: db}
}

var _ DirectorRepository = (*directorRepository)(nil)

func (r *directorRepository) List(ctx context.Context, limit, offset int) ([]models.Director, error) {
	query := `
		SELECT director_id, name
		FROM director
		ORDER BY name ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list directors: %w", err)
	}
	defer rows.Close()

	var directors []models.Director
	for rows.Next() {
		var d models.Director
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("failed to scan director: %w", err)
		}
		directors = append(directors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read directors: %w", err)
	}

	return directors, nil
}

func (r *directorRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM director").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count directors: %w", err)
	}
	return count, nil
}
