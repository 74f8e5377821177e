package repository

import (
	"context"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestRepository handles test catalog data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// List retrieves all tests with their question counts, ordered by title.
func (r *TestRepository) List(ctx context.Context) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.slug, t.title, t.description,
		        (SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id),
		        t.created_at, t.updated_at
		 FROM tests t
		 ORDER BY t.title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.Slug, &t.Title, &t.Description, &t.QuestionCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// GetByID retrieves a test by ID.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT t.id, t.slug, t.title, t.description,
		        (SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id),
		        t.created_at, t.updated_at
		 FROM tests t WHERE t.id = $1`, id,
	).Scan(&t.ID, &t.Slug, &t.Title, &t.Description, &t.QuestionCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetBySlug retrieves a test by its URL slug.
func (r *TestRepository) GetBySlug(ctx context.Context, slug string) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT t.id, t.slug, t.title, t.description,
		        (SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id),
		        t.created_at, t.updated_at
		 FROM tests t WHERE t.slug = $1`, slug,
	).Scan(&t.ID, &t.Slug, &t.Title, &t.Description, &t.QuestionCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Upsert creates or updates a test by slug. Used by the question seeder.
func (r *TestRepository) Upsert(ctx context.Context, slug, title, description string) (*model.Test, error) {
	t := &model.Test{Slug: slug, Title: title, Description: description}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tests (slug, title, description)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (slug) DO UPDATE
		 SET title = EXCLUDED.title, description = EXCLUDED.description, updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		slug, title, description,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}
