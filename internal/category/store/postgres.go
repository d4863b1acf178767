package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"eventhub/internal/category/models"
	id "eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
	"eventhub/pkg/platform/tx"
)

// Postgres persists categories in the categories table. The unique index on
// LOWER(name) enforces case-insensitive name uniqueness.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const categoryColumns = `id, name, description, color, icon, is_active, sort_order, created_at, updated_at`

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) conn(ctx context.Context) querier {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

// Create inserts the category and returns it with its assigned ID. Duplicate
// names map to sentinel.ErrAlreadyUsed.
func (s *Postgres) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	stored := category.Clone()
	err := s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO categories (name, description, color, icon, is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		category.Name, category.Description, category.Color, category.Icon,
		category.IsActive, category.SortOrder, category.CreatedAt, category.UpdatedAt,
	).Scan(&stored.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, sentinel.ErrAlreadyUsed
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return stored, nil
}

// Get loads a single category.
func (s *Postgres) Get(ctx context.Context, categoryID id.CategoryID) (*models.Category, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, int64(categoryID))
	return scanCategory(row)
}

// List returns categories ordered by sort order, then name.
func (s *Postgres) List(ctx context.Context, activeOnly bool) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// Execute locks the category row, applies fn, and writes the result back.
func (s *Postgres) Execute(ctx context.Context, categoryID id.CategoryID, fn func(*models.Category) error) (*models.Category, error) {
	if _, ok := tx.From(ctx); ok {
		return s.executeLocked(ctx, s.conn(ctx), categoryID, fn)
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	category, err := s.executeLocked(ctx, sqlTx, categoryID, fn)
	if err != nil {
		_ = sqlTx.Rollback()
		return nil, err
	}
	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return category, nil
}

func (s *Postgres) executeLocked(ctx context.Context, q querier, categoryID id.CategoryID, fn func(*models.Category) error) (*models.Category, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 FOR UPDATE`, int64(categoryID))
	category, err := scanCategory(row)
	if err != nil {
		return nil, err
	}

	if err := fn(category); err != nil {
		return nil, err
	}

	_, err = q.ExecContext(ctx, `
		UPDATE categories SET name = $2, description = $3, color = $4, icon = $5,
			is_active = $6, sort_order = $7, updated_at = $8
		WHERE id = $1`,
		int64(category.ID), category.Name, category.Description, category.Color,
		category.Icon, category.IsActive, category.SortOrder, category.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var category models.Category
	err := row.Scan(
		&category.ID, &category.Name, &category.Description, &category.Color,
		&category.Icon, &category.IsActive, &category.SortOrder,
		&category.CreatedAt, &category.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan category: %w", err)
	}
	category.CreatedAt = category.CreatedAt.UTC()
	category.UpdatedAt = category.UpdatedAt.UTC()
	return &category, nil
}
