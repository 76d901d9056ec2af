package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-participation/internal/domain/category"
)

type categoryRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

// CategoryRepository はカテゴリリポジトリのPostgreSQL実装
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository はCategoryRepositoryを作成する
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create は新しいカテゴリを作成する
func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	query := `INSERT INTO categories (name) VALUES ($1) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, c.Name).Scan(&c.ID); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return category.ErrCategoryNameExists
		}
		return fmt.Errorf("カテゴリ作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからカテゴリを取得する
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*category.Category, error) {
	var row categoryRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, name FROM categories WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("カテゴリ取得に失敗しました: %w", err)
	}
	return &category.Category{ID: row.ID, Name: row.Name}, nil
}

// List はカテゴリ一覧を取得する
func (r *CategoryRepository) List(ctx context.Context, limit, offset int) ([]*category.Category, error) {
	var rows []categoryRow
	query := `SELECT id, name FROM categories ORDER BY name LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("カテゴリ一覧取得に失敗しました: %w", err)
	}

	categories := make([]*category.Category, len(rows))
	for i, row := range rows {
		categories[i] = &category.Category{ID: row.ID, Name: row.Name}
	}
	return categories, nil
}

// Update はカテゴリを更新する
func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) error {
	result, err := r.db.ExecContext(ctx, `UPDATE categories SET name = $1 WHERE id = $2`, c.Name, c.ID)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return category.ErrCategoryNameExists
		}
		return fmt.Errorf("カテゴリ更新に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rows == 0 {
		return category.ErrCategoryNotFound
	}
	return nil
}

// Delete はカテゴリを削除する
// イベントから参照されているカテゴリは外部キー制約により削除できない
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23503" {
			return category.ErrCategoryInUse
		}
		return fmt.Errorf("カテゴリ削除に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rows == 0 {
		return category.ErrCategoryNotFound
	}
	return nil
}

var _ category.Repository = (*CategoryRepository)(nil)
