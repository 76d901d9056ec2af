package category

import "context"

// Repository はカテゴリリポジトリのインターフェース
type Repository interface {
	// Create は新しいカテゴリを作成する
	Create(ctx context.Context, c *Category) error

	// GetByID はIDからカテゴリを取得する
	GetByID(ctx context.Context, id string) (*Category, error)

	// List はカテゴリ一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Category, error)

	// Update はカテゴリを更新する
	Update(ctx context.Context, c *Category) error

	// Delete はカテゴリを削除する
	Delete(ctx context.Context, id string) error
}
