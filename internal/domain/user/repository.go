package user

import "context"

// Repository はユーザーリポジトリのインターフェース
type Repository interface {
	// Create は新しいユーザーを作成する
	Create(ctx context.Context, u *User) error

	// GetByID はIDからユーザーを取得する
	GetByID(ctx context.Context, id string) (*User, error)

	// List はユーザー一覧を取得する（ids が空の場合は全件をページング）
	List(ctx context.Context, ids []string, limit, offset int) ([]*User, error)

	// Delete はユーザーを削除する
	Delete(ctx context.Context, id string) error
}
