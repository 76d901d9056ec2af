package request

import (
	"context"

	"github.com/sanosuguru/go-event-participation/internal/domain/transaction"
)

// Repository は参加リクエストリポジトリのインターフェース
type Repository interface {
	// Create は新しい参加リクエストを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, r *ParticipationRequest) error

	// GetByID はIDから参加リクエストを取得する
	GetByID(ctx context.Context, id string) (*ParticipationRequest, error)

	// GetByIDs は複数IDから参加リクエストを取得する
	// 見つからないIDがあっても取得できた分のみ返す（件数チェックは呼び出し側）
	GetByIDs(ctx context.Context, ids []string) ([]*ParticipationRequest, error)

	// ListByRequester はリクエスト者IDから参加リクエスト一覧を取得する
	ListByRequester(ctx context.Context, requesterID string) ([]*ParticipationRequest, error)

	// ListByEvent はイベントIDから参加リクエスト一覧を取得する
	ListByEvent(ctx context.Context, eventID string) ([]*ParticipationRequest, error)

	// FindPendingByEvent はイベントの保留中リクエスト一覧を取得する（カスケード却下用）
	FindPendingByEvent(ctx context.Context, eventID string) ([]*ParticipationRequest, error)

	// FindActiveByRequesterAndEvent は（リクエスト者, イベント）の有効な
	// （CANCELED 以外の）リクエストを取得する（重複チェック用）
	FindActiveByRequesterAndEvent(ctx context.Context, requesterID, eventID string) (*ParticipationRequest, error)

	// Update は参加リクエストを更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, r *ParticipationRequest) error

	// UpdateAll は複数の参加リクエストを同一トランザクションで更新する
	UpdateAll(ctx context.Context, tx transaction.Tx, rs []*ParticipationRequest) error
}
