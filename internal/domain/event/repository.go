package event

import (
	"context"
	"time"

	"github.com/sanosuguru/go-event-participation/internal/domain/transaction"
)

// Filter はイベント検索条件を表す
type Filter struct {
	Text          string
	CategoryIDs   []string
	InitiatorIDs  []string
	States        []State
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Limit         int
	Offset        int
}

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する
	Create(ctx context.Context, e *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)

	// GetByIDAndInitiator はIDと主催者IDからイベントを取得する（所有権チェック）
	GetByIDAndInitiator(ctx context.Context, id, initiatorID string) (*Event, error)

	// GetPublishedByID は公開済みイベントをIDから取得する
	GetPublishedByID(ctx context.Context, id string) (*Event, error)

	// List は検索条件に一致するイベント一覧を取得する
	List(ctx context.Context, filter Filter) ([]*Event, error)

	// Update はイベントを更新する（楽観的ロック）
	Update(ctx context.Context, e *Event) error

	// UpdateTx はトランザクション内でイベントを更新する（楽観的ロック）
	// 参加リクエストの確定と同一のコミット単位でカウンタを更新するために使用する
	UpdateTx(ctx context.Context, tx transaction.Tx, e *Event) error

	// AddViews は閲覧数カウンタをイベントIDごとの増分で加算する
	AddViews(ctx context.Context, deltas map[string]int64) error
}
