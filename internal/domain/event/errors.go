package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound           = errors.New("イベントが見つかりません")
	ErrTitleRequired           = errors.New("イベントタイトルは必須です")
	ErrCategoryRequired        = errors.New("カテゴリは必須です")
	ErrInvalidParticipantLimit = errors.New("参加者数上限は0以上である必要があります")
	ErrEventDateTooSoon        = errors.New("イベント開催日時が近すぎます")
	ErrInvalidTimeRange        = errors.New("開始日時は終了日時より前である必要があります")
	ErrNotPendingState         = errors.New("承認待ち状態のイベントのみ操作できます")
	ErrNotCanceledState        = errors.New("キャンセル済み状態のイベントのみ再申請できます")
	ErrAlreadyPublished        = errors.New("イベントは既に公開されています")
	ErrUnknownStateAction      = errors.New("不明な状態操作です")
	ErrParticipantLimitReached = errors.New("参加者数の上限に達しています")
	ErrNoConfirmedRequests     = errors.New("確定済みリクエストがありません")
	ErrOptimisticLockConflict  = errors.New("楽観的ロックの競合が発生しました")
)
