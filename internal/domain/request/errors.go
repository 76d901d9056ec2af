package request

import "errors"

// ParticipationRequest ドメインのエラー定義
var (
	ErrRequestNotFound        = errors.New("参加リクエストが見つかりません")
	ErrSomeRequestsNotFound   = errors.New("一部の参加リクエストが見つかりません")
	ErrRequestNotPending      = errors.New("保留中の参加リクエストのみ審査できます")
	ErrRequestAlreadyCanceled = errors.New("参加リクエストは既にキャンセルされています")
	ErrDuplicateRequest       = errors.New("同じイベントへの有効な参加リクエストが既に存在します")
	ErrNotRequestOwner        = errors.New("参加リクエストの所有者のみキャンセルできます")
	ErrOwnEventRequest        = errors.New("主催者は自分のイベントに参加リクエストできません")
	ErrEventNotPublished      = errors.New("公開されていないイベントには参加リクエストできません")
	ErrWrongEvent             = errors.New("参加リクエストはこのイベントのものではありません")
	ErrUnknownDecisionStatus  = errors.New("審査結果は CONFIRMED または REJECTED である必要があります")
	ErrEmptyRequestIDs        = errors.New("リクエストIDを1件以上指定してください")
	ErrNotEnoughSlots         = errors.New("空き枠が不足しています")
)
