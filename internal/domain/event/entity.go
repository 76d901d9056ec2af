package event

import "time"

// State はイベントの公開状態を表す
type State string

const (
	StatePending   State = "PENDING"
	StatePublished State = "PUBLISHED"
	StateCanceled  State = "CANCELED"
)

// AdminStateAction は管理者によるイベント状態操作を表す
type AdminStateAction string

const (
	AdminActionPublishEvent AdminStateAction = "PUBLISH_EVENT"
	AdminActionRejectEvent  AdminStateAction = "REJECT_EVENT"
)

// ParseAdminStateAction は管理者の状態操作文字列をパースする
// 未知の操作は境界で弾く
func ParseAdminStateAction(s string) (AdminStateAction, error) {
	switch AdminStateAction(s) {
	case AdminActionPublishEvent, AdminActionRejectEvent:
		return AdminStateAction(s), nil
	default:
		return "", ErrUnknownStateAction
	}
}

// UserStateAction は主催者によるイベント状態操作を表す
type UserStateAction string

const (
	UserActionSendToReview UserStateAction = "SEND_TO_REVIEW"
	UserActionCancelReview UserStateAction = "CANCEL_REVIEW"
)

// ParseUserStateAction は主催者の状態操作文字列をパースする
func ParseUserStateAction(s string) (UserStateAction, error) {
	switch UserStateAction(s) {
	case UserActionSendToReview, UserActionCancelReview:
		return UserStateAction(s), nil
	default:
		return "", ErrUnknownStateAction
	}
}

// Event はイベント集約を表す
// ConfirmedRequests は確定済み参加リクエスト数の非正規化カウンタで、
// ParticipantLimit > 0 の間は常に ConfirmedRequests <= ParticipantLimit を維持する
// カウンタの変更は AddConfirmed / ReleaseConfirmed のみが行う
type Event struct {
	ID                string
	Title             string
	Annotation        string
	Description       string
	CategoryID        string
	InitiatorID       string
	EventDate         time.Time
	Paid              bool
	ParticipantLimit  int // 0 は無制限
	RequestModeration bool
	ConfirmedRequests int
	State             State
	CreatedOn         time.Time
	PublishedOn       *time.Time
	Views             int64
	Version           int // 楽観的ロック用
}

// NewEvent は新しいイベントを承認待ち状態で作成する
func NewEvent(initiatorID, categoryID, title, annotation, description string,
	eventDate time.Time, paid bool, participantLimit int, requestModeration bool) *Event {
	return &Event{
		Title:             title,
		Annotation:        annotation,
		Description:       description,
		CategoryID:        categoryID,
		InitiatorID:       initiatorID,
		EventDate:         eventDate,
		Paid:              paid,
		ParticipantLimit:  participantLimit,
		RequestModeration: requestModeration,
		ConfirmedRequests: 0,
		State:             StatePending,
		CreatedOn:         time.Now(),
		Version:           0,
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrTitleRequired
	}
	if e.CategoryID == "" {
		return ErrCategoryRequired
	}
	if e.ParticipantLimit < 0 {
		return ErrInvalidParticipantLimit
	}
	return nil
}

// IsPublished はイベントが公開済みかを返す
func (e *Event) IsPublished() bool {
	return e.State == StatePublished
}

// Publish はイベントを公開する（PENDING → PUBLISHED）
// PublishedOn は公開時に一度だけ設定される
func (e *Event) Publish(now time.Time) error {
	if e.State != StatePending {
		return ErrNotPendingState
	}
	e.State = StatePublished
	e.PublishedOn = &now
	return nil
}

// RejectPublication はイベントの公開を却下する（→ CANCELED）
// 公開済みイベントは却下できない
func (e *Event) RejectPublication() error {
	if e.State == StatePublished {
		return ErrAlreadyPublished
	}
	e.State = StateCanceled
	return nil
}

// SendToReview はキャンセル済みイベントを再度承認待ちに戻す（CANCELED → PENDING）
func (e *Event) SendToReview() error {
	if e.State != StateCanceled {
		return ErrNotCanceledState
	}
	e.State = StatePending
	return nil
}

// CancelReview は承認待ちイベントを取り下げる（PENDING → CANCELED）
func (e *Event) CancelReview() error {
	if e.State != StatePending {
		return ErrNotPendingState
	}
	e.State = StateCanceled
	return nil
}

// HasAvailableSlot は参加枠に空きがあるかを返す
func (e *Event) HasAvailableSlot() bool {
	return e.ParticipantLimit == 0 || e.ConfirmedRequests < e.ParticipantLimit
}

// IsFull は参加枠が埋まっているかを返す
func (e *Event) IsFull() bool {
	return e.ParticipantLimit > 0 && e.ConfirmedRequests >= e.ParticipantLimit
}

// AvailableSlots は残り参加枠数を返す（無制限の場合は -1）
func (e *Event) AvailableSlots() int {
	if e.ParticipantLimit == 0 {
		return -1
	}
	return e.ParticipantLimit - e.ConfirmedRequests
}

// AddConfirmed は確定カウンタを n 増やす
// 参加枠を超える場合は増やさずに ErrParticipantLimitReached を返す
func (e *Event) AddConfirmed(n int) error {
	if e.ParticipantLimit > 0 && e.ConfirmedRequests+n > e.ParticipantLimit {
		return ErrParticipantLimitReached
	}
	e.ConfirmedRequests += n
	return nil
}

// ReleaseConfirmed は確定カウンタを1減らす（確定済みリクエストのキャンセル時）
func (e *Event) ReleaseConfirmed() error {
	if e.ConfirmedRequests <= 0 {
		return ErrNoConfirmedRequests
	}
	e.ConfirmedRequests--
	return nil
}
