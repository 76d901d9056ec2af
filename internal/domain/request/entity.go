package request

import "time"

// Status は参加リクエストの状態を表す
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusCanceled  Status = "CANCELED"
)

// ParseDecisionStatus は主催者の審査結果ステータスをパースする
// 審査結果として許されるのは CONFIRMED / REJECTED のみ
func ParseDecisionStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusConfirmed, StatusRejected:
		return Status(s), nil
	default:
		return "", ErrUnknownDecisionStatus
	}
}

// ParticipationRequest は参加リクエストエンティティを表す
// 同一の（リクエスト者, イベント）ペアに対して CANCELED 以外の状態のリクエストは
// 常に高々1件しか存在しない
type ParticipationRequest struct {
	ID          string
	EventID     string
	RequesterID string
	Status      Status
	Created     time.Time
}

// NewParticipationRequest は新しい参加リクエストを作成する
// 初期状態は承認エンジンの判定結果（PENDING または CONFIRMED）
func NewParticipationRequest(eventID, requesterID string, status Status) *ParticipationRequest {
	return &ParticipationRequest{
		EventID:     eventID,
		RequesterID: requesterID,
		Status:      status,
		Created:     time.Now(),
	}
}

// IsPending はリクエストが保留中かを返す
func (r *ParticipationRequest) IsPending() bool {
	return r.Status == StatusPending
}

// IsConfirmed はリクエストが確定済みかを返す
func (r *ParticipationRequest) IsConfirmed() bool {
	return r.Status == StatusConfirmed
}

// IsActive はリクエストが有効（CANCELED 以外）かを返す
// キャンセル済みリクエストは再リクエストをブロックしない
func (r *ParticipationRequest) IsActive() bool {
	return r.Status != StatusCanceled
}

// Confirm はリクエストを確定する（保留中のみ）
func (r *ParticipationRequest) Confirm() error {
	if r.Status != StatusPending {
		return ErrRequestNotPending
	}
	r.Status = StatusConfirmed
	return nil
}

// Reject はリクエストを却下する（保留中のみ）
// 一度審査されたリクエストを再審査することはできない
func (r *ParticipationRequest) Reject() error {
	if r.Status != StatusPending {
		return ErrRequestNotPending
	}
	r.Status = StatusRejected
	return nil
}

// Cancel はリクエスト者自身によるキャンセルを行う
func (r *ParticipationRequest) Cancel() error {
	if r.Status == StatusCanceled {
		return ErrRequestAlreadyCanceled
	}
	r.Status = StatusCanceled
	return nil
}
