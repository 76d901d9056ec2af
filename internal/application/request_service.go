package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanosuguru/go-event-participation/internal/domain/event"
	"github.com/sanosuguru/go-event-participation/internal/domain/request"
	"github.com/sanosuguru/go-event-participation/internal/domain/transaction"
	"github.com/sanosuguru/go-event-participation/internal/domain/user"
	redisinfra "github.com/sanosuguru/go-event-participation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-participation/internal/pkg/metrics"
)

// RequestService は参加リクエストの承認エンジン
// 新規リクエストの自動確定/保留の判定と、主催者による一括審査
// （確定枠あふれ時のカスケード却下を含む）を担う
//
// event.ConfirmedRequests を読み書きする全ての操作はイベント単位の
// 分散ロック + 単一トランザクションで直列化される（イベント間は並行）
type RequestService struct {
	txManager   transaction.Manager
	requestRepo request.Repository
	eventRepo   event.Repository
	userRepo    user.Repository
	lockManager *redisinfra.LockManager
	metrics     *metrics.Metrics
}

func NewRequestService(tm transaction.Manager, rr request.Repository, er event.Repository,
	ur user.Repository, lm *redisinfra.LockManager, m *metrics.Metrics) *RequestService {
	return &RequestService{
		txManager:   tm,
		requestRepo: rr,
		eventRepo:   er,
		userRepo:    ur,
		lockManager: lm,
		metrics:     m,
	}
}

// lockEvent はイベント単位の分散ロックを取得する
// ロックの解放関数を返す（lockManager 未設定時は no-op）
func (s *RequestService) lockEvent(ctx context.Context, eventID string) (func(), error) {
	if s.lockManager == nil {
		return func() {}, nil
	}
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, "event:"+eventID, 10*time.Second, 3, 100*time.Millisecond)
	if err != nil {
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			return nil, fmt.Errorf("イベントが他のリクエストによって処理中です: %w", err)
		}
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	return func() { lock.Release(ctx) }, nil
}

func (s *RequestService) countOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.ParticipationRequestsTotal.WithLabelValues(outcome).Inc()
	}
}

// CreateRequest はユーザーの参加リクエストを受け付ける
//
// 事前条件（この順でチェックし、最初の違反で失敗する）:
//  1. リクエスト者はイベントの主催者でない
//  2. イベントは公開済み
//  3. 同一（リクエスト者, イベント）の有効なリクエストが存在しない
//  4. 参加枠に空きがある（上限 0 は無制限）
//
// 初期状態は、モデレーション不要または上限なしの場合 CONFIRMED（確定カウンタを
// 同一トランザクションで加算）、それ以外は PENDING
func (s *RequestService) CreateRequest(ctx context.Context, userID, eventID string) (*request.ParticipationRequest, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	unlock, err := s.lockEvent(ctx, eventID)
	if err != nil {
		s.countOutcome("lock_failed")
		return nil, err
	}
	defer unlock()

	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if ev.InitiatorID == userID {
		s.countOutcome("conflict")
		return nil, request.ErrOwnEventRequest
	}
	if !ev.IsPublished() {
		s.countOutcome("conflict")
		return nil, request.ErrEventNotPublished
	}

	existing, err := s.requestRepo.FindActiveByRequesterAndEvent(ctx, userID, eventID)
	if err != nil && !errors.Is(err, request.ErrRequestNotFound) {
		return nil, fmt.Errorf("重複チェックに失敗: %w", err)
	}
	if existing != nil {
		s.countOutcome("conflict")
		return nil, request.ErrDuplicateRequest
	}

	if !ev.HasAvailableSlot() {
		s.countOutcome("conflict")
		return nil, event.ErrParticipantLimitReached
	}

	// 承認エンジンの中核: モデレーション不要または上限なしなら即確定
	status := request.StatusPending
	if !ev.RequestModeration || ev.ParticipantLimit == 0 {
		status = request.StatusConfirmed
	}
	req := request.NewParticipationRequest(eventID, userID, status)

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.requestRepo.Create(ctx, tx, req); err != nil {
		return nil, err
	}
	if status == request.StatusConfirmed {
		if err := ev.AddConfirmed(1); err != nil {
			return nil, err
		}
		if err := s.eventRepo.UpdateTx(ctx, tx, ev); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		s.countOutcome("error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	if status == request.StatusConfirmed {
		s.countOutcome("confirmed")
	} else {
		s.countOutcome("pending")
	}
	return req, nil
}

// CancelRequest はリクエスト者自身によるキャンセルを行う
// 確定済みリクエストのキャンセルは同一トランザクションで確定カウンタを解放する
func (s *RequestService) CancelRequest(ctx context.Context, userID, requestID string) (*request.ParticipationRequest, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != userID {
		return nil, request.ErrNotRequestOwner
	}

	unlock, err := s.lockEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	wasConfirmed := req.IsConfirmed()
	if err := req.Cancel(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if wasConfirmed {
		ev, err := s.eventRepo.GetByID(ctx, req.EventID)
		if err != nil {
			return nil, err
		}
		if err := ev.ReleaseConfirmed(); err != nil {
			return nil, err
		}
		if err := s.eventRepo.UpdateTx(ctx, tx, ev); err != nil {
			return nil, err
		}
	}
	if err := s.requestRepo.Update(ctx, tx, req); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return req, nil
}

// GetUserRequests はリクエスト者自身の参加リクエスト一覧を取得する
func (s *RequestService) GetUserRequests(ctx context.Context, userID string) ([]*request.ParticipationRequest, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.requestRepo.ListByRequester(ctx, userID)
}

// GetEventRequests は主催者が自分のイベントへの参加リクエスト一覧を取得する
func (s *RequestService) GetEventRequests(ctx context.Context, userID, eventID string) ([]*request.ParticipationRequest, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, userID); err != nil {
		return nil, err
	}
	return s.requestRepo.ListByEvent(ctx, eventID)
}

// RequestStatusUpdateResult は一括審査の結果を表す
type RequestStatusUpdateResult struct {
	ConfirmedRequests []*request.ParticipationRequest
	RejectedRequests  []*request.ParticipationRequest
}

// UpdateRequestStatus は主催者による保留中リクエストの一括審査を行う
//
// 確定の場合は all-or-nothing: 空き枠がバッチ全体に足りなければ一切確定せず失敗する
// バッチ適用後に枠が埋まった場合、残りの保留中リクエストを全てカスケード却下する
// 全ての変更（審査対象・カスケード・確定カウンタ）は単一トランザクションでコミットされる
func (s *RequestService) UpdateRequestStatus(ctx context.Context, userID, eventID string,
	requestIDs []string, status string) (*RequestStatusUpdateResult, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	decision, err := request.ParseDecisionStatus(status)
	if err != nil {
		return nil, err
	}
	if len(requestIDs) == 0 {
		return nil, request.ErrEmptyRequestIDs
	}

	unlock, err := s.lockEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ev, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	reqs, err := s.requestRepo.GetByIDs(ctx, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("リクエスト取得に失敗: %w", err)
	}
	if len(reqs) != len(requestIDs) {
		return nil, request.ErrSomeRequestsNotFound
	}

	// 全件が対象イベントの保留中リクエストであること（再審査は不可）
	for _, req := range reqs {
		if req.EventID != eventID {
			return nil, request.ErrWrongEvent
		}
		if !req.IsPending() {
			return nil, request.ErrRequestNotPending
		}
	}

	result := &RequestStatusUpdateResult{}
	updated := reqs

	switch decision {
	case request.StatusRejected:
		for _, req := range reqs {
			if err := req.Reject(); err != nil {
				return nil, err
			}
			result.RejectedRequests = append(result.RejectedRequests, req)
		}

	case request.StatusConfirmed:
		if ev.ParticipantLimit > 0 {
			available := ev.AvailableSlots()
			if available <= 0 {
				return nil, event.ErrParticipantLimitReached
			}
			// all-or-nothing: 一部だけ確定して残りを切り捨てることはしない
			if len(reqs) > available {
				return nil, fmt.Errorf("%w: %d件のリクエストに対して空き枠は%d件です",
					request.ErrNotEnoughSlots, len(reqs), available)
			}
		}

		for _, req := range reqs {
			if err := req.Confirm(); err != nil {
				return nil, err
			}
			result.ConfirmedRequests = append(result.ConfirmedRequests, req)
		}
		if err := ev.AddConfirmed(len(reqs)); err != nil {
			return nil, err
		}

		// カスケード却下: 枠が埋まったら残りの保留中リクエストを全て却下する
		if ev.IsFull() {
			cascaded, err := s.cascadeRejectPending(ctx, eventID, reqs)
			if err != nil {
				return nil, err
			}
			result.RejectedRequests = append(result.RejectedRequests, cascaded...)
			updated = append(updated, cascaded...)
		}
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.requestRepo.UpdateAll(ctx, tx, updated); err != nil {
		return nil, err
	}
	if decision == request.StatusConfirmed {
		if err := s.eventRepo.UpdateTx(ctx, tx, ev); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RequestDecisionsTotal.WithLabelValues(string(decision)).Add(float64(len(reqs)))
		if decision == request.StatusConfirmed && len(result.RejectedRequests) > 0 {
			s.metrics.CascadeRejectionsTotal.Add(float64(len(result.RejectedRequests)))
		}
	}
	return result, nil
}

// cascadeRejectPending は審査対象以外の保留中リクエストを却下状態にして返す
func (s *RequestService) cascadeRejectPending(ctx context.Context, eventID string,
	decided []*request.ParticipationRequest) ([]*request.ParticipationRequest, error) {
	pending, err := s.requestRepo.FindPendingByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("保留中リクエスト取得に失敗: %w", err)
	}

	inBatch := make(map[string]struct{}, len(decided))
	for _, req := range decided {
		inBatch[req.ID] = struct{}{}
	}

	var cascaded []*request.ParticipationRequest
	for _, req := range pending {
		if _, ok := inBatch[req.ID]; ok {
			continue
		}
		if err := req.Reject(); err != nil {
			return nil, err
		}
		cascaded = append(cascaded, req)
	}
	return cascaded, nil
}
