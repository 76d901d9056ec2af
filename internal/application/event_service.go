package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-participation/internal/domain/category"
	"github.com/sanosuguru/go-event-participation/internal/domain/event"
	"github.com/sanosuguru/go-event-participation/internal/domain/user"
	redisinfra "github.com/sanosuguru/go-event-participation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-participation/internal/pkg/logger"
	"github.com/sanosuguru/go-event-participation/internal/pkg/metrics"
)

// EventService はイベントのライフサイクル（承認待ち → 公開/キャンセル）を管理する
type EventService struct {
	eventRepo     event.Repository
	userRepo      user.Repository
	categoryRepo  category.Repository
	viewCounter   *redisinfra.ViewCounter
	metrics       *metrics.Metrics
	userLeadTime  time.Duration // 主催者による開催日時変更の最小リードタイム
	adminLeadTime time.Duration // 管理者による開催日時変更の最小リードタイム
}

func NewEventService(er event.Repository, ur user.Repository, cr category.Repository,
	vc *redisinfra.ViewCounter, m *metrics.Metrics, userLeadTime, adminLeadTime time.Duration) *EventService {
	return &EventService{
		eventRepo:     er,
		userRepo:      ur,
		categoryRepo:  cr,
		viewCounter:   vc,
		metrics:       m,
		userLeadTime:  userLeadTime,
		adminLeadTime: adminLeadTime,
	}
}

type CreateEventInput struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        string
	EventDate         time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
}

// CreateUserEvent は主催者の新規イベントを承認待ち状態で作成する
func (s *EventService) CreateUserEvent(ctx context.Context, userID string, input CreateEventInput) (*event.Event, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	if err := s.validateEventDate(input.EventDate, s.userLeadTime); err != nil {
		return nil, err
	}

	e := event.NewEvent(userID, input.CategoryID, input.Title, input.Annotation,
		input.Description, input.EventDate, input.Paid, input.ParticipantLimit, input.RequestModeration)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("イベント作成に失敗: %w", err)
	}
	return e, nil
}

// UpdateEventInput は主催者・管理者によるイベント更新を表す
// nil のフィールドは変更しない
type UpdateEventInput struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *string
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	StateAction       string // 空文字列は状態操作なし
}

// UpdateUserEvent は主催者によるイベント更新を行う
// 公開済みイベントの内容は変更できない
func (s *EventService) UpdateUserEvent(ctx context.Context, userID, eventID string, input UpdateEventInput) (*event.Event, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	e, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if e.IsPublished() {
		return nil, event.ErrAlreadyPublished
	}

	if err := s.applyUpdate(ctx, e, input, s.userLeadTime); err != nil {
		return nil, err
	}

	if input.StateAction != "" {
		action, err := event.ParseUserStateAction(input.StateAction)
		if err != nil {
			return nil, err
		}
		switch action {
		case event.UserActionSendToReview:
			if err := e.SendToReview(); err != nil {
				return nil, err
			}
		case event.UserActionCancelReview:
			if err := e.CancelReview(); err != nil {
				return nil, err
			}
		}
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateAdminEvent は管理者によるイベント更新を行う
// PUBLISH_EVENT / REJECT_EVENT の状態操作を含む
func (s *EventService) UpdateAdminEvent(ctx context.Context, eventID string, input UpdateEventInput) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.applyUpdate(ctx, e, input, s.adminLeadTime); err != nil {
		return nil, err
	}

	if input.StateAction != "" {
		action, err := event.ParseAdminStateAction(input.StateAction)
		if err != nil {
			return nil, err
		}
		switch action {
		case event.AdminActionPublishEvent:
			if err := e.Publish(time.Now()); err != nil {
				return nil, err
			}
			if s.metrics != nil {
				s.metrics.EventsPublishedTotal.Inc()
			}
		case event.AdminActionRejectEvent:
			if err := e.RejectPublication(); err != nil {
				return nil, err
			}
		}
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// applyUpdate は nil でないフィールドをイベントに反映する
func (s *EventService) applyUpdate(ctx context.Context, e *event.Event, input UpdateEventInput, leadTime time.Duration) error {
	if input.Title != nil {
		e.Title = *input.Title
	}
	if input.Annotation != nil {
		e.Annotation = *input.Annotation
	}
	if input.Description != nil {
		e.Description = *input.Description
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *input.CategoryID); err != nil {
			return err
		}
		e.CategoryID = *input.CategoryID
	}
	if input.EventDate != nil {
		if err := s.validateEventDate(*input.EventDate, leadTime); err != nil {
			return err
		}
		e.EventDate = *input.EventDate
	}
	if input.Paid != nil {
		e.Paid = *input.Paid
	}
	if input.ParticipantLimit != nil {
		e.ParticipantLimit = *input.ParticipantLimit
	}
	if input.RequestModeration != nil {
		e.RequestModeration = *input.RequestModeration
	}
	return nil
}

// validateEventDate は開催日時が現在から leadTime 以上先であることを検証する
func (s *EventService) validateEventDate(eventDate time.Time, leadTime time.Duration) error {
	if eventDate.Before(time.Now().Add(leadTime)) {
		return fmt.Errorf("%w: 開催日時は%s以上先である必要があります", event.ErrEventDateTooSoon, leadTime)
	}
	return nil
}

// GetUserEvent は主催者自身のイベントを取得する
func (s *EventService) GetUserEvent(ctx context.Context, userID, eventID string) (*event.Event, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.eventRepo.GetByIDAndInitiator(ctx, eventID, userID)
}

// ListUserEvents は主催者のイベント一覧を取得する
func (s *EventService) ListUserEvents(ctx context.Context, userID string, limit, offset int) ([]*event.Event, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, event.Filter{
		InitiatorIDs: []string{userID},
		Limit:        normalizeLimit(limit),
		Offset:       normalizeOffset(offset),
	})
}

// GetPublicEvent は公開済みイベントを取得し、閲覧ヒットを記録する
func (s *EventService) GetPublicEvent(ctx context.Context, eventID string) (*event.Event, error) {
	e, err := s.eventRepo.GetPublishedByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	// 閲覧カウントはベストエフォート（失敗しても取得自体は成功させる）
	if s.viewCounter != nil {
		if err := s.viewCounter.Hit(ctx, eventID); err != nil {
			logger.Warn("閲覧カウントの記録に失敗", zap.String("event_id", eventID), zap.Error(err))
		}
	}
	return e, nil
}

type PublicEventsQuery struct {
	Text          string
	CategoryIDs   []string
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Limit         int
	Offset        int
}

// ListPublicEvents は公開済みイベントを検索する
// 期間未指定の場合はこれから開催されるイベントのみを対象とする
func (s *EventService) ListPublicEvents(ctx context.Context, q PublicEventsQuery) ([]*event.Event, error) {
	if q.RangeStart != nil && q.RangeEnd != nil && q.RangeStart.After(*q.RangeEnd) {
		return nil, event.ErrInvalidTimeRange
	}
	rangeStart := q.RangeStart
	if rangeStart == nil && q.RangeEnd == nil {
		now := time.Now()
		rangeStart = &now
	}

	return s.eventRepo.List(ctx, event.Filter{
		Text:          q.Text,
		CategoryIDs:   q.CategoryIDs,
		States:        []event.State{event.StatePublished},
		Paid:          q.Paid,
		RangeStart:    rangeStart,
		RangeEnd:      q.RangeEnd,
		OnlyAvailable: q.OnlyAvailable,
		Limit:         normalizeLimit(q.Limit),
		Offset:        normalizeOffset(q.Offset),
	})
}

type AdminEventsQuery struct {
	InitiatorIDs []string
	States       []string
	CategoryIDs  []string
	RangeStart   *time.Time
	RangeEnd     *time.Time
	Limit        int
	Offset       int
}

// ListAdminEvents は管理者向けのイベント検索を行う
func (s *EventService) ListAdminEvents(ctx context.Context, q AdminEventsQuery) ([]*event.Event, error) {
	states := make([]event.State, 0, len(q.States))
	for _, st := range q.States {
		states = append(states, event.State(st))
	}
	return s.eventRepo.List(ctx, event.Filter{
		InitiatorIDs: q.InitiatorIDs,
		States:       states,
		CategoryIDs:  q.CategoryIDs,
		RangeStart:   q.RangeStart,
		RangeEnd:     q.RangeEnd,
		Limit:        normalizeLimit(q.Limit),
		Offset:       normalizeOffset(q.Offset),
	})
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
