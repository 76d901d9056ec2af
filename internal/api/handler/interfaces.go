package handler

import (
	"context"

	"github.com/sanosuguru/go-event-participation/internal/application"
	"github.com/sanosuguru/go-event-participation/internal/domain/category"
	"github.com/sanosuguru/go-event-participation/internal/domain/event"
	"github.com/sanosuguru/go-event-participation/internal/domain/request"
	"github.com/sanosuguru/go-event-participation/internal/domain/user"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateUserEvent(ctx context.Context, userID string, input application.CreateEventInput) (*event.Event, error)
	UpdateUserEvent(ctx context.Context, userID, eventID string, input application.UpdateEventInput) (*event.Event, error)
	UpdateAdminEvent(ctx context.Context, eventID string, input application.UpdateEventInput) (*event.Event, error)
	GetUserEvent(ctx context.Context, userID, eventID string) (*event.Event, error)
	ListUserEvents(ctx context.Context, userID string, limit, offset int) ([]*event.Event, error)
	GetPublicEvent(ctx context.Context, eventID string) (*event.Event, error)
	ListPublicEvents(ctx context.Context, q application.PublicEventsQuery) ([]*event.Event, error)
	ListAdminEvents(ctx context.Context, q application.AdminEventsQuery) ([]*event.Event, error)
}

// RequestServiceInterface は参加リクエストサービスのインターフェース
type RequestServiceInterface interface {
	CreateRequest(ctx context.Context, userID, eventID string) (*request.ParticipationRequest, error)
	CancelRequest(ctx context.Context, userID, requestID string) (*request.ParticipationRequest, error)
	GetUserRequests(ctx context.Context, userID string) ([]*request.ParticipationRequest, error)
	GetEventRequests(ctx context.Context, userID, eventID string) ([]*request.ParticipationRequest, error)
	UpdateRequestStatus(ctx context.Context, userID, eventID string, requestIDs []string, status string) (*application.RequestStatusUpdateResult, error)
}

// UserServiceInterface はユーザーサービスのインターフェース
type UserServiceInterface interface {
	CreateUser(ctx context.Context, input application.CreateUserInput) (*user.User, error)
	ListUsers(ctx context.Context, ids []string, limit, offset int) ([]*user.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// CategoryServiceInterface はカテゴリサービスのインターフェース
type CategoryServiceInterface interface {
	CreateCategory(ctx context.Context, name string) (*category.Category, error)
	GetCategory(ctx context.Context, id string) (*category.Category, error)
	ListCategories(ctx context.Context, limit, offset int) ([]*category.Category, error)
	UpdateCategory(ctx context.Context, id, name string) (*category.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}
