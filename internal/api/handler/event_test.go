package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-participation/internal/application"
	"github.com/sanosuguru/go-event-participation/internal/domain/event"
)

// MockEventService はEventServiceInterfaceのモック
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) CreateUserEvent(ctx context.Context, userID string, input application.CreateEventInput) (*event.Event, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) UpdateUserEvent(ctx context.Context, userID, eventID string, input application.UpdateEventInput) (*event.Event, error) {
	args := m.Called(ctx, userID, eventID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) UpdateAdminEvent(ctx context.Context, eventID string, input application.UpdateEventInput) (*event.Event, error) {
	args := m.Called(ctx, eventID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) GetUserEvent(ctx context.Context, userID, eventID string) (*event.Event, error) {
	args := m.Called(ctx, userID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) ListUserEvents(ctx context.Context, userID string, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventService) GetPublicEvent(ctx context.Context, eventID string) (*event.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) ListPublicEvents(ctx context.Context, q application.PublicEventsQuery) ([]*event.Event, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventService) ListAdminEvents(ctx context.Context, q application.AdminEventsQuery) ([]*event.Event, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func newTestEvent(state event.State) *event.Event {
	now := time.Now()
	return &event.Event{
		ID:                "event-123",
		Title:             "Go勉強会 #42",
		Annotation:        "Goの並行処理についてじっくり学ぶ勉強会です",
		CategoryID:        "cat-1",
		InitiatorID:       "user-123",
		EventDate:         now.Add(72 * time.Hour),
		ParticipantLimit:  50,
		RequestModeration: true,
		State:             state,
		CreatedOn:         now,
	}
}

func TestEventHandler_Create(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にイベントを作成できる", func(t *testing.T) {
		mockService := new(MockEventService)
		expected := newTestEvent(event.StatePending)

		mockService.On("CreateUserEvent", mock.Anything, "user-123",
			mock.AnythingOfType("application.CreateEventInput")).Return(expected, nil)

		handler := NewEventHandler(mockService)

		eventDate := time.Now().Add(72 * time.Hour).Format(time.RFC3339)
		reqBody := fmt.Sprintf(`{
			"title": "Go勉強会 #42",
			"annotation": "Goの並行処理についてじっくり学ぶ勉強会です",
			"category_id": "cat-1",
			"event_date": %q,
			"participant_limit": 50
		}`, eventDate)
		req := httptest.NewRequest(http.MethodPost, "/users/user-123/events", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("userId")
		c.SetParamValues("user-123")

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp EventResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "event-123", resp.ID)
		assert.Equal(t, "PENDING", resp.State)

		mockService.AssertExpectations(t)
	})

	t.Run("request_moderation未指定の場合はtrueになる", func(t *testing.T) {
		mockService := new(MockEventService)
		expected := newTestEvent(event.StatePending)

		mockService.On("CreateUserEvent", mock.Anything, "user-123",
			mock.MatchedBy(func(input application.CreateEventInput) bool {
				return input.RequestModeration
			})).Return(expected, nil)

		handler := NewEventHandler(mockService)

		eventDate := time.Now().Add(72 * time.Hour).Format(time.RFC3339)
		reqBody := fmt.Sprintf(`{
			"title": "Go勉強会 #42",
			"annotation": "Goの並行処理についてじっくり学ぶ勉強会です",
			"category_id": "cat-1",
			"event_date": %q
		}`, eventDate)
		req := httptest.NewRequest(http.MethodPost, "/users/user-123/events", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("userId")
		c.SetParamValues("user-123")

		err := handler.Create(c)

		require.NoError(t, err)
		mockService.AssertExpectations(t)
	})

	t.Run("タイトルが短すぎる場合400", func(t *testing.T) {
		mockService := new(MockEventService)
		handler := NewEventHandler(mockService)

		reqBody := `{"title": "a", "annotation": "短い", "category_id": "cat-1"}`
		req := httptest.NewRequest(http.MethodPost, "/users/user-123/events", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("userId")
		c.SetParamValues("user-123")

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("開催日時が近すぎる場合400", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("CreateUserEvent", mock.Anything, "user-123",
			mock.AnythingOfType("application.CreateEventInput")).Return(nil, event.ErrEventDateTooSoon)

		handler := NewEventHandler(mockService)

		eventDate := time.Now().Add(30 * time.Minute).Format(time.RFC3339)
		reqBody := fmt.Sprintf(`{
			"title": "Go勉強会 #42",
			"annotation": "Goの並行処理についてじっくり学ぶ勉強会です",
			"category_id": "cat-1",
			"event_date": %q
		}`, eventDate)
		req := httptest.NewRequest(http.MethodPost, "/users/user-123/events", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("userId")
		c.SetParamValues("user-123")

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestEventHandler_UpdateByInitiator(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にイベントを更新できる", func(t *testing.T) {
		mockService := new(MockEventService)
		expected := newTestEvent(event.StatePending)

		mockService.On("UpdateUserEvent", mock.Anything, "user-123", "event-123",
			mock.AnythingOfType("application.UpdateEventInput")).Return(expected, nil)

		handler := NewEventHandler(mockService)

		reqBody := `{"title": "Go勉強会 #43（改訂版）"}`
		req := httptest.NewRequest(http.MethodPatch, "/users/user-123/events/event-123", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("userId", "eventId")
		c.SetParamValues("user-123", "event-123")

		err := handler.UpdateByInitiator(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		mockService.AssertExpectations(t)
	})

	t.Run("公開済みイベントの変更は409", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("UpdateUserEvent", mock.Anything, "user-123", "event-123",
			mock.AnythingOfType("application.UpdateEventInput")).Return(nil, event.ErrAlreadyPublished)

		handler := NewEventHandler(mockService)

		reqBody := `{"title": "Go勉強会 #43（改訂版）"}`
		req := httptest.NewRequest(http.MethodPatch, "/users/user-123/events/event-123", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("userId", "eventId")
		c.SetParamValues("user-123", "event-123")

		err := handler.UpdateByInitiator(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})
}

func TestEventHandler_UpdateByAdmin(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にイベントを公開できる", func(t *testing.T) {
		mockService := new(MockEventService)
		published := newTestEvent(event.StatePublished)

		mockService.On("UpdateAdminEvent", mock.Anything, "event-123",
			mock.MatchedBy(func(input application.UpdateEventInput) bool {
				return input.StateAction == "PUBLISH_EVENT"
			})).Return(published, nil)

		handler := NewEventHandler(mockService)

		reqBody := `{"state_action": "PUBLISH_EVENT"}`
		req := httptest.NewRequest(http.MethodPatch, "/admin/events/event-123", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("eventId")
		c.SetParamValues("event-123")

		err := handler.UpdateByAdmin(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp EventResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "PUBLISHED", resp.State)

		mockService.AssertExpectations(t)
	})

	t.Run("承認待ちでないイベントの公開は409", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("UpdateAdminEvent", mock.Anything, "event-123",
			mock.AnythingOfType("application.UpdateEventInput")).Return(nil, event.ErrNotPendingState)

		handler := NewEventHandler(mockService)

		reqBody := `{"state_action": "PUBLISH_EVENT"}`
		req := httptest.NewRequest(http.MethodPatch, "/admin/events/event-123", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("eventId")
		c.SetParamValues("event-123")

		err := handler.UpdateByAdmin(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})

	t.Run("未知の状態操作は400", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("UpdateAdminEvent", mock.Anything, "event-123",
			mock.AnythingOfType("application.UpdateEventInput")).Return(nil, event.ErrUnknownStateAction)

		handler := NewEventHandler(mockService)

		reqBody := `{"state_action": "EXPLODE_EVENT"}`
		req := httptest.NewRequest(http.MethodPatch, "/admin/events/event-123", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("eventId")
		c.SetParamValues("event-123")

		err := handler.UpdateByAdmin(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestEventHandler_GetPublic(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に公開イベントを取得できる", func(t *testing.T) {
		mockService := new(MockEventService)
		expected := newTestEvent(event.StatePublished)

		mockService.On("GetPublicEvent", mock.Anything, "event-123").Return(expected, nil)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/events/event-123", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("event-123")

		err := handler.GetPublic(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		mockService.AssertExpectations(t)
	})

	t.Run("未公開イベントは404", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("GetPublicEvent", mock.Anything, "event-123").Return(nil, event.ErrEventNotFound)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/events/event-123", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("event-123")

		err := handler.GetPublic(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestEventHandler_ListPublic(t *testing.T) {
	e := NewTestEcho()

	t.Run("クエリパラメータが正しく渡される", func(t *testing.T) {
		mockService := new(MockEventService)
		events := []*event.Event{newTestEvent(event.StatePublished)}

		mockService.On("ListPublicEvents", mock.Anything,
			mock.MatchedBy(func(q application.PublicEventsQuery) bool {
				return q.Text == "golang" && len(q.CategoryIDs) == 2 &&
					q.Paid != nil && *q.Paid && q.OnlyAvailable
			})).Return(events, nil)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet,
			"/events?text=golang&categories=cat-1,cat-2&paid=true&onlyAvailable=true", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.ListPublic(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		mockService.AssertExpectations(t)
	})

	t.Run("不正な日時形式は400", func(t *testing.T) {
		mockService := new(MockEventService)
		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/events?rangeStart=not-a-date", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.ListPublic(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("不正な期間指定は400", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("ListPublicEvents", mock.Anything,
			mock.AnythingOfType("application.PublicEventsQuery")).Return(nil, event.ErrInvalidTimeRange)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet,
			"/events?rangeStart=2026-09-10T00:00:00Z&rangeEnd=2026-09-01T00:00:00Z", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.ListPublic(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestEventHandler_ListByAdmin(t *testing.T) {
	e := NewTestEcho()

	t.Run("状態フィルタが正しく渡される", func(t *testing.T) {
		mockService := new(MockEventService)
		events := []*event.Event{newTestEvent(event.StatePending)}

		mockService.On("ListAdminEvents", mock.Anything,
			mock.MatchedBy(func(q application.AdminEventsQuery) bool {
				return len(q.States) == 1 && q.States[0] == "PENDING"
			})).Return(events, nil)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/admin/events?states=PENDING", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.ListByAdmin(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []EventResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Len(t, resp, 1)

		mockService.AssertExpectations(t)
	})
}
