package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-participation/internal/application"
	"github.com/sanosuguru/go-event-participation/internal/domain/event"
)

type EventHandler struct {
	service EventServiceInterface
}

func NewEventHandler(s EventServiceInterface) *EventHandler {
	return &EventHandler{service: s}
}

type CreateEventRequest struct {
	Title             string    `json:"title" validate:"required,min=3,max=120" example:"Go勉強会 #42"`
	Annotation        string    `json:"annotation" validate:"required,min=20,max=2000"`
	Description       string    `json:"description" validate:"omitempty,max=7000"`
	CategoryID        string    `json:"category_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	EventDate         time.Time `json:"event_date" validate:"required"`
	Paid              bool      `json:"paid"`
	ParticipantLimit  int       `json:"participant_limit" validate:"min=0" example:"50"`
	RequestModeration *bool     `json:"request_moderation"`
}

type UpdateEventRequest struct {
	Title             *string    `json:"title" validate:"omitempty,min=3,max=120"`
	Annotation        *string    `json:"annotation" validate:"omitempty,min=20,max=2000"`
	Description       *string    `json:"description" validate:"omitempty,max=7000"`
	CategoryID        *string    `json:"category_id"`
	EventDate         *time.Time `json:"event_date"`
	Paid              *bool      `json:"paid"`
	ParticipantLimit  *int       `json:"participant_limit" validate:"omitempty,min=0"`
	RequestModeration *bool      `json:"request_moderation"`
	StateAction       string     `json:"state_action" validate:"omitempty" example:"PUBLISH_EVENT"`
}

type EventResponse struct {
	ID                string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title             string     `json:"title" example:"Go勉強会 #42"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description,omitempty"`
	CategoryID        string     `json:"category_id"`
	InitiatorID       string     `json:"initiator_id"`
	EventDate         time.Time  `json:"event_date"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participant_limit" example:"50"`
	RequestModeration bool       `json:"request_moderation"`
	ConfirmedRequests int        `json:"confirmed_requests" example:"12"`
	State             string     `json:"state" example:"PUBLISHED"`
	CreatedOn         time.Time  `json:"created_on"`
	PublishedOn       *time.Time `json:"published_on,omitempty"`
	Views             int64      `json:"views" example:"321"`
}

func toEventResponse(e *event.Event) EventResponse {
	return EventResponse{
		ID: e.ID, Title: e.Title, Annotation: e.Annotation, Description: e.Description,
		CategoryID: e.CategoryID, InitiatorID: e.InitiatorID, EventDate: e.EventDate,
		Paid: e.Paid, ParticipantLimit: e.ParticipantLimit, RequestModeration: e.RequestModeration,
		ConfirmedRequests: e.ConfirmedRequests, State: string(e.State),
		CreatedOn: e.CreatedOn, PublishedOn: e.PublishedOn, Views: e.Views,
	}
}

func toEventResponses(events []*event.Event) []EventResponse {
	resp := make([]EventResponse, len(events))
	for i, e := range events {
		resp[i] = toEventResponse(e)
	}
	return resp
}

// Create godoc
// @Summary イベントを作成
// @Description 主催者の新規イベントを承認待ち状態で作成します
// @Tags events
// @Accept json
// @Produce json
// @Param userId path string true "主催者ID"
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{userId}/events [post]
func (h *EventHandler) Create(c echo.Context) error {
	userID := c.Param("userId")
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	// 未指定の場合は事前承認あり
	moderation := true
	if req.RequestModeration != nil {
		moderation = *req.RequestModeration
	}
	e, err := h.service.CreateUserEvent(c.Request().Context(), userID, application.CreateEventInput{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		EventDate:         req.EventDate,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: moderation,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByInitiator godoc
// @Summary 主催者のイベントを取得
// @Tags events
// @Produce json
// @Param userId path string true "主催者ID"
// @Param eventId path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string
// @Router /users/{userId}/events/{eventId} [get]
func (h *EventHandler) GetByInitiator(c echo.Context) error {
	e, err := h.service.GetUserEvent(c.Request().Context(), c.Param("userId"), c.Param("eventId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// ListByInitiator godoc
// @Summary 主催者のイベント一覧を取得
// @Tags events
// @Produce json
// @Param userId path string true "主催者ID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /users/{userId}/events [get]
func (h *EventHandler) ListByInitiator(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	events, err := h.service.ListUserEvents(c.Request().Context(), c.Param("userId"), limit, offset)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// UpdateByInitiator godoc
// @Summary 主催者がイベントを更新
// @Description 公開済みイベントは変更できません。SEND_TO_REVIEW / CANCEL_REVIEW の状態操作が可能です
// @Tags events
// @Accept json
// @Produce json
// @Param userId path string true "主催者ID"
// @Param eventId path string true "イベントID"
// @Param request body UpdateEventRequest true "更新内容"
// @Success 200 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "公開済みイベントは変更不可"
// @Router /users/{userId}/events/{eventId} [patch]
func (h *EventHandler) UpdateByInitiator(c echo.Context) error {
	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	e, err := h.service.UpdateUserEvent(c.Request().Context(), c.Param("userId"), c.Param("eventId"), toUpdateInput(req))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// UpdateByAdmin godoc
// @Summary 管理者がイベントを更新
// @Description PUBLISH_EVENT / REJECT_EVENT の状態操作が可能です
// @Tags admin
// @Accept json
// @Produce json
// @Param eventId path string true "イベントID"
// @Param request body UpdateEventRequest true "更新内容"
// @Success 200 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "状態遷移が不正"
// @Router /admin/events/{eventId} [patch]
func (h *EventHandler) UpdateByAdmin(c echo.Context) error {
	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	e, err := h.service.UpdateAdminEvent(c.Request().Context(), c.Param("eventId"), toUpdateInput(req))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

func toUpdateInput(req UpdateEventRequest) application.UpdateEventInput {
	return application.UpdateEventInput{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		EventDate:         req.EventDate,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: req.RequestModeration,
		StateAction:       req.StateAction,
	}
}

// GetPublic godoc
// @Summary 公開イベントを取得
// @Description 公開済みイベントを取得し、閲覧数を記録します
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func (h *EventHandler) GetPublic(c echo.Context) error {
	e, err := h.service.GetPublicEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// ListPublic godoc
// @Summary 公開イベントを検索
// @Tags events
// @Produce json
// @Param text query string false "タイトル・概要の部分一致"
// @Param categories query string false "カテゴリIDのカンマ区切り"
// @Param paid query bool false "有料イベントのみ"
// @Param rangeStart query string false "開催日時の下限（RFC3339）"
// @Param rangeEnd query string false "開催日時の上限（RFC3339）"
// @Param onlyAvailable query bool false "空きがあるイベントのみ"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Failure 400 {object} map[string]string
// @Router /events [get]
func (h *EventHandler) ListPublic(c echo.Context) error {
	q := application.PublicEventsQuery{
		Text:        c.QueryParam("text"),
		CategoryIDs: splitCSV(c.QueryParam("categories")),
	}
	if v := c.QueryParam("paid"); v != "" {
		paid, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "paidはtrue/falseで指定してください")
		}
		q.Paid = &paid
	}
	var err error
	if q.RangeStart, err = parseTimeParam(c.QueryParam("rangeStart")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "rangeStartの日時形式が不正です")
	}
	if q.RangeEnd, err = parseTimeParam(c.QueryParam("rangeEnd")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "rangeEndの日時形式が不正です")
	}
	q.OnlyAvailable, _ = strconv.ParseBool(c.QueryParam("onlyAvailable"))
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	q.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	events, err := h.service.ListPublicEvents(c.Request().Context(), q)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// ListByAdmin godoc
// @Summary 管理者向けイベント検索
// @Tags admin
// @Produce json
// @Param users query string false "主催者IDのカンマ区切り"
// @Param states query string false "状態のカンマ区切り"
// @Param categories query string false "カテゴリIDのカンマ区切り"
// @Param rangeStart query string false "開催日時の下限（RFC3339）"
// @Param rangeEnd query string false "開催日時の上限（RFC3339）"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /admin/events [get]
func (h *EventHandler) ListByAdmin(c echo.Context) error {
	q := application.AdminEventsQuery{
		InitiatorIDs: splitCSV(c.QueryParam("users")),
		States:       splitCSV(c.QueryParam("states")),
		CategoryIDs:  splitCSV(c.QueryParam("categories")),
	}
	var err error
	if q.RangeStart, err = parseTimeParam(c.QueryParam("rangeStart")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "rangeStartの日時形式が不正です")
	}
	if q.RangeEnd, err = parseTimeParam(c.QueryParam("rangeEnd")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "rangeEndの日時形式が不正です")
	}
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	q.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	events, err := h.service.ListAdminEvents(c.Request().Context(), q)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseTimeParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
