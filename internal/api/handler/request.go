package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-participation/internal/application"
	"github.com/sanosuguru/go-event-participation/internal/domain/request"
)

type RequestHandler struct {
	service RequestServiceInterface
}

func NewRequestHandler(s RequestServiceInterface) *RequestHandler {
	return &RequestHandler{service: s}
}

type RequestResponse struct {
	ID          string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EventID     string    `json:"event_id"`
	RequesterID string    `json:"requester_id"`
	Status      string    `json:"status" example:"CONFIRMED"`
	Created     time.Time `json:"created"`
}

func toRequestResponse(r *request.ParticipationRequest) RequestResponse {
	return RequestResponse{
		ID: r.ID, EventID: r.EventID, RequesterID: r.RequesterID,
		Status: string(r.Status), Created: r.Created,
	}
}

func toRequestResponses(reqs []*request.ParticipationRequest) []RequestResponse {
	resp := make([]RequestResponse, len(reqs))
	for i, r := range reqs {
		resp[i] = toRequestResponse(r)
	}
	return resp
}

// Create godoc
// @Summary 参加リクエストを作成
// @Description 公開済みイベントへの参加リクエストを作成します。事前承認なし、または参加枠無制限の場合は即時確定されます
// @Tags requests
// @Produce json
// @Param userId path string true "リクエスト者ID"
// @Param eventId query string true "イベントID"
// @Success 201 {object} RequestResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "重複・未公開・満員・自イベント"
// @Router /users/{userId}/requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	eventID := c.QueryParam("eventId")
	if eventID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "eventIdが必要です")
	}
	r, err := h.service.CreateRequest(c.Request().Context(), c.Param("userId"), eventID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toRequestResponse(r))
}

// ListByRequester godoc
// @Summary 自分の参加リクエスト一覧を取得
// @Tags requests
// @Produce json
// @Param userId path string true "リクエスト者ID"
// @Success 200 {array} RequestResponse
// @Failure 404 {object} map[string]string
// @Router /users/{userId}/requests [get]
func (h *RequestHandler) ListByRequester(c echo.Context) error {
	reqs, err := h.service.GetUserRequests(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toRequestResponses(reqs))
}

// Cancel godoc
// @Summary 参加リクエストをキャンセル
// @Description 自分のリクエストをキャンセルします。確定済みだった場合は参加枠を解放します
// @Tags requests
// @Produce json
// @Param userId path string true "リクエスト者ID"
// @Param requestId path string true "リクエストID"
// @Success 200 {object} RequestResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "既にキャンセル済み"
// @Router /users/{userId}/requests/{requestId}/cancel [patch]
func (h *RequestHandler) Cancel(c echo.Context) error {
	r, err := h.service.CancelRequest(c.Request().Context(), c.Param("userId"), c.Param("requestId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toRequestResponse(r))
}

// ListByEvent godoc
// @Summary 自イベントへの参加リクエスト一覧を取得
// @Tags requests
// @Produce json
// @Param userId path string true "主催者ID"
// @Param eventId path string true "イベントID"
// @Success 200 {array} RequestResponse
// @Failure 404 {object} map[string]string
// @Router /users/{userId}/events/{eventId}/requests [get]
func (h *RequestHandler) ListByEvent(c echo.Context) error {
	reqs, err := h.service.GetEventRequests(c.Request().Context(), c.Param("userId"), c.Param("eventId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toRequestResponses(reqs))
}

type UpdateRequestStatusRequest struct {
	RequestIDs []string `json:"request_ids" validate:"required,min=1"`
	Status     string   `json:"status" validate:"required" example:"CONFIRMED"`
}

type RequestStatusUpdateResponse struct {
	ConfirmedRequests []RequestResponse `json:"confirmed_requests"`
	RejectedRequests  []RequestResponse `json:"rejected_requests"`
}

// UpdateStatus godoc
// @Summary 保留中リクエストを一括審査
// @Description 主催者が保留中の参加リクエストを一括で確定または却下します。空き枠が不足する場合は一切確定せず失敗します
// @Tags requests
// @Accept json
// @Produce json
// @Param userId path string true "主催者ID"
// @Param eventId path string true "イベントID"
// @Param request body UpdateRequestStatusRequest true "審査内容"
// @Success 200 {object} RequestStatusUpdateResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "空き枠不足・保留中でないリクエストを含む"
// @Router /users/{userId}/events/{eventId}/requests [patch]
func (h *RequestHandler) UpdateStatus(c echo.Context) error {
	var req UpdateRequestStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	result, err := h.service.UpdateRequestStatus(c.Request().Context(),
		c.Param("userId"), c.Param("eventId"), req.RequestIDs, req.Status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toStatusUpdateResponse(result))
}

func toStatusUpdateResponse(result *application.RequestStatusUpdateResult) RequestStatusUpdateResponse {
	return RequestStatusUpdateResponse{
		ConfirmedRequests: toRequestResponses(result.ConfirmedRequests),
		RejectedRequests:  toRequestResponses(result.RejectedRequests),
	}
}
