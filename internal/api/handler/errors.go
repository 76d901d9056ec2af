package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-participation/internal/domain/category"
	"github.com/sanosuguru/go-event-participation/internal/domain/event"
	"github.com/sanosuguru/go-event-participation/internal/domain/request"
	"github.com/sanosuguru/go-event-participation/internal/domain/user"
)

var notFoundErrors = []error{
	event.ErrEventNotFound,
	request.ErrRequestNotFound,
	request.ErrSomeRequestsNotFound,
	user.ErrUserNotFound,
	category.ErrCategoryNotFound,
}

var conflictErrors = []error{
	event.ErrNotPendingState,
	event.ErrNotCanceledState,
	event.ErrAlreadyPublished,
	event.ErrParticipantLimitReached,
	event.ErrNoConfirmedRequests,
	event.ErrOptimisticLockConflict,
	request.ErrRequestNotPending,
	request.ErrRequestAlreadyCanceled,
	request.ErrDuplicateRequest,
	request.ErrOwnEventRequest,
	request.ErrEventNotPublished,
	request.ErrNotEnoughSlots,
	request.ErrNotRequestOwner,
	request.ErrWrongEvent,
	user.ErrEmailAlreadyExists,
	category.ErrCategoryNameExists,
	category.ErrCategoryInUse,
}

var validationErrors = []error{
	event.ErrTitleRequired,
	event.ErrCategoryRequired,
	event.ErrInvalidParticipantLimit,
	event.ErrEventDateTooSoon,
	event.ErrInvalidTimeRange,
	event.ErrUnknownStateAction,
	request.ErrUnknownDecisionStatus,
	request.ErrEmptyRequestIDs,
	user.ErrNameRequired,
	user.ErrEmailRequired,
	category.ErrNameRequired,
}

// toHTTPError はドメインエラーをHTTPステータスに変換する
// 未知のエラーは500として扱う
func toHTTPError(err error) *echo.HTTPError {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
