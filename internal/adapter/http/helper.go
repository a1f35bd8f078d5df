package http

import (
	"errors"
	"net/http"

	"collateral-ledger/internal/domain/apperr"

	"github.com/labstack/echo/v4"
)

const maxPageSize = 500

// statusFor maps an error kind onto its HTTP status.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindStateConflict:
		return http.StatusConflict
	case apperr.KindDependency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.Logger().Error(err)
		return c.JSON(status, ErrorResponse{Error: apperr.CodeOf(err), Message: "internal error"})
	}
	return c.JSON(status, ErrorResponse{Error: apperr.CodeOf(err), Message: err.Error()})
}

// bindValid binds and validates req. On failure it has already written the response
// and returns false.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	return true, nil
}

type pageQuery struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func bindPage(c echo.Context) (pageQuery, error) {
	var q pageQuery
	err := echo.QueryParamsBinder(c).
		Int("limit", &q.Limit).
		Int("offset", &q.Offset).
		BindError()
	if err != nil {
		return q, err
	}
	if q.Limit < 0 || q.Offset < 0 {
		return q, errors.New("limit and offset must not be negative")
	}
	if q.Limit == 0 || q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	return q, nil
}
