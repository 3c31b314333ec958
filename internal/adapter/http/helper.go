package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fivebells/internal/domain/errs"
	"fivebells/internal/domain/world"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// statusOf maps an error category to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, world.ErrSimulationHalted):
		return http.StatusConflict
	case errors.Is(err, errs.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrRouting):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrSchedule):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(c echo.Context, err error) error {
	code := statusOf(err)
	msg := err.Error()
	switch code {
	case http.StatusNotFound:
		msg = "not found"
	case http.StatusInternalServerError:
		c.Logger().Error(err)
		msg = "internal error"
	}
	return c.JSON(code, ErrorResponse{Error: msg})
}

// bindValid binds and validates req. When ok is false the error response
// has already been written and err is what the handler should return.
func bindValid(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s path param", name)
	}
	return id, nil
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
