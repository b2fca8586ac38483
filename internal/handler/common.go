package handler // declare the package name; contains HTTP handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ModawnAI/everything-backend-sub017/internal/lock"
	"github.com/ModawnAI/everything-backend-sub017/internal/repository"
	"github.com/ModawnAI/everything-backend-sub017/internal/service"
)

// getUserID extracts the numeric user id stored in the context by the
// JWT middleware. A zero id means the token's subject was not
// numeric, which the booking endpoints treat as unauthorized.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := c.Get("user_id").(uint64)
	if !ok || id == 0 {
		return 0, errors.New("no user in context")
	}
	return id, nil
}

// getActor extracts the audit actor string stored by the JWT
// middleware; it is recorded verbatim on status-log rows.
func getActor(c echo.Context) string {
	actor, _ := c.Get("actor").(string)
	return actor
}

// respondError translates the engine's tagged failures into HTTP
// responses. The mapping mirrors the error taxonomy: missing entities
// are 404 and name what was missing, slot contention is 409 (the
// client may retry a different slot), illegal transitions are 422
// (never retried), a lock wait timeout is 503 (retryable with
// backoff — nothing was written), and anything else is a 500.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrShopNotFound),
		errors.Is(err, repository.ErrServiceNotFound),
		errors.Is(err, repository.ErrReservationNotFound),
		errors.Is(err, repository.ErrPointTransactionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSlotUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot unavailable"})
	case errors.Is(err, service.ErrShopNotAcceptingBookings):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrTransactionFinalized):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidSlot),
		errors.Is(err, service.ErrInvalidAmount):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, lock.ErrTimeout):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "slot busy, retry shortly"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
