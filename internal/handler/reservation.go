package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ModawnAI/everything-backend-sub017/internal/model"
	"github.com/ModawnAI/everything-backend-sub017/internal/queue"
	"github.com/ModawnAI/everything-backend-sub017/internal/service"
)

// ReservationHandler exposes the reservation state machine over HTTP.
// All methods assume JWT authentication has already run; the engine's
// tagged failures are translated by respondError so callers can
// distinguish contention (retry another slot) from client errors.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler. The service
// must be non-nil.
func NewReservationHandler(reservations *service.ReservationService) *ReservationHandler {
	if reservations == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations}
}

// reservationJSON is the wire shape of a reservation. The model
// types carry no json tags; handlers own response layout.
type reservationJSON struct {
	ID           uint64 `json:"id"`
	UserID       uint64 `json:"user_id"`
	ShopID       uint64 `json:"shop_id"`
	ServiceID    uint64 `json:"service_id"`
	ReservedDate string `json:"reserved_date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toReservationJSON(r *model.Reservation) reservationJSON {
	return reservationJSON{
		ID:           r.ID,
		UserID:       r.UserID,
		ShopID:       r.ShopID,
		ServiceID:    r.ServiceID,
		ReservedDate: r.ReservedDate,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Status:       string(r.Status),
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// statusLogJSON is the wire shape of one audit trail entry.
type statusLogJSON struct {
	ID        uint64 `json:"id"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Actor     string `json:"actor,omitempty"`
	CreatedAt string `json:"created_at"`
}

// publishStatus emits the post-commit domain event. Failures are
// deliberately ignored: the reservation is already durable and the
// queue is an audit/notification side channel.
func publishStatus(c echo.Context, r *model.Reservation, reason, actor string) {
	_ = queue.PublishReservationStatus(c.Request().Context(), queue.ReservationStatusEvent{
		ReservationID: r.ID,
		UserID:        r.UserID,
		ShopID:        r.ShopID,
		ServiceID:     r.ServiceID,
		Status:        string(r.Status),
		Reason:        reason,
		Actor:         actor,
		ReservedDate:  r.ReservedDate,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

// Create handles POST /v1/reservations. The body carries the shop,
// service and slot; the booking user is the authenticated caller.
// Responds 201 with the pending reservation, 409 when the slot is
// taken, 404 when a referenced entity is missing.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ShopID    uint64 `json:"shop_id"`
		ServiceID uint64 `json:"service_id"`
		Date      string `json:"reserved_date"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Notes     string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ShopID == 0 || body.ServiceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shop_id and service_id are required"})
	}
	actor := getActor(c)
	res, err := h.Reservations.Create(c.Request().Context(), service.CreateReservationInput{
		UserID:    userID,
		ShopID:    body.ShopID,
		ServiceID: body.ServiceID,
		Date:      body.Date,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Notes:     body.Notes,
		Actor:     actor,
	})
	if err != nil {
		return respondError(c, err)
	}
	publishStatus(c, res, "reservation created", actor)
	return c.JSON(http.StatusCreated, echo.Map{"item": toReservationJSON(res)})
}

// Transition handles POST /v1/reservations/:id/transition. The body
// names the target status and an optional reason. Responds 200 with
// the mutated reservation or 422 when the transition table rejects
// the move.
func (h *ReservationHandler) Transition(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}
	actor := getActor(c)
	res, err := h.Reservations.Transition(c.Request().Context(), resID, model.ReservationStatus(body.Status), body.Reason, actor)
	if err != nil {
		return respondError(c, err)
	}
	publishStatus(c, res, body.Reason, actor)
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationJSON(res)})
}

// Reschedule handles POST /v1/reservations/:id/reschedule. The body
// carries the new slot and a reason. Responds 200 with the moved
// reservation, 409 when the new slot conflicts (the reservation is
// left untouched), 422 when the reservation is no longer live.
func (h *ReservationHandler) Reschedule(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Date      string `json:"reserved_date"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Reason    string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	actor := getActor(c)
	res, err := h.Reservations.Reschedule(c.Request().Context(), resID, body.Date, body.StartTime, body.EndTime, body.Reason, actor)
	if err != nil {
		return respondError(c, err)
	}
	publishStatus(c, res, body.Reason, actor)
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationJSON(res)})
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Reservations.Get(c.Request().Context(), resID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationJSON(res)})
}

// StatusLog handles GET /v1/reservations/:id/logs. Entries come back
// newest-first; the last element is always the initial `pending` row.
func (h *ReservationHandler) StatusLog(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	entries, err := h.Reservations.StatusLog(c.Request().Context(), resID)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]statusLogJSON, 0, len(entries))
	for _, e := range entries {
		items = append(items, statusLogJSON{
			ID:        e.ID,
			Status:    string(e.Status),
			Reason:    e.Reason,
			Actor:     e.Actor,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListMine handles GET /v1/my-reservations for the authenticated user.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservations, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]reservationJSON, 0, len(reservations))
	for i := range reservations {
		items = append(items, toReservationJSON(&reservations[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
