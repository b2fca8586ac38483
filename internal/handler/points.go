package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ModawnAI/everything-backend-sub017/internal/model"
	"github.com/ModawnAI/everything-backend-sub017/internal/service"
)

// PointsHandler exposes the points ledger over HTTP. Recording flows
// write to the authenticated caller's own ledger; balance reads
// return the cached pair maintained by the ledger.
type PointsHandler struct {
	Points *service.PointsService
}

// NewPointsHandler constructs a PointsHandler. The service must be
// non-nil.
func NewPointsHandler(points *service.PointsService) *PointsHandler {
	if points == nil {
		panic("nil service passed to NewPointsHandler")
	}
	return &PointsHandler{Points: points}
}

// pointTransactionJSON is the wire shape of one ledger entry.
type pointTransactionJSON struct {
	ID          uint64 `json:"id"`
	UserID      uint64 `json:"user_id"`
	Amount      int64  `json:"amount"`
	TxType      string `json:"tx_type"`
	SourceType  string `json:"source_type,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func toPointTransactionJSON(e *model.PointTransaction) pointTransactionJSON {
	return pointTransactionJSON{
		ID:          e.ID,
		UserID:      e.UserID,
		Amount:      e.Amount,
		TxType:      string(e.TxType),
		SourceType:  e.SourceType,
		Description: e.Description,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Record handles POST /v1/points/transactions. With "pending": true
// the entry becomes a redemption hold (negative amounts only);
// otherwise it completes synchronously and the balance updates in the
// same unit of work. Responds 201 with the ledger entry.
func (h *PointsHandler) Record(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Amount      int64  `json:"amount"`
		TxType      string `json:"tx_type"`
		SourceType  string `json:"source_type"`
		Description string `json:"description"`
		Pending     bool   `json:"pending"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	txType := model.PointTransactionType(body.TxType)
	var entry *model.PointTransaction
	if body.Pending {
		entry, err = h.Points.Hold(ctx, userID, body.Amount, txType, body.SourceType, body.Description)
	} else {
		entry, err = h.Points.Record(ctx, userID, body.Amount, txType, body.SourceType, body.Description)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toPointTransactionJSON(entry)})
}

// Complete handles POST /v1/points/transactions/:id/complete. It
// flips a pending entry to completed, folding its amount into the
// balance exactly once; repeats respond 422.
func (h *PointsHandler) Complete(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	txID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || txID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid transaction id"})
	}
	entry, err := h.Points.Complete(c.Request().Context(), txID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toPointTransactionJSON(entry)})
}

// Cancel handles POST /v1/points/transactions/:id/cancel, releasing a
// pending redemption hold.
func (h *PointsHandler) Cancel(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	txID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || txID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid transaction id"})
	}
	entry, err := h.Points.Cancel(c.Request().Context(), txID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toPointTransactionJSON(entry)})
}

// Balance handles GET /v1/points/balance for the authenticated user.
func (h *PointsHandler) Balance(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	balance, err := h.Points.Balance(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_points":     balance.TotalPoints,
		"available_points": balance.AvailablePoints,
	})
}

// History handles GET /v1/points/transactions for the authenticated
// user, newest first.
func (h *PointsHandler) History(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	entries, err := h.Points.History(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]pointTransactionJSON, 0, len(entries))
	for i := range entries {
		items = append(items, toPointTransactionJSON(&entries[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
