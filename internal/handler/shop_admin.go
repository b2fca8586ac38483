package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ModawnAI/everything-backend-sub017/internal/model"
	"github.com/ModawnAI/everything-backend-sub017/internal/service"
)

// ShopAdminHandler exposes the shop approval workflow. The routes it
// serves are wrapped in RequireRole("ADMIN"): every approval
// transition demands an administrative actor, and that actor identity
// lands on the approval log row.
type ShopAdminHandler struct {
	Shops *service.ShopService
}

// NewShopAdminHandler constructs a ShopAdminHandler. The service must
// be non-nil.
func NewShopAdminHandler(shops *service.ShopService) *ShopAdminHandler {
	if shops == nil {
		panic("nil service passed to NewShopAdminHandler")
	}
	return &ShopAdminHandler{Shops: shops}
}

// shopJSON is the wire shape of a shop.
type shopJSON struct {
	ID        uint64 `json:"id"`
	OwnerName string `json:"owner_name"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toShopJSON(s *model.Shop) shopJSON {
	return shopJSON{
		ID:        s.ID,
		OwnerName: s.OwnerName,
		Name:      s.Name,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Transition handles POST /v1/admin/shops/:id/transition. The body
// names the target approval status and an optional reason. Responds
// 200 with the mutated shop or 422 when the workflow rejects the
// move.
func (h *ShopAdminHandler) Transition(c echo.Context) error {
	shopID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || shopID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shop id"})
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
	shop, err := h.Shops.Transition(c.Request().Context(), shopID, model.ShopStatus(body.Status), body.Reason, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toShopJSON(shop)})
}

// Get handles GET /v1/admin/shops/:id.
func (h *ShopAdminHandler) Get(c echo.Context) error {
	shopID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || shopID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shop id"})
	}
	shop, err := h.Shops.Get(c.Request().Context(), shopID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toShopJSON(shop)})
}

// ApprovalLog handles GET /v1/admin/shops/:id/logs, newest first.
func (h *ShopAdminHandler) ApprovalLog(c echo.Context) error {
	shopID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || shopID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shop id"})
	}
	entries, err := h.Shops.ApprovalLog(c.Request().Context(), shopID)
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
