package handler

import (
	"github.com/gin-gonic/gin"

	appinv "github.com/usv008/pizza-inventory-system-sub002/internal/application/inventory"
)

// MovementHandler exposes the stock movement ledger
type MovementHandler struct {
	BaseHandler
	movements *appinv.MovementService
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(movements *appinv.MovementService) *MovementHandler {
	return &MovementHandler{movements: movements}
}

// RegisterRoutes registers movement routes on the router group
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/movements", h.List)
	rg.GET("/products/:id/movements", h.ListByProduct)
	rg.POST("/products/:id/reconcile", h.Reconcile)
}

// List handles GET /api/v1/movements
func (h *MovementHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if movementType := c.Query("movement_type"); movementType != "" {
		filter.Filters["movement_type"] = movementType
	}

	movements, err := h.movements.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// ListByProduct handles GET /api/v1/products/:id/movements
func (h *MovementHandler) ListByProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movements, err := h.movements.ListByProduct(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// Reconcile handles POST /api/v1/products/:id/reconcile
func (h *MovementHandler) Reconcile(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}
	apply := c.Query("apply") == "true"

	result, err := h.movements.ReconcileProduct(c.Request.Context(), id, apply)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
