package handler

import (
	"github.com/gin-gonic/gin"

	appaudit "github.com/usv008/pizza-inventory-system-sub002/internal/application/audit"
)

// OperationsHandler exposes the operations audit log
type OperationsHandler struct {
	BaseHandler
	operations *appaudit.OperationService
}

// NewOperationsHandler creates a new operations handler
func NewOperationsHandler(operations *appaudit.OperationService) *OperationsHandler {
	return &OperationsHandler{operations: operations}
}

// RegisterRoutes registers audit log routes on the router group
func (h *OperationsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/operations", h.List)
}

// List handles GET /api/v1/operations
func (h *OperationsHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if opType := c.Query("operation_type"); opType != "" {
		filter.Filters["operation_type"] = opType
	}

	entries, err := h.operations.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
