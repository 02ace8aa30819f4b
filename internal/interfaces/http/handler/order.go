package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apptrade "github.com/usv008/pizza-inventory-system-sub002/internal/application/trade"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/trade"
)

// OrderHandler exposes order endpoints
type OrderHandler struct {
	BaseHandler
	orders *apptrade.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *apptrade.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// RegisterRoutes registers order routes on the router group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.PUT("/:id/items", h.UpdateItems)
		orders.PUT("/:id/status", h.UpdateStatus)
		orders.POST("/:id/cancel", h.Cancel)
	}
}

type createOrderRequest struct {
	OrderNumber  string `json:"order_number"`
	ClientName   string `json:"client_name" binding:"required,min=1,max=200"`
	DeliveryDate string `json:"delivery_date" binding:"omitempty,dateonly"`
	Notes        string `json:"notes"`
	Items        []struct {
		ProductID string `json:"product_id" binding:"required,uuid"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
	} `json:"items" binding:"required,min=1,dive"`
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	deliveryDate, err := parseOptionalDate(req.DeliveryDate)
	if err != nil {
		h.BadRequest(c, "delivery_date must be a calendar date")
		return
	}

	cmd := apptrade.CreateOrderCommand{
		OrderNumber:  req.OrderNumber,
		ClientName:   req.ClientName,
		DeliveryDate: deliveryDate,
		Notes:        req.Notes,
		CreatedBy:    requestUser(c),
	}
	for _, item := range req.Items {
		productID, _ := uuid.Parse(item.ProductID)
		cmd.Items = append(cmd.Items, apptrade.OrderItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	view, err := h.orders.Create(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Get handles GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

type updateItemsRequest struct {
	Items []struct {
		ProductID string `json:"product_id" binding:"required,uuid"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
	} `json:"items" binding:"required,min=1,dive"`
}

// UpdateItems handles PUT /api/v1/orders/:id/items
func (h *OrderHandler) UpdateItems(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req updateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cmd := apptrade.UpdateOrderItemsCommand{User: requestUser(c)}
	for _, item := range req.Items {
		productID, _ := uuid.Parse(item.ProductID)
		cmd.Items = append(cmd.Items, apptrade.OrderItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	view, err := h.orders.UpdateItems(c.Request.Context(), id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=CONFIRMED SHIPPED"`
}

// UpdateStatus handles PUT /api/v1/orders/:id/status.
// Shipping an order consumes its reservations.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, apptrade.UpdateStatusCommand{
		Status: trade.OrderStatus(req.Status),
		User:   requestUser(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel handles POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), id, requestUser(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
