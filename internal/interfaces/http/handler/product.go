package handler

import (
	"github.com/gin-gonic/gin"

	appcat "github.com/usv008/pizza-inventory-system-sub002/internal/application/catalog"
)

// ProductHandler exposes catalog endpoints
type ProductHandler struct {
	BaseHandler
	products *appcat.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *appcat.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// RegisterRoutes registers product routes on the router group
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.Create)
		products.GET("", h.List)
		products.GET("/:id", h.Get)
		products.PUT("/:id", h.Update)
		products.DELETE("/:id", h.Delete)
	}
}

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	var cmd appcat.CreateProductCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.Create(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Get handles GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	products, total, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Update handles PUT /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var cmd appcat.UpdateProductCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete handles DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
