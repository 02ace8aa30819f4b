package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinv "github.com/usv008/pizza-inventory-system-sub002/internal/application/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
)

// BatchHandler exposes batch intake, availability and reservation endpoints
type BatchHandler struct {
	BaseHandler
	batches      *appinv.BatchService
	reservations *appinv.ReservationService
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batches *appinv.BatchService, reservations *appinv.ReservationService) *BatchHandler {
	return &BatchHandler{batches: batches, reservations: reservations}
}

// RegisterRoutes registers batch routes on the router group
func (h *BatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/production", h.PostProduction)
	rg.POST("/arrivals", h.PostArrival)
	rg.POST("/arrivals/documents", h.PostArrivalDocument)

	batches := rg.Group("/batches")
	{
		batches.GET("/expiring", h.ListExpiring)
		batches.GET("/grouped", h.ListGrouped)
		batches.POST("/reserve", h.Reserve)
		batches.POST("/release", h.Release)
		batches.POST("/:id/writeoff", h.Writeoff)
	}

	products := rg.Group("/products/:id")
	{
		products.GET("/availability", h.GetAvailability)
		products.GET("/batches", h.ListBatches)
		products.POST("/allocate", h.PreviewAllocation)
	}

	rg.GET("/writeoffs", h.ListWriteoffs)
}

type intakeRequest struct {
	ProductID  string `json:"product_id" binding:"required,uuid"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	BatchDate  string `json:"batch_date" binding:"required,dateonly"`
	ExpiryDate string `json:"expiry_date" binding:"omitempty,dateonly"`
	Reason     string `json:"reason"`
	Notes      string `json:"notes"`
}

// PostProduction handles POST /api/v1/production
func (h *BatchHandler) PostProduction(c *gin.Context) {
	var req intakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, _ := uuid.Parse(req.ProductID)
	batchDate, _ := parseDate(req.BatchDate)
	expiry, err := parseOptionalDate(req.ExpiryDate)
	if err != nil {
		h.BadRequest(c, "expiry_date must be a calendar date")
		return
	}

	view, err := h.batches.PostProduction(c.Request.Context(), appinv.ProductionCommand{
		ProductID:  productID,
		Quantity:   req.Quantity,
		BatchDate:  batchDate,
		ExpiryDate: expiry,
		Notes:      req.Notes,
		User:       requestUser(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// PostArrival handles POST /api/v1/arrivals
func (h *BatchHandler) PostArrival(c *gin.Context) {
	var req intakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, _ := uuid.Parse(req.ProductID)
	batchDate, _ := parseDate(req.BatchDate)
	expiry, err := parseOptionalDate(req.ExpiryDate)
	if err != nil {
		h.BadRequest(c, "expiry_date must be a calendar date")
		return
	}

	view, err := h.batches.PostArrival(c.Request.Context(), appinv.ArrivalCommand{
		ProductID:  productID,
		Quantity:   req.Quantity,
		BatchDate:  batchDate,
		ExpiryDate: expiry,
		Reason:     req.Reason,
		Notes:      req.Notes,
		User:       requestUser(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

type arrivalDocumentRequest struct {
	DocumentNumber string `json:"document_number"`
	ArrivalDate    string `json:"arrival_date" binding:"required,dateonly"`
	Reason         string `json:"reason"`
	Items          []struct {
		ProductID  string `json:"product_id" binding:"required,uuid"`
		Quantity   int    `json:"quantity" binding:"required,gt=0"`
		BatchDate  string `json:"batch_date" binding:"omitempty,dateonly"`
		ExpiryDate string `json:"expiry_date" binding:"omitempty,dateonly"`
		Notes      string `json:"notes"`
	} `json:"items" binding:"required,min=1,dive"`
}

// PostArrivalDocument handles POST /api/v1/arrivals/documents.
// Lines are posted independently; the response reports per-line outcomes.
func (h *BatchHandler) PostArrivalDocument(c *gin.Context) {
	var req arrivalDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	arrivalDate, _ := parseDate(req.ArrivalDate)
	cmd := appinv.ArrivalDocumentCommand{
		DocumentNumber: req.DocumentNumber,
		ArrivalDate:    arrivalDate,
		Reason:         req.Reason,
		User:           requestUser(c),
		Items:          make([]appinv.ArrivalItemCommand, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		productID, _ := uuid.Parse(item.ProductID)
		batchDate, err := parseOptionalDate(item.BatchDate)
		if err != nil {
			h.BadRequest(c, "batch_date must be a calendar date")
			return
		}
		expiry, err := parseOptionalDate(item.ExpiryDate)
		if err != nil {
			h.BadRequest(c, "expiry_date must be a calendar date")
			return
		}
		cmd.Items = append(cmd.Items, appinv.ArrivalItemCommand{
			ProductID:  productID,
			Quantity:   item.Quantity,
			BatchDate:  batchDate,
			ExpiryDate: expiry,
			Notes:      item.Notes,
		})
	}

	view, err := h.batches.PostArrivalDocument(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// GetAvailability handles GET /api/v1/products/:id/availability
func (h *BatchHandler) GetAvailability(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	view, err := h.batches.GetProductAvailability(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ListBatches handles GET /api/v1/products/:id/batches
func (h *BatchHandler) ListBatches(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}
	includeExpired := c.Query("include_expired") == "true"

	views, err := h.batches.ListBatches(c.Request.Context(), id, includeExpired)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// ListExpiring handles GET /api/v1/batches/expiring. The window defaults
// to the standard warning period and can be widened with ?days=N.
func (h *BatchHandler) ListExpiring(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "days must be a positive integer")
			return
		}
		days = parsed
	}

	views, err := h.batches.ListExpiring(c.Request.Context(), days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// ListGrouped handles GET /api/v1/batches/grouped
func (h *BatchHandler) ListGrouped(c *gin.Context) {
	views, err := h.batches.ListGrouped(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

type allocateRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// PreviewAllocation handles POST /api/v1/products/:id/allocate.
// It reports which batches would cover the quantity without reserving.
func (h *BatchHandler) PreviewAllocation(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req allocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.reservations.AllocateForProduct(c.Request.Context(), id, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

type reserveRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// Reserve handles POST /api/v1/batches/reserve
func (h *BatchHandler) Reserve(c *gin.Context) {
	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, _ := uuid.Parse(req.ProductID)
	result, err := h.reservations.Reserve(c.Request.Context(), appinv.ReserveCommand{
		ProductID: productID,
		Quantity:  req.Quantity,
		User:      requestUser(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

type releaseRequest struct {
	Releases []struct {
		BatchID  string `json:"batch_id" binding:"required,uuid"`
		Quantity int    `json:"quantity" binding:"required,gt=0"`
	} `json:"releases" binding:"required,min=1,dive"`
}

// Release handles POST /api/v1/batches/release
func (h *BatchHandler) Release(c *gin.Context) {
	var req releaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	releases := make([]inventory.ReleaseRequest, 0, len(req.Releases))
	for _, r := range req.Releases {
		batchID, _ := uuid.Parse(r.BatchID)
		releases = append(releases, inventory.ReleaseRequest{BatchID: batchID, Quantity: r.Quantity})
	}

	released, err := h.reservations.Release(c.Request.Context(), appinv.ReleaseCommand{
		Releases: releases,
		User:     requestUser(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"released": released})
}

type writeoffRequest struct {
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	Reason      string `json:"reason" binding:"required"`
	Responsible string `json:"responsible" binding:"required"`
	Notes       string `json:"notes"`
}

// Writeoff handles POST /api/v1/batches/:id/writeoff
func (h *BatchHandler) Writeoff(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req writeoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	view, err := h.reservations.WriteoffBatch(c.Request.Context(), appinv.WriteoffCommand{
		BatchID:     id,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
		Responsible: req.Responsible,
		Notes:       req.Notes,
		User:        requestUser(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ListWriteoffs handles GET /api/v1/writeoffs
func (h *BatchHandler) ListWriteoffs(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID := uuid.Nil
	if raw := c.Query("product_id"); raw != "" {
		productID, err = uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "product_id must be a valid UUID")
			return
		}
	}

	writeoffs, err := h.reservations.ListWriteoffs(c.Request.Context(), productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, writeoffs)
}
