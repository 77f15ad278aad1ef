package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// CatalogHandler serves products, variants and stock checks.
type CatalogHandler struct {
	facade CatalogFacade
	now    func() time.Time
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade, now: time.Now}
}

// ListProducts handles GET /api/products.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	limit, offset, ok := paging(c)
	if !ok {
		return
	}
	products, err := h.facade.Products(c.Request.Context(), model.ProductFilter{
		Brand:    c.Query("brand"),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	now := h.now()
	response := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, toProductResponse(p, now))
	}
	c.JSON(http.StatusOK, response)
}

// GetProduct handles GET /api/products/:id.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.facade.Product(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*product, h.now()))
}

// CreateProduct handles POST /api/admin/products.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, CodeInvalidBody, "malformed JSON body")
		return
	}
	product, err := h.facade.CreateProduct(c.Request.Context(), &model.Product{
		Name:        req.Name,
		Brand:       req.Brand,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(*product, h.now()))
}

// GetVariant handles GET /api/variants/:id.
func (h *CatalogHandler) GetVariant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	variant, err := h.facade.Variant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVariantResponse(*variant, h.now()))
}

// CreateVariant handles POST /api/admin/products/:id/variants.
func (h *CatalogHandler) CreateVariant(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, CodeInvalidBody, "malformed JSON body")
		return
	}
	variant, err := h.facade.CreateVariant(c.Request.Context(), productID, fromVariantRequest(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toVariantResponse(*variant, h.now()))
}

// UpdateVariant handles PUT /api/admin/variants/:id. Stock in the body is ignored.
func (h *CatalogHandler) UpdateVariant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, CodeInvalidBody, "malformed JSON body")
		return
	}
	variant := fromVariantRequest(req)
	variant.ID = id
	updated, err := h.facade.UpdateVariant(c.Request.Context(), variant)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVariantResponse(*updated, h.now()))
}

// AdjustStock handles POST /api/admin/variants/:id/stock.
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, CodeInvalidBody, "malformed JSON body")
		return
	}
	variant, err := h.facade.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVariantResponse(*variant, h.now()))
}

// Availability handles GET /api/variants/:id/availability?quantity=N.
func (h *CatalogHandler) Availability(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	quantity := 1
	if raw := c.Query("quantity"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, CodeValidation, "quantity must be an integer")
			return
		}
		quantity = parsed
	}

	availability, err := h.facade.CheckAvailability(c.Request.Context(), id, quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AvailabilityResponse{
		VariantID: availability.VariantID,
		Requested: availability.Requested,
		Available: availability.Available,
		InStock:   availability.InStock,
		UnitPrice: availability.UnitPrice,
	})
}
