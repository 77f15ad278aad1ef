package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// VoucherHandler serves voucher validation and administration.
type VoucherHandler struct {
	facade VoucherFacade
}

// NewVoucherHandler constructs VoucherHandler.
func NewVoucherHandler(facade VoucherFacade) *VoucherHandler {
	return &VoucherHandler{facade: facade}
}

// Validate handles POST /api/vouchers/validate.
func (h *VoucherHandler) Validate(c *gin.Context) {
	var req dto.ValidateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, CodeInvalidBody, "malformed JSON body")
		return
	}
	voucher, discount, err := h.facade.QuoteVoucher(c.Request.Context(), req.Code, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ValidateVoucherResponse{
		Code:     voucher.Code,
		Valid:    true,
		Discount: discount,
		Total:    req.Amount.Sub(discount),
	})
}

// Create handles POST /api/admin/vouchers.
func (h *VoucherHandler) Create(c *gin.Context) {
	var req dto.VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, CodeInvalidBody, "malformed JSON body")
		return
	}
	voucher, err := h.facade.CreateVoucher(c.Request.Context(), &model.Voucher{
		Code:          req.Code,
		DiscountType:  model.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		MaxDiscount:   req.MaxDiscount,
		MinOrderValue: req.MinOrderValue,
		MaxUses:       req.MaxUses,
		StartDate:     req.StartDate,
		ExpiryDate:    req.ExpiryDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toVoucherResponse(*voucher))
}

// List handles GET /api/admin/vouchers.
func (h *VoucherHandler) List(c *gin.Context) {
	vouchers, err := h.facade.Vouchers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response := make([]dto.VoucherResponse, 0, len(vouchers))
	for _, v := range vouchers {
		response = append(response, toVoucherResponse(v))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/admin/vouchers/:code.
func (h *VoucherHandler) Get(c *gin.Context) {
	voucher, err := h.facade.Voucher(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVoucherResponse(*voucher))
}

// Delete handles DELETE /api/admin/vouchers/:code.
func (h *VoucherHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteVoucher(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
