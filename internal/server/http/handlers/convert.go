package handlers

import (
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

func toProductResponse(p model.Product, now time.Time) dto.ProductResponse {
	variants := make([]dto.VariantResponse, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, toVariantResponse(v, now))
	}
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		Variants:    variants,
	}
}

func toVariantResponse(v model.Variant, now time.Time) dto.VariantResponse {
	return dto.VariantResponse{
		ID:               v.ID,
		ProductID:        v.ProductID,
		Color:            v.Color,
		Storage:          v.Storage,
		RAM:              v.RAM,
		OriginalPrice:    v.OriginalPrice,
		SalePrice:        v.SalePrice,
		PromotionalPrice: v.PromotionalPrice,
		PromotionStart:   v.PromotionStart,
		PromotionEnd:     v.PromotionEnd,
		EffectivePrice:   v.EffectivePrice(now),
		Stock:            v.Stock,
	}
}

func fromVariantRequest(req dto.VariantRequest) *model.Variant {
	return &model.Variant{
		Color:            req.Color,
		Storage:          req.Storage,
		RAM:              req.RAM,
		OriginalPrice:    req.OriginalPrice,
		SalePrice:        req.SalePrice,
		PromotionalPrice: req.PromotionalPrice,
		PromotionStart:   req.PromotionStart,
		PromotionEnd:     req.PromotionEnd,
		Stock:            req.Stock,
	}
}

func toVoucherResponse(v model.Voucher) dto.VoucherResponse {
	return dto.VoucherResponse{
		ID:            v.ID,
		Code:          v.Code,
		DiscountType:  string(v.DiscountType),
		DiscountValue: v.DiscountValue,
		MaxDiscount:   v.MaxDiscount,
		MinOrderValue: v.MinOrderValue,
		MaxUses:       v.MaxUses,
		UsedCount:     v.UsedCount,
		StartDate:     v.StartDate,
		ExpiryDate:    v.ExpiryDate,
		CreatedAt:     v.CreatedAt,
	}
}

func toOrderResponse(o model.Order) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Total:     l.Total(),
		})
	}
	return dto.OrderResponse{
		ID:              o.ID,
		Code:            o.Code,
		CustomerID:      o.CustomerID,
		Status:          string(o.Status),
		Subtotal:        o.Subtotal,
		DiscountAmount:  o.DiscountAmount,
		TotalAmount:     o.TotalAmount,
		VoucherID:       o.VoucherID,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   string(o.PaymentMethod),
		OrderedAt:       o.OrderedAt,
		UpdatedAt:       o.UpdatedAt,
		Lines:           lines,
	}
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toBuckets(buckets []model.RevenueBucket) []dto.RevenueBucketResponse {
	out := make([]dto.RevenueBucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, dto.RevenueBucketResponse{Start: b.Start, Orders: b.Orders, Revenue: b.Revenue, Profit: b.Profit})
	}
	return out
}

func toStatisticsResponse(s model.RevenueStatistics) dto.RevenueStatisticsResponse {
	return dto.RevenueStatisticsResponse{
		From:              s.Range.From,
		To:                s.Range.To,
		TotalOrders:       s.TotalOrders,
		TotalRevenue:      s.TotalRevenue,
		TotalProfit:       s.TotalProfit,
		AverageOrderValue: s.AverageOrderValue,
		AverageProfit:     s.AverageProfit,
		Daily:             toBuckets(s.Daily),
		Weekly:            toBuckets(s.Weekly),
		Monthly:           toBuckets(s.Monthly),
	}
}
