package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-basket/internal/application/basket"
	domainbasket "github.com/xiebiao/bookstore-basket/internal/domain/basket"
	"github.com/xiebiao/bookstore-basket/internal/domain/book"
)

// AddItemRequest 加入购物车
type AddItemRequest struct {
	BookID uint `json:"book_id" binding:"required,min=1" example:"1"`
}

// ChangeQuantityRequest 增加或减少数量
// amount省略时为1;显式传0或负数由用例返回ErrInvalidAmount
// 上限与basket.MaxQuantity一致
type ChangeQuantityRequest struct {
	Amount *int `json:"amount" binding:"omitempty,max=9999" example:"1"`
}

// AmountOrDefault amount省略时按1处理
func (r *ChangeQuantityRequest) AmountOrDefault() int {
	if r.Amount == nil {
		return 1
	}
	return *r.Amount
}

// ItemIDUri 路径参数 /basket/items/:id
type ItemIDUri struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

// BasketItemResponse 购物车行
type BasketItemResponse struct {
	ID        uint       `json:"id"`
	BookID    uint       `json:"book_id"`
	Quantity  int        `json:"quantity"`
	Book      *book.Book `json:"book,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`
	UpdatedAt string     `json:"updated_at,omitempty"`
}

// BasketResponse 购物车快照
type BasketResponse struct {
	Items           []*BasketItemResponse `json:"items"`
	ItemCount       int                   `json:"item_count"`
	Total           decimal.Decimal       `json:"total"`
	Discount        int                   `json:"discount"`
	DiscountedTotal decimal.Decimal       `json:"discounted_total"`
}

// ClearBasketResponse 清空结果
type ClearBasketResponse struct {
	Removed int64 `json:"removed"`
}

// NewBasketItemResponse 转换购物车行
func NewBasketItemResponse(item *domainbasket.Item) *BasketItemResponse {
	return &BasketItemResponse{
		ID:        item.ID,
		BookID:    item.BookID,
		Quantity:  item.Quantity,
		Book:      item.Book,
		CreatedAt: formatTime(item.CreatedAt),
		UpdatedAt: formatTime(item.UpdatedAt),
	}
}

// NewBasketResponse 转换购物车快照
func NewBasketResponse(s *basket.Summary) *BasketResponse {
	items := make([]*BasketItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = NewBasketItemResponse(item)
	}
	return &BasketResponse{
		Items:           items,
		ItemCount:       s.ItemCount,
		Total:           s.Total,
		Discount:        s.Discount,
		DiscountedTotal: s.DiscountedTotal,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
