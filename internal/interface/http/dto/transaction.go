package dto

import (
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-basket/internal/application/checkout"
	"github.com/xiebiao/bookstore-basket/internal/domain/book"
	"github.com/xiebiao/bookstore-basket/internal/domain/transaction"
)

// GroupIDUri 路径参数 /transactions/:group_id
type GroupIDUri struct {
	GroupID string `uri:"group_id" binding:"required"`
}

// TransactionResponse 交易行
type TransactionResponse struct {
	ID         uint            `json:"id"`
	BookID     uint            `json:"book_id"`
	Quantity   int             `json:"quantity"`
	Discount   int             `json:"discount"`
	PriceTotal decimal.Decimal `json:"price_total"`
	Book       *book.Book      `json:"book,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

// GroupResponse 一次结算产生的交易组
type GroupResponse struct {
	TransactionID string                 `json:"transaction_id"`
	Discount      int                    `json:"discount"`
	Total         decimal.Decimal        `json:"total"`
	CreatedAt     string                 `json:"created_at"`
	Transactions  []*TransactionResponse `json:"transactions"`
}

// CheckoutResponse 结算结果
type CheckoutResponse struct {
	TransactionID   string                 `json:"transaction_id"`
	Total           decimal.Decimal        `json:"total"`
	Discount        int                    `json:"discount"`
	DiscountedTotal decimal.Decimal        `json:"discounted_total"`
	Transactions    []*TransactionResponse `json:"transactions"`
}

// NewTransactionResponses 转换交易行
func NewTransactionResponses(rows []*transaction.Transaction) []*TransactionResponse {
	out := make([]*TransactionResponse, len(rows))
	for i, row := range rows {
		out[i] = &TransactionResponse{
			ID:         row.ID,
			BookID:     row.BookID,
			Quantity:   row.Quantity,
			Discount:   row.Discount,
			PriceTotal: row.PriceTotal,
			Book:       row.Book,
			CreatedAt:  formatTime(row.CreatedAt),
		}
	}
	return out
}

// NewGroupResponse 转换交易组
func NewGroupResponse(g *transaction.Group) *GroupResponse {
	return &GroupResponse{
		TransactionID: g.GroupID,
		Discount:      g.Discount,
		Total:         g.Total,
		CreatedAt:     formatTime(g.CreatedAt),
		Transactions:  NewTransactionResponses(g.Transactions),
	}
}

// NewGroupResponses 转换交易历史
func NewGroupResponses(groups []*transaction.Group) []*GroupResponse {
	out := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		out[i] = NewGroupResponse(g)
	}
	return out
}

// NewCheckoutResponse 转换结算结果
func NewCheckoutResponse(r *checkout.Result) *CheckoutResponse {
	return &CheckoutResponse{
		TransactionID:   r.GroupID,
		Total:           r.Total,
		Discount:        r.Discount,
		DiscountedTotal: r.DiscountedTotal,
		Transactions:    NewTransactionResponses(r.Transactions),
	}
}
