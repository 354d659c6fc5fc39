package basket

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-basket/internal/domain/basket"
	"github.com/xiebiao/bookstore-basket/internal/domain/pricing"
)

// Summary 购物车汇总(展示用)
// 与结算使用同一套计价规则,但这里的图书价格可能来自缓存,以结算结果为准
type Summary struct {
	Items           []*basket.Item  `json:"items"`
	ItemCount       int             `json:"item_count"` // 总件数(各行数量之和)
	Total           decimal.Decimal `json:"total"`
	Discount        int             `json:"discount"`
	DiscountedTotal decimal.Decimal `json:"discounted_total"`
}

// Snapshot 购物车内容及金额
// 已下架的图书不计入金额
func (s *Store) Snapshot(ctx context.Context, userID uint) (*Summary, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, 0, len(items))
	count := 0
	for _, item := range items {
		count += item.Quantity
		if item.Book == nil {
			continue
		}
		lines = append(lines, pricing.Line{Price: item.Book.Price, Quantity: item.Quantity})
	}
	quote := pricing.Price(lines)

	return &Summary{
		Items:           items,
		ItemCount:       count,
		Total:           quote.Total,
		Discount:        quote.Discount,
		DiscountedTotal: quote.Discounted,
	}, nil
}
