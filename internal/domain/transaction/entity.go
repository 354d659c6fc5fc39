package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-basket/internal/domain/book"
)

// Transaction 交易记录(一行对应结算时购物车的一行)
// 设计说明:
// 1. 创建后不可修改,PriceTotal在结算时计算一次,之后不再重算
// 2. 同一次结算的所有行共享GroupID和Discount
// 3. 只保存BookID,展示时再通过目录查询填充Book
type Transaction struct {
	ID         uint            `json:"id"`
	GroupID    string          `json:"transaction_id"`
	UserID     uint            `json:"user_id"`
	BookID     uint            `json:"book_id"`
	Quantity   int             `json:"quantity"`
	Discount   int             `json:"discount"`
	PriceTotal decimal.Decimal `json:"price_total"`
	CreatedAt  time.Time       `json:"created_at"`
	Book       *book.Book      `json:"book,omitempty"`
}

// Group 一次结算的全部交易记录(读取时按GroupID聚合得到)
type Group struct {
	GroupID      string          `json:"transaction_id"`
	Transactions []*Transaction  `json:"transactions"`
	Discount     int             `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}

// GroupRows 把交易行按GroupID聚合
// 组的顺序按该组第一行在rows中出现的顺序,组内行保持原顺序
func GroupRows(rows []*Transaction) []*Group {
	groups := make([]*Group, 0)
	index := make(map[string]*Group)

	for _, row := range rows {
		g, ok := index[row.GroupID]
		if !ok {
			g = &Group{
				GroupID:   row.GroupID,
				Discount:  row.Discount,
				Total:     decimal.Zero,
				CreatedAt: row.CreatedAt,
			}
			index[row.GroupID] = g
			groups = append(groups, g)
		}
		g.Transactions = append(g.Transactions, row)
		g.Total = g.Total.Add(row.PriceTotal)
	}

	return groups
}

// BookIDs 所有行涉及的图书ID(去重)
func BookIDs(rows []*Transaction) []uint {
	seen := make(map[uint]struct{}, len(rows))
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.BookID]; ok {
			continue
		}
		seen[row.BookID] = struct{}{}
		ids = append(ids, row.BookID)
	}
	return ids
}
