package book

import (
	"github.com/shopspring/decimal"
)

// Book 图书快照(只读)
// 设计说明:
// 1. 购物车和结算只读取图书,不修改图书(不扣减库存)
// 2. 价格使用decimal,保留两位小数,避免float64的舍入误差
// 3. 作者、品相、分类等在数据库中是独立的字典表,这里展开为名称
type Book struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Author    string          `json:"author"`
	Condition string          `json:"condition"`
	Category  string          `json:"category"`
	Language  string          `json:"language"`
	Series    *string         `json:"series,omitempty"` // 可为空,不属于任何系列
	Publisher string          `json:"publisher"`
	Quantity  int             `json:"quantity_available"`
}

// InSeries 是否属于某个系列
func (b *Book) InSeries() bool {
	return b.Series != nil && *b.Series != ""
}
