// Package pricing 计算订单金额与阶梯折扣
//
// 所有函数都是纯函数,没有副作用,不访问数据库。
// 金额统一使用decimal,舍入方式为四舍五入(远离零),保留两位小数。
package pricing

import (
	"github.com/shopspring/decimal"
)

// Line 计价行:单价 × 数量
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// tier 折扣阶梯:总额严格大于Above时享受Percent折扣
type tier struct {
	Above   decimal.Decimal
	Percent int
}

// tiers 按门槛从高到低排列
var tiers = []tier{
	{Above: decimal.NewFromInt(200), Percent: 15},
	{Above: decimal.NewFromInt(100), Percent: 5},
}

var hundred = decimal.NewFromInt(100)

// ComputeTotal 计算总额:Σ 单价 × 数量,最后统一保留两位小数(不逐行舍入)
func ComputeTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total.Round(2)
}

// DiscountTier 根据总额返回折扣百分比
// 总额 > 200 → 15;总额 > 100 → 5;否则 0。
// 门槛是严格大于,恰好100或200只能享受低一档
func DiscountTier(total decimal.Decimal) int {
	for _, t := range tiers {
		if total.GreaterThan(t.Above) {
			return t.Percent
		}
	}
	return 0
}

// LineItemCharge 单行实付:单价 × 数量 × (1 - 折扣/100),保留两位小数
func LineItemCharge(price decimal.Decimal, quantity int, discountPercent int) decimal.Decimal {
	gross := price.Mul(decimal.NewFromInt(int64(quantity)))
	return gross.Mul(decimal.NewFromInt(int64(100 - discountPercent))).Div(hundred).Round(2)
}

// ApplyDiscount 对总额打折,保留两位小数
func ApplyDiscount(total decimal.Decimal, discountPercent int) decimal.Decimal {
	return total.Mul(decimal.NewFromInt(int64(100 - discountPercent))).Div(hundred).Round(2)
}

// Quote 一次完整的计价结果
type Quote struct {
	Total      decimal.Decimal   // 折前总额
	Discount   int               // 折扣百分比
	Charges    []decimal.Decimal // 与lines一一对应的实付金额
	Discounted decimal.Decimal   // Σ Charges
}

// Price 对整个购物车计价:折扣由整单总额决定,统一作用于每一行
func Price(lines []Line) Quote {
	total := ComputeTotal(lines)
	discount := DiscountTier(total)

	charges := make([]decimal.Decimal, len(lines))
	sum := decimal.Zero
	for i, l := range lines {
		charges[i] = LineItemCharge(l.Price, l.Quantity, discount)
		sum = sum.Add(charges[i])
	}

	return Quote{
		Total:      total,
		Discount:   discount,
		Charges:    charges,
		Discounted: sum,
	}
}
