package book

import (
	"context"
)

// Lookup 目录查询接口(只读)
// 设计说明:
// 1. 购物车、结算、交易历史都把目录当作只读数据源
// 2. 按主键索引查询,字典表(作者、分类等)通过JOIN一次取回,不再全表拉取
// 3. 实现:mysql.bookRepository(权威数据),redis.BookCache(带缓存的装饰器)
type Lookup interface {
	// FindByID 根据ID查找图书,不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByIDs 批量查找,返回map[id]*Book
	// 不存在的ID不会出现在结果中,由调用方决定是否报错
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*Book, error)

	// List 按筛选条件分页查询
	List(ctx context.Context, filter Filter) ([]*Book, int64, error)
}

// PriceOp 价格比较方式
type PriceOp string

const (
	PriceLE PriceOp = "le" // 小于等于
	PriceGE PriceOp = "ge" // 大于等于
	PriceEQ PriceOp = "eq" // 等于
)

// Filter 目录筛选条件
// 字符串条件为空表示不过滤
type Filter struct {
	Name      string // 书名包含
	Author    string // 作者名包含
	Publisher string // 出版社名包含
	Series    string // 系列名包含
	Category  string // 分类名包含(匹配子分类或其父分类)
	Language  string // 语言,精确匹配
	Condition string // 品相,精确匹配
	Price     *float64
	PriceOp   PriceOp
	Page      int // 页码(从1开始)
	PageSize  int
}

// Validate 校验筛选条件
func (f *Filter) Validate() error {
	if f.Price == nil {
		return nil
	}
	switch f.PriceOp {
	case PriceLE, PriceGE, PriceEQ:
		return nil
	default:
		return ErrInvalidPriceFilter
	}
}

// Normalize 分页参数默认值与上限
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

// CachedLookup 可以读缓存的目录查询,用于购物车、交易历史和目录展示
// 结算计价必须使用Lookup(权威数据源)
type CachedLookup interface {
	Lookup
}
