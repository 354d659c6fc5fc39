package dto

import (
	"github.com/xiebiao/bookstore-basket/internal/domain/book"
)

// ListBooksRequest 目录查询参数
// 字符串条件为空表示不过滤;price和price_op必须同时出现
type ListBooksRequest struct {
	Page      int      `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize  int      `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Name      string   `form:"name" binding:"omitempty,max=200" example:"Dune"`
	Author    string   `form:"author" binding:"omitempty,max=100" example:"Herbert"`
	Publisher string   `form:"publisher" binding:"omitempty,max=100"`
	Series    string   `form:"series" binding:"omitempty,max=100"`
	Category  string   `form:"category" binding:"omitempty,max=100" example:"Fiction"`
	Language  string   `form:"language" binding:"omitempty,max=50" example:"en"`
	Condition string   `form:"condition" binding:"omitempty,max=50" example:"new"`
	Price     *float64 `form:"price" binding:"omitempty,gte=0" example:"20"`
	PriceOp   string   `form:"price_op" binding:"omitempty,oneof=le ge eq" example:"le"`
}

// ToFilter 转换为目录筛选条件
func (r *ListBooksRequest) ToFilter() book.Filter {
	return book.Filter{
		Name:      r.Name,
		Author:    r.Author,
		Publisher: r.Publisher,
		Series:    r.Series,
		Category:  r.Category,
		Language:  r.Language,
		Condition: r.Condition,
		Price:     r.Price,
		PriceOp:   book.PriceOp(r.PriceOp),
		Page:      r.Page,
		PageSize:  r.PageSize,
	}
}

// BookIDUri 路径参数 /books/:id
type BookIDUri struct {
	ID uint `uri:"id" binding:"required,min=1"`
}
