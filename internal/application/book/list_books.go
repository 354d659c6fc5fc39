package book

import (
	"context"

	"github.com/xiebiao/bookstore-basket/internal/domain/book"
)

// ListBooksUseCase 目录浏览
// 设计说明:
// 1. 筛选条件为空表示不过滤,多个条件之间是AND关系
// 2. 分类条件同时匹配子分类和父分类
// 3. 分页参数在Filter.Normalize中统一处理(默认20条,最大100条)
type ListBooksUseCase struct {
	books book.CachedLookup
}

// NewListBooksUseCase 创建目录浏览用例
func NewListBooksUseCase(books book.CachedLookup) *ListBooksUseCase {
	return &ListBooksUseCase{books: books}
}

// ListBooksResponse 目录分页结果
type ListBooksResponse struct {
	List     []*book.Book `json:"list"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// Execute 执行目录查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, filter book.Filter) (*ListBooksResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.Normalize()

	books, total, err := uc.books.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ListBooksResponse{
		List:     books,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// GetBookUseCase 图书详情
type GetBookUseCase struct {
	books book.CachedLookup
}

// NewGetBookUseCase 创建图书详情用例
func NewGetBookUseCase(books book.CachedLookup) *GetBookUseCase {
	return &GetBookUseCase{books: books}
}

// Execute 不存在返回book.ErrBookNotFound
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*book.Book, error) {
	if id == 0 {
		return nil, book.ErrBookNotFound
	}
	return uc.books.FindByID(ctx, id)
}
