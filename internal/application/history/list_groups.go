package history

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/bookstore-basket/internal/domain/basket"
	"github.com/xiebiao/bookstore-basket/internal/domain/book"
	"github.com/xiebiao/bookstore-basket/internal/domain/transaction"
)

// ListGroupsUseCase 交易历史查询
// 一次查询取回用户全部交易行,在内存中按交易编号聚合,保持首次出现的顺序
// 图书信息通过一次批量查询补齐,可以读缓存
type ListGroupsUseCase struct {
	txRepo transaction.Repository
	books  book.CachedLookup
}

// NewListGroupsUseCase 创建交易历史查询用例
func NewListGroupsUseCase(txRepo transaction.Repository, books book.CachedLookup) *ListGroupsUseCase {
	return &ListGroupsUseCase{txRepo: txRepo, books: books}
}

// Execute 返回用户全部交易组,没有交易时返回空切片
func (uc *ListGroupsUseCase) Execute(ctx context.Context, userID uint) ([]*transaction.Group, error) {
	if err := basket.ValidateID(userID); err != nil {
		return nil, err
	}

	rows, err := uc.txRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := attachBooks(ctx, uc.books, rows); err != nil {
		return nil, err
	}
	return transaction.GroupRows(rows), nil
}

// attachBooks 为交易行补齐图书快照
// 已下架的图书保持为nil,交易行本身的金额不受影响
func attachBooks(ctx context.Context, lookup book.Lookup, rows []*transaction.Transaction) error {
	if len(rows) == 0 {
		return nil
	}

	books, err := lookup.FindByIDs(ctx, transaction.BookIDs(rows))
	if err != nil {
		return err
	}
	for _, row := range rows {
		row.Book = books[row.BookID]
		if row.Book == nil {
			log.Debug().Uint("book_id", row.BookID).Str("transaction_id", row.GroupID).Msg("交易中的图书已不在目录中")
		}
	}
	return nil
}
