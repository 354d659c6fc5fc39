package history

import (
	"context"

	"github.com/xiebiao/bookstore-basket/internal/domain/basket"
	"github.com/xiebiao/bookstore-basket/internal/domain/book"
	"github.com/xiebiao/bookstore-basket/internal/domain/transaction"
)

// GetGroupUseCase 查询单个交易组
type GetGroupUseCase struct {
	txRepo transaction.Repository
	books  book.CachedLookup
}

// NewGetGroupUseCase 创建单个交易组查询用例
func NewGetGroupUseCase(txRepo transaction.Repository, books book.CachedLookup) *GetGroupUseCase {
	return &GetGroupUseCase{txRepo: txRepo, books: books}
}

// Execute 其他用户的交易组同样返回ErrGroupNotFound
func (uc *GetGroupUseCase) Execute(ctx context.Context, userID uint, groupID string) (*transaction.Group, error) {
	if err := basket.ValidateID(userID); err != nil {
		return nil, err
	}
	if !transaction.IsValidGroupID(groupID) {
		return nil, transaction.ErrInvalidGroupID
	}

	rows, err := uc.txRepo.ListByGroup(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, transaction.ErrGroupNotFound
	}
	if err := attachBooks(ctx, uc.books, rows); err != nil {
		return nil, err
	}
	return transaction.GroupRows(rows)[0], nil
}
