package transaction

import (
	"context"
)

// Repository 交易记录仓储接口
type Repository interface {
	// CreateBatch 批量写入同一次结算的全部行
	// 必须在事务中调用,失败时由事务整体回滚
	CreateBatch(ctx context.Context, rows []*Transaction) error

	// ListByUser 用户全部交易行,按ID升序
	ListByUser(ctx context.Context, userID uint) ([]*Transaction, error)

	// ListByGroup 某个交易组的全部行,按ID升序
	ListByGroup(ctx context.Context, userID uint, groupID string) ([]*Transaction, error)
}
