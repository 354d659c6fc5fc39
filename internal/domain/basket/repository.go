package basket

import (
	"context"
)

// Repository 购物车仓储接口
// 所有方法都从context中获取事务(见mysql.TxManager),
// 需要锁的方法只能在事务内调用
type Repository interface {
	// FindByID 根据ID查找,不存在返回ErrItemNotFound
	FindByID(ctx context.Context, id uint) (*Item, error)

	// LockByID 悲观锁查询(SELECT ... FOR UPDATE)
	LockByID(ctx context.Context, id uint) (*Item, error)

	// FindByUserAndBook 查找用户购物车中某本书的行,不存在返回ErrItemNotFound
	FindByUserAndBook(ctx context.Context, userID, bookID uint) (*Item, error)

	// ListByUser 用户购物车的全部行,顺序不保证
	ListByUser(ctx context.Context, userID uint) ([]*Item, error)

	// LockByUser 锁定并返回用户购物车的全部行(结算快照)
	LockByUser(ctx context.Context, userID uint) ([]*Item, error)

	// Create 新增一行;唯一索引冲突返回apperrors.ErrConcurrencyConflict
	Create(ctx context.Context, item *Item) error

	// AddQuantity 原子更新数量:quantity = quantity + delta
	AddQuantity(ctx context.Context, id uint, delta int) error

	// Delete 删除一行,不存在返回ErrItemNotFound
	Delete(ctx context.Context, id uint) error

	// DeleteByUser 清空用户购物车,返回删除行数
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}
