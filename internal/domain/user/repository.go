package user

import (
	"context"
)

// Repository 用户仓储接口
type Repository interface {
	// FindByID 根据ID查找用户,不存在返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// LockByID 悲观锁锁定用户行(SELECT ... FOR UPDATE)
	// 必须在事务中调用。同一用户的购物车修改与结算都先获取这把锁,
	// 保证并发请求要么完整地排在结算之前,要么完整地排在结算之后
	LockByID(ctx context.Context, id uint) (*User, error)
}
