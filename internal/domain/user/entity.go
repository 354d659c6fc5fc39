package user

import (
	"time"
)

// User 用户实体
// 购物车和交易记录都以用户ID作为分区键;登录注册不在本服务内
type User struct {
	ID        uint
	Name      string
	Email     string
	Login     string
	CreatedAt time.Time
}
