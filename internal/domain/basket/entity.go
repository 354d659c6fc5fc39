package basket

import (
	"time"

	"github.com/xiebiao/bookstore-basket/internal/domain/book"
)

// MaxQuantity 单行数量上限
const MaxQuantity = 9999

// Item 购物车商品行
// 不变式:
// 1. 1 <= Quantity <= MaxQuantity;减少到0或以下时整行删除,不会留下数量为0的行
// 2. 同一用户同一本书最多一行(数据库唯一索引 user_id + book_id 保证)
type Item struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"user_id"`
	BookID    uint       `json:"book_id"`
	Quantity  int        `json:"quantity"`
	Book      *book.Book `json:"book,omitempty"` // 读取时由目录查询填充
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewItem 首次加入购物车,数量为1
func NewItem(userID, bookID uint) *Item {
	now := time.Now()
	return &Item{
		UserID:    userID,
		BookID:    bookID,
		Quantity:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOwnedBy 商品行是否属于指定用户
func (i *Item) IsOwnedBy(userID uint) bool {
	return i.UserID == userID
}

// CanIncreaseBy 增加amount后是否仍在上限之内
func (i *Item) CanIncreaseBy(amount int) bool {
	return amount > 0 && i.Quantity <= MaxQuantity-amount
}

// RemovedBy 减少amount后是否应整行删除
func (i *Item) RemovedBy(amount int) bool {
	return i.Quantity <= amount
}

// MarkRemoved 整行删除后返回给调用方时,数量报告为0
func (i *Item) MarkRemoved() {
	i.Quantity = 0
	i.UpdatedAt = time.Now()
}

// ValidateAmount 增减数量必须是正整数
func ValidateAmount(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateID 标识必须非零
func ValidateID(id uint) error {
	if id == 0 {
		return ErrInvalidID
	}
	return nil
}
