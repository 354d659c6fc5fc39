package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-basket/internal/domain/basket"
	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
)

// basketRepository 购物车仓储实现
// 所有方法通过dbFromContext参与调用方的事务
type basketRepository struct {
	db *gorm.DB
}

// NewBasketRepository 创建购物车仓储
func NewBasketRepository(db *gorm.DB) basket.Repository {
	return &basketRepository{db: db}
}

// FindByID 根据ID查找
func (r *basketRepository) FindByID(ctx context.Context, id uint) (*basket.Item, error) {
	var model BasketItemModel
	if err := dbFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		return nil, itemError(err, "查询购物车失败")
	}
	return toItemEntity(&model), nil
}

// LockByID SELECT ... FOR UPDATE
func (r *basketRepository) LockByID(ctx context.Context, id uint) (*basket.Item, error) {
	var model BasketItemModel
	err := dbFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error
	if err != nil {
		return nil, itemError(err, "锁定购物车失败")
	}
	return toItemEntity(&model), nil
}

// FindByUserAndBook 走唯一索引uk_user_book
func (r *basketRepository) FindByUserAndBook(ctx context.Context, userID, bookID uint) (*basket.Item, error) {
	var model BasketItemModel
	err := dbFromContext(ctx, r.db).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&model).Error
	if err != nil {
		return nil, itemError(err, "查询购物车失败")
	}
	return toItemEntity(&model), nil
}

// ListByUser 用户购物车的全部行
func (r *basketRepository) ListByUser(ctx context.Context, userID uint) ([]*basket.Item, error) {
	var models []BasketItemModel
	err := dbFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, storageError(err, "查询购物车失败")
	}
	return toItemEntities(models), nil
}

// LockByUser 锁定用户购物车的全部行
func (r *basketRepository) LockByUser(ctx context.Context, userID uint) ([]*basket.Item, error) {
	var models []BasketItemModel
	err := dbFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, storageError(err, "锁定购物车失败")
	}
	return toItemEntities(models), nil
}

// Create 新增一行
// 同一用户同一本书的并发插入由唯一索引拦截,返回ErrConcurrencyConflict
func (r *basketRepository) Create(ctx context.Context, item *basket.Item) error {
	model := &BasketItemModel{
		UserID:   item.UserID,
		BookID:   item.BookID,
		Quantity: item.Quantity,
	}

	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrConcurrencyConflict
		}
		return storageError(err, "加入购物车失败")
	}

	item.ID = model.ID
	item.CreatedAt = model.CreatedAt
	item.UpdatedAt = model.UpdatedAt
	return nil
}

// AddQuantity 原子更新数量
// UPDATE basket_items SET quantity = quantity + ? WHERE id = ?
func (r *basketRepository) AddQuantity(ctx context.Context, id uint, delta int) error {
	result := dbFromContext(ctx, r.db).
		Model(&BasketItemModel{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return storageError(result.Error, "更新购物车数量失败")
	}
	if result.RowsAffected == 0 {
		return basket.ErrItemNotFound
	}
	return nil
}

// Delete 删除一行
func (r *basketRepository) Delete(ctx context.Context, id uint) error {
	result := dbFromContext(ctx, r.db).Delete(&BasketItemModel{}, id)
	if result.Error != nil {
		return storageError(result.Error, "删除购物车商品失败")
	}
	if result.RowsAffected == 0 {
		return basket.ErrItemNotFound
	}
	return nil
}

// DeleteByUser 清空用户购物车
func (r *basketRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := dbFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Delete(&BasketItemModel{})
	if result.Error != nil {
		return 0, storageError(result.Error, "清空购物车失败")
	}
	return result.RowsAffected, nil
}

func itemError(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return basket.ErrItemNotFound
	}
	return storageError(err, message)
}

// toItemEntity GORM模型 → 领域实体
func toItemEntity(model *BasketItemModel) *basket.Item {
	return &basket.Item{
		ID:        model.ID,
		UserID:    model.UserID,
		BookID:    model.BookID,
		Quantity:  model.Quantity,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toItemEntities(models []BasketItemModel) []*basket.Item {
	items := make([]*basket.Item, len(models))
	for i := range models {
		items[i] = toItemEntity(&models[i])
	}
	return items
}
