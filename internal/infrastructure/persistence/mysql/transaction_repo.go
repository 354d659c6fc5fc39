package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-basket/internal/domain/transaction"
)

// transactionRepository 交易记录仓储实现
// 只有写入和查询,没有更新和删除
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建交易记录仓储
func NewTransactionRepository(db *gorm.DB) transaction.Repository {
	return &transactionRepository{db: db}
}

// CreateBatch 批量写入
// INSERT INTO transactions (...) VALUES (...), (...)
func (r *transactionRepository) CreateBatch(ctx context.Context, rows []*transaction.Transaction) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]TransactionModel, len(rows))
	for i, row := range rows {
		models[i] = TransactionModel{
			TransactionID: row.GroupID,
			UserID:        row.UserID,
			BookID:        row.BookID,
			Quantity:      row.Quantity,
			Discount:      row.Discount,
			PriceTotal:    row.PriceTotal,
			CreatedAt:     row.CreatedAt,
		}
	}

	if err := dbFromContext(ctx, r.db).Create(&models).Error; err != nil {
		return storageError(err, "写入交易记录失败")
	}

	for i := range models {
		rows[i].ID = models[i].ID
		rows[i].CreatedAt = models[i].CreatedAt
	}
	return nil
}

// ListByUser 用户全部交易行
// 一次查询取回,由调用方按GroupID聚合,不再逐组查询
func (r *transactionRepository) ListByUser(ctx context.Context, userID uint) ([]*transaction.Transaction, error) {
	var models []TransactionModel
	err := dbFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, storageError(err, "查询交易记录失败")
	}
	return toTransactionEntities(models), nil
}

// ListByGroup 某个交易组的全部行,只返回属于该用户的行
func (r *transactionRepository) ListByGroup(ctx context.Context, userID uint, groupID string) ([]*transaction.Transaction, error) {
	var models []TransactionModel
	err := dbFromContext(ctx, r.db).
		Where("transaction_id = ? AND user_id = ?", groupID, userID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, storageError(err, "查询交易记录失败")
	}
	return toTransactionEntities(models), nil
}

func toTransactionEntities(models []TransactionModel) []*transaction.Transaction {
	rows := make([]*transaction.Transaction, len(models))
	for i, m := range models {
		rows[i] = &transaction.Transaction{
			ID:         m.ID,
			GroupID:    m.TransactionID,
			UserID:     m.UserID,
			BookID:     m.BookID,
			Quantity:   m.Quantity,
			Discount:   m.Discount,
			PriceTotal: m.PriceTotal,
			CreatedAt:  m.CreatedAt,
		}
	}
	return rows
}
