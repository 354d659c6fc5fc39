package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
)

// isDuplicateError 判断是否为唯一索引冲突错误
// - MySQL 1062: Duplicate entry 'xxx' for key 'yyy'
// - Postgres 23505: duplicate key value violates unique constraint
// - SQLite: UNIQUE constraint failed
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// isLockError 判断是否为锁等待超时或死锁
// - MySQL 1205: Lock wait timeout exceeded
// - MySQL 1213: Deadlock found when trying to get lock
// - Postgres 40P01: deadlock detected
// - SQLite: database is locked
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Lock wait timeout") ||
		strings.Contains(msg, "Deadlock found") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "database is locked")
}

// storageError 把非业务的数据库错误翻译为AppError
// 锁冲突返回ErrConcurrencyConflict(客户端可以重试),其余包装为数据库错误
func storageError(err error, message string) error {
	if isLockError(err) {
		return apperrors.ErrConcurrencyConflict
	}
	return apperrors.WrapStorage(err, message)
}
