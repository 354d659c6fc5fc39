package basket

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/bookstore-basket/internal/domain/basket"
	"github.com/xiebiao/bookstore-basket/internal/domain/book"
	"github.com/xiebiao/bookstore-basket/internal/domain/user"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-basket/pkg/metrics"
	"github.com/xiebiao/bookstore-basket/pkg/tracing"
)

const tracerName = "basket"

// Store 购物车用例
// 设计说明:
// 1. 每个修改操作都在事务中先锁定用户行(SELECT ... FOR UPDATE),同一用户的修改与结算串行执行
// 2. 加锁顺序固定为 用户 → 购物车行,与结算一致,避免死锁
// 3. 按商品行ID操作时校验归属,其他用户的行一律报告为ErrItemNotFound
// 4. 数量变更使用 quantity = quantity + ? 原子更新
type Store struct {
	basketRepo basket.Repository
	userRepo   user.Repository
	books      book.CachedLookup
	txManager  *mysql.TxManager
}

// NewStore 创建购物车用例
func NewStore(
	basketRepo basket.Repository,
	userRepo user.Repository,
	books book.CachedLookup,
	txManager *mysql.TxManager,
) *Store {
	return &Store{
		basketRepo: basketRepo,
		userRepo:   userRepo,
		books:      books,
		txManager:  txManager,
	}
}

// AddItem 加入购物车
// 已有同一本书的行时数量+1,否则新建数量为1的行
func (s *Store) AddItem(ctx context.Context, userID, bookID uint) (item *basket.Item, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Basket.AddItem")
	defer func() {
		metrics.ObserveBasketOp("add", err)
		tracing.End(span, err)
	}()

	if err := validateIDs(userID, bookID); err != nil {
		return nil, err
	}

	// 图书必须存在;在事务外查询,不在持有锁时访问缓存
	b, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.LockByID(ctx, userID); err != nil {
			return err
		}

		existing, err := s.basketRepo.FindByUserAndBook(ctx, userID, bookID)
		switch {
		case err == nil:
			if !existing.CanIncreaseBy(1) {
				return basket.ErrInvalidAmount
			}
			if err := s.basketRepo.AddQuantity(ctx, existing.ID, 1); err != nil {
				return err
			}
			existing.Quantity++
			existing.UpdatedAt = time.Now()
			item = existing
			return nil
		case errors.Is(err, basket.ErrItemNotFound):
			item = basket.NewItem(userID, bookID)
			return s.basketRepo.Create(ctx, item)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	item.Book = b
	log.Debug().Uint("user_id", userID).Uint("book_id", bookID).Int("quantity", item.Quantity).Msg("加入购物车")
	return item, nil
}

// IncreaseQuantity 增加数量,amount必须为正,增加后不能超过basket.MaxQuantity
func (s *Store) IncreaseQuantity(ctx context.Context, userID, itemID uint, amount int) (item *basket.Item, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Basket.IncreaseQuantity")
	defer func() {
		metrics.ObserveBasketOp("increase", err)
		tracing.End(span, err)
	}()

	if err := validateIDs(userID, itemID); err != nil {
		return nil, err
	}
	if err := basket.ValidateAmount(amount); err != nil {
		return nil, err
	}

	err = s.txManager.Transaction(ctx, func(ctx context.Context) error {
		locked, err := s.lockOwnedItem(ctx, userID, itemID)
		if err != nil {
			return err
		}
		// 先检查上限再写入,quantity + ? 不会越界
		if !locked.CanIncreaseBy(amount) {
			return basket.ErrInvalidAmount
		}
		if err := s.basketRepo.AddQuantity(ctx, locked.ID, amount); err != nil {
			return err
		}
		locked.Quantity += amount
		locked.UpdatedAt = time.Now()
		item = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DecreaseQuantity 减少数量
// 数量大于amount时扣减;否则整行删除,返回的Quantity为0
func (s *Store) DecreaseQuantity(ctx context.Context, userID, itemID uint, amount int) (item *basket.Item, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Basket.DecreaseQuantity")
	defer func() {
		metrics.ObserveBasketOp("decrease", err)
		tracing.End(span, err)
	}()

	if err := validateIDs(userID, itemID); err != nil {
		return nil, err
	}
	if err := basket.ValidateAmount(amount); err != nil {
		return nil, err
	}

	err = s.txManager.Transaction(ctx, func(ctx context.Context) error {
		locked, err := s.lockOwnedItem(ctx, userID, itemID)
		if err != nil {
			return err
		}

		if locked.RemovedBy(amount) {
			if err := s.basketRepo.Delete(ctx, locked.ID); err != nil {
				return err
			}
			locked.MarkRemoved()
		} else {
			if err := s.basketRepo.AddQuantity(ctx, locked.ID, -amount); err != nil {
				return err
			}
			locked.Quantity -= amount
			locked.UpdatedAt = time.Now()
		}
		item = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem 删除一行,返回被删除的行
func (s *Store) RemoveItem(ctx context.Context, userID, itemID uint) (item *basket.Item, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Basket.RemoveItem")
	defer func() {
		metrics.ObserveBasketOp("remove", err)
		tracing.End(span, err)
	}()

	if err := validateIDs(userID, itemID); err != nil {
		return nil, err
	}

	err = s.txManager.Transaction(ctx, func(ctx context.Context) error {
		locked, err := s.lockOwnedItem(ctx, userID, itemID)
		if err != nil {
			return err
		}
		if err := s.basketRepo.Delete(ctx, locked.ID); err != nil {
			return err
		}
		item = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Clear 清空购物车,返回删除的行数;购物车本来为空时返回0
func (s *Store) Clear(ctx context.Context, userID uint) (removed int64, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Basket.Clear")
	defer func() {
		metrics.ObserveBasketOp("clear", err)
		tracing.End(span, err)
	}()

	if err := basket.ValidateID(userID); err != nil {
		return 0, err
	}

	err = s.txManager.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.LockByID(ctx, userID); err != nil {
			return err
		}
		n, err := s.basketRepo.DeleteByUser(ctx, userID)
		removed = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// List 购物车全部行,附带图书快照;顺序不保证
// 图书已从目录中下架的行仍然返回,Book为nil
func (s *Store) List(ctx context.Context, userID uint) ([]*basket.Item, error) {
	if err := basket.ValidateID(userID); err != nil {
		return nil, err
	}

	items, err := s.basketRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.BookID
	}
	books, err := s.books.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		item.Book = books[item.BookID]
		if item.Book == nil {
			log.Warn().Uint("user_id", userID).Uint("book_id", item.BookID).Msg("购物车中的图书已不在目录中")
		}
	}
	return items, nil
}

// lockOwnedItem 依次锁定用户行和商品行,并校验归属
func (s *Store) lockOwnedItem(ctx context.Context, userID, itemID uint) (*basket.Item, error) {
	if _, err := s.userRepo.LockByID(ctx, userID); err != nil {
		return nil, err
	}
	item, err := s.basketRepo.LockByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(userID) {
		return nil, basket.ErrItemNotFound
	}
	return item, nil
}

func validateIDs(ids ...uint) error {
	for _, id := range ids {
		if err := basket.ValidateID(id); err != nil {
			return err
		}
	}
	return nil
}
