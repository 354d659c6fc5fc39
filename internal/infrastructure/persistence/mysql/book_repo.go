package mysql

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-basket/internal/domain/book"
)

// bookRepository 图书目录查询实现(权威数据源,不走缓存)
// 设计说明:
// 1. 实现domain/book/repository.go定义的Lookup接口
// 2. 字典表通过JOIN与图书一起取回,一次查询得到完整快照
// 3. 按主键或主键集合查询,不做全表扫描
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Lookup {
	return &bookRepository{db: db}
}

// withRefs 关联字典表
// Series可为空,用Preload单独按主键取回,避免LEFT JOIN得到空结构体
func withRefs(db *gorm.DB) *gorm.DB {
	return db.
		Joins("Author").
		Joins("Condition").
		Joins("Category").
		Joins("Language").
		Joins("Publisher").
		Preload("Series")
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := withRefs(dbFromContext(ctx, r.db)).
		Where("books.id = ?", id).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, storageError(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// FindByIDs 批量查找图书
// SELECT ... FROM books LEFT JOIN authors ... WHERE books.id IN (?)
func (r *bookRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*book.Book, error) {
	result := make(map[uint]*book.Book, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var models []BookModel
	err := withRefs(dbFromContext(ctx, r.db)).
		Where("books.id IN ?", ids).
		Find(&models).Error
	if err != nil {
		return nil, storageError(err, "批量查询图书失败")
	}

	for i := range models {
		result[models[i].ID] = toBookEntity(&models[i])
	}
	return result, nil
}

// List 按筛选条件分页查询
// 字典表上的条件用子查询表达(author_id IN (SELECT id FROM authors WHERE ...)),
// 与JOIN的别名无关,MySQL、Postgres、SQLite写法一致
func (r *bookRepository) List(ctx context.Context, filter book.Filter) ([]*book.Book, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	filter.Normalize()

	db := dbFromContext(ctx, r.db)

	var total int64
	if err := r.applyFilter(ctx, db.Model(&BookModel{}), filter).Count(&total).Error; err != nil {
		return nil, 0, storageError(err, "查询图书总数失败")
	}

	var models []BookModel
	offset := (filter.Page - 1) * filter.PageSize
	err := withRefs(r.applyFilter(ctx, db.Model(&BookModel{}), filter)).
		Order("books.id ASC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, storageError(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

func (r *bookRepository) applyFilter(ctx context.Context, query *gorm.DB, f book.Filter) *gorm.DB {
	ids := func(model interface{}) *gorm.DB {
		return r.db.WithContext(ctx).Model(model).Select("id")
	}

	if f.Name != "" {
		query = query.Where("books.name LIKE ?", like(f.Name))
	}
	if f.Author != "" {
		query = query.Where("books.author_id IN (?)", ids(&AuthorModel{}).Where("name LIKE ?", like(f.Author)))
	}
	if f.Publisher != "" {
		query = query.Where("books.publisher_id IN (?)", ids(&PublisherModel{}).Where("name LIKE ?", like(f.Publisher)))
	}
	if f.Series != "" {
		query = query.Where("books.series_id IN (?)", ids(&SeriesModel{}).Where("name LIKE ?", like(f.Series)))
	}
	if f.Category != "" {
		// 匹配分类本身,或父分类匹配的子分类
		parents := ids(&CategoryModel{}).Where("name LIKE ?", like(f.Category))
		query = query.Where("books.category_id IN (?)",
			ids(&CategoryModel{}).Where("name LIKE ? OR parent_id IN (?)", like(f.Category), parents))
	}
	if f.Language != "" {
		query = query.Where("books.language_id IN (?)", ids(&LanguageModel{}).Where("name = ?", f.Language))
	}
	if f.Condition != "" {
		query = query.Where("books.condition_id IN (?)", ids(&ConditionModel{}).Where("name = ?", f.Condition))
	}
	if f.Price != nil {
		price := decimal.NewFromFloat(*f.Price).Round(2)
		switch f.PriceOp {
		case book.PriceLE:
			query = query.Where("books.price <= ?", price)
		case book.PriceGE:
			query = query.Where("books.price >= ?", price)
		case book.PriceEQ:
			query = query.Where("books.price = ?", price)
		}
	}
	return query
}

func like(s string) string {
	return "%" + s + "%"
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	b := &book.Book{
		ID:        model.ID,
		Name:      model.Name,
		Price:     model.Price,
		Author:    model.Author.Name,
		Condition: model.Condition.Name,
		Category:  model.Category.Name,
		Language:  model.Language.Name,
		Publisher: model.Publisher.Name,
		Quantity:  model.Quantity,
	}
	if model.Series != nil {
		name := model.Series.Name
		b.Series = &name
	}
	return b
}
