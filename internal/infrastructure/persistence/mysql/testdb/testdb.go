// Package testdb 为测试提供内存SQLite数据库和目录数据
// 仓储测试和用例测试都跑在真实的GORM仓储上,不使用mock
package testdb

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookstore-basket/internal/infrastructure/persistence/mysql"
)

// New 每个测试一个独立的内存数据库
// 单连接:事务串行执行,并发测试中的锁竞争表现为排队
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取SQL DB失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := mysql.AutoMigrate(db); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}
	return db
}

// CreateUser 创建用户,返回ID
func CreateUser(t testing.TB, db *gorm.DB, login string) uint {
	t.Helper()

	model := &mysql.UserModel{
		Name:  login,
		Email: login + "@example.com",
		Login: login,
	}
	if err := db.Create(model).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return model.ID
}

// BookSpec 测试图书,空字段使用默认值
type BookSpec struct {
	Name           string
	Price          string // 十进制字符串,如"12.50"
	Author         string
	Condition      string
	Category       string
	ParentCategory string
	Language       string
	Series         string // 为空表示不属于系列
	Publisher      string
	Quantity       int
}

// CreateBook 创建图书及其字典数据,返回ID
func CreateBook(t testing.TB, db *gorm.DB, spec BookSpec) uint {
	t.Helper()

	if spec.Name == "" {
		spec.Name = "Untitled"
	}
	if spec.Price == "" {
		spec.Price = "10.00"
	}
	if spec.Author == "" {
		spec.Author = "Anonymous"
	}
	if spec.Condition == "" {
		spec.Condition = "new"
	}
	if spec.Category == "" {
		spec.Category = "General"
	}
	if spec.Language == "" {
		spec.Language = "en"
	}
	if spec.Publisher == "" {
		spec.Publisher = "Acme"
	}

	model := &mysql.BookModel{
		Name:        spec.Name,
		Price:       decimal.RequireFromString(spec.Price),
		AuthorID:    ref(t, db, "authors", spec.Author),
		ConditionID: ref(t, db, "conditions", spec.Condition),
		CategoryID:  category(t, db, spec.Category, spec.ParentCategory),
		LanguageID:  ref(t, db, "languages", spec.Language),
		PublisherID: ref(t, db, "publishers", spec.Publisher),
		Quantity:    spec.Quantity,
	}
	if spec.Series != "" {
		id := ref(t, db, "series", spec.Series)
		model.SeriesID = &id
	}

	if err := db.Omit("Author", "Condition", "Category", "Language", "Series", "Publisher").
		Create(model).Error; err != nil {
		t.Fatalf("创建图书失败: %v", err)
	}
	return model.ID
}

// SetPrice 修改图书价格(验证交易记录是价格快照)
func SetPrice(t testing.TB, db *gorm.DB, bookID uint, price string) {
	t.Helper()

	err := db.Model(&mysql.BookModel{}).
		Where("id = ?", bookID).
		Update("price", decimal.RequireFromString(price)).Error
	if err != nil {
		t.Fatalf("修改价格失败: %v", err)
	}
}

// dictRow 字典表的公共结构(id, name)
type dictRow struct {
	ID   uint
	Name string
}

// ref 按name查找或创建字典行,返回ID
func ref(t testing.TB, db *gorm.DB, table, name string) uint {
	t.Helper()

	var row dictRow
	if err := db.Table(table).Where("name = ?", name).Take(&row).Error; err == nil {
		return row.ID
	}
	row = dictRow{Name: name}
	if err := db.Table(table).Create(&row).Error; err != nil {
		t.Fatalf("创建%s失败: %v", table, err)
	}
	return row.ID
}

func category(t testing.TB, db *gorm.DB, name, parent string) uint {
	t.Helper()

	var model mysql.CategoryModel
	if err := db.Where("name = ?", name).Take(&model).Error; err == nil {
		return model.ID
	}
	model = mysql.CategoryModel{Name: name}
	if parent != "" {
		parentID := category(t, db, parent, "")
		model.ParentID = &parentID
	}
	if err := db.Create(&model).Error; err != nil {
		t.Fatalf("创建分类失败: %v", err)
	}
	return model.ID
}
