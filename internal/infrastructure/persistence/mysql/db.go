package mysql

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookstore-basket/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明:
// 1. 使用GORM v2作为ORM框架,生产环境用MySQL,也支持Postgres和SQLite(本地开发、测试)
// 2. 配置连接池参数(MaxOpenConns、MaxIdleConns、ConnMaxLifetime)
// 3. 开发环境开启SQL日志,生产环境关闭
// 4. auto_migrate打开时自动迁移表结构
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := openDialector(cfg.Database)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true, // 唯一索引冲突统一翻译为gorm.ErrDuplicatedKey
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	if cfg.Database.Driver == "sqlite" {
		// SQLite同一时刻只允许一个写事务,单连接让事务排队执行
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Info().Str("driver", cfg.Database.Driver).Msg("数据库连接成功")

	// 注意:生产环境应使用版本化的迁移脚本,不要依赖AutoMigrate
	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	return db, nil
}

func openDialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql", "":
		return mysql.Open(cfg.DSN()), nil
	case "postgres":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// AutoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段,不会删除或修改现有字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&AuthorModel{},
		&ConditionModel{},
		&CategoryModel{},
		&LanguageModel{},
		&SeriesModel{},
		&PublisherModel{},
		&BookModel{},
		&BasketItemModel{},
		&TransactionModel{},
	)
}

// UserModel GORM用户模型
// 设计说明:
// 1. 这是infrastructure层的数据模型,包含GORM tag
// 2. domain/user/entity.go是领域实体,不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:100;not null;comment:姓名"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Login     string    `gorm:"uniqueIndex;size:50;not null;comment:登录名"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// =========================================
// 目录字典表
// =========================================

type AuthorModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"index;size:100;not null;comment:作者名"`
}

func (AuthorModel) TableName() string {
	return "authors"
}

type ConditionModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:50;not null;comment:品相(全新、九成新等)"`
}

func (ConditionModel) TableName() string {
	return "conditions"
}

// CategoryModel 分类,最多两级(子分类通过ParentID指向父分类)
type CategoryModel struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"index;size:100;not null;comment:分类名"`
	ParentID *uint  `gorm:"index;comment:父分类ID"`
}

func (CategoryModel) TableName() string {
	return "categories"
}

type LanguageModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:50;not null;comment:语言"`
}

func (LanguageModel) TableName() string {
	return "languages"
}

type SeriesModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"index;size:100;not null;comment:系列名"`
}

func (SeriesModel) TableName() string {
	return "series"
}

type PublisherModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"index;size:100;not null;comment:出版社"`
}

func (PublisherModel) TableName() string {
	return "publishers"
}

// BookModel GORM图书模型
// 设计说明:
// 1. 价格使用decimal(10,2)存储,读写都经过decimal.Decimal,不经过float64
// 2. 作者、品相等字典表通过belongs-to关联,查询时JOIN一次取回
// 3. Series可为空(不属于任何系列)
// 4. Quantity只做展示,结算不扣减库存
type BookModel struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"index;size:200;not null;comment:书名"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:单价"`
	AuthorID    uint            `gorm:"index;not null"`
	Author      AuthorModel     `gorm:"foreignKey:AuthorID"`
	ConditionID uint            `gorm:"index;not null"`
	Condition   ConditionModel  `gorm:"foreignKey:ConditionID"`
	CategoryID  uint            `gorm:"index;not null"`
	Category    CategoryModel   `gorm:"foreignKey:CategoryID"`
	LanguageID  uint            `gorm:"index;not null"`
	Language    LanguageModel   `gorm:"foreignKey:LanguageID"`
	SeriesID    *uint           `gorm:"index"`
	Series      *SeriesModel    `gorm:"foreignKey:SeriesID"`
	PublisherID uint            `gorm:"index;not null"`
	Publisher   PublisherModel  `gorm:"foreignKey:PublisherID"`
	Quantity    int             `gorm:"default:0;comment:可售数量(仅展示)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// BasketItemModel GORM购物车模型
// 唯一索引(user_id, book_id)保证同一用户同一本书只有一行
type BasketItemModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:uk_user_book;not null;comment:用户ID"`
	BookID    uint      `gorm:"uniqueIndex:uk_user_book;not null;comment:图书ID"`
	Quantity  int       `gorm:"not null;comment:数量"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BasketItemModel) TableName() string {
	return "basket_items"
}

// TransactionModel GORM交易记录模型
// 设计说明:
// 1. 一行对应结算时购物车的一行,创建后只读
// 2. TransactionID是交易组ID,同一次结算的所有行相同
// 3. PriceTotal是折后行金额快照,之后图书改价也不影响历史记录
type TransactionModel struct {
	ID            uint            `gorm:"primaryKey"`
	TransactionID string          `gorm:"index;size:32;not null;comment:交易组ID"`
	UserID        uint            `gorm:"index;not null;comment:用户ID"`
	BookID        uint            `gorm:"not null;comment:图书ID"`
	Quantity      int             `gorm:"not null;comment:数量"`
	Discount      int             `gorm:"not null;default:0;comment:折扣百分比"`
	PriceTotal    decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:折后行金额"`
	CreatedAt     time.Time       `gorm:"index;comment:创建时间"`
}

// TableName 指定表名
func (TransactionModel) TableName() string {
	return "transactions"
}
