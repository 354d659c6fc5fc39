package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/xiebiao/bookstore-basket/internal/domain/book"
	"github.com/xiebiao/bookstore-basket/pkg/metrics"
)

// BookCache 带缓存的目录查询(旁路缓存)
// 设计说明:
// 1. 装饰book.Lookup:先读Redis,未命中再查数据库并回填
// 2. Key设计:book:{id},值为图书快照JSON,过期时间由redis.book_ttl配置
// 3. Redis故障时降级为直接查数据库,只记录日志,不影响购物车展示
// 4. 结算必须使用权威数据源,不要把BookCache注入结算用例
// 5. List结果随筛选条件变化,不缓存
// 6. 本服务不修改目录,缓存只靠TTL过期
type BookCache struct {
	client *redis.Client
	next   book.Lookup
	ttl    time.Duration
}

// NewBookCache 创建图书缓存;client为nil时直接返回next
func NewBookCache(client *redis.Client, next book.Lookup, ttl time.Duration) book.CachedLookup {
	if client == nil {
		return next
	}
	return &BookCache{client: client, next: next, ttl: ttl}
}

func bookKey(id uint) string {
	return fmt.Sprintf("book:%d", id)
}

// FindByID 读缓存,未命中回源
func (c *BookCache) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	data, err := c.client.Get(ctx, bookKey(id)).Bytes()
	if err == nil {
		var b book.Book
		if err := json.Unmarshal(data, &b); err == nil {
			metrics.ObserveBookCache("hit", 1)
			return &b, nil
		}
		metrics.ObserveBookCache("miss", 1)
	} else if errors.Is(err, redis.Nil) {
		metrics.ObserveBookCache("miss", 1)
	} else {
		metrics.ObserveBookCache("error", 1)
		log.Warn().Err(err).Uint("book_id", id).Msg("读取图书缓存失败,回源数据库")
	}

	b, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, b)
	return b, nil
}

// FindByIDs MGET批量读缓存,未命中的ID一次回源
func (c *BookCache) FindByIDs(ctx context.Context, ids []uint) (map[uint]*book.Book, error) {
	result := make(map[uint]*book.Book, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = bookKey(id)
	}

	misses := ids
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		metrics.ObserveBookCache("error", len(ids))
		log.Warn().Err(err).Int("count", len(ids)).Msg("批量读取图书缓存失败,回源数据库")
	} else {
		misses = make([]uint, 0, len(ids))
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				misses = append(misses, ids[i])
				continue
			}
			var b book.Book
			if err := json.Unmarshal([]byte(s), &b); err != nil {
				misses = append(misses, ids[i])
				continue
			}
			result[ids[i]] = &b
		}
		metrics.ObserveBookCache("hit", len(result))
		metrics.ObserveBookCache("miss", len(misses))
	}

	if len(misses) == 0 {
		return result, nil
	}

	loaded, err := c.next.FindByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, b := range loaded {
		result[id] = b
	}
	c.storeMany(ctx, loaded)
	return result, nil
}

// List 不缓存,直接查询
func (c *BookCache) List(ctx context.Context, filter book.Filter) ([]*book.Book, int64, error) {
	return c.next.List(ctx, filter)
}

func (c *BookCache) store(ctx context.Context, b *book.Book) {
	data, err := json.Marshal(b)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, bookKey(b.ID), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Uint("book_id", b.ID).Msg("写入图书缓存失败")
	}
}

// storeMany 使用Pipeline一次往返写入
func (c *BookCache) storeMany(ctx context.Context, books map[uint]*book.Book) {
	if len(books) == 0 {
		return
	}
	pipe := c.client.Pipeline()
	for id, b := range books {
		data, err := json.Marshal(b)
		if err != nil {
			continue
		}
		pipe.Set(ctx, bookKey(id), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Int("count", len(books)).Msg("批量写入图书缓存失败")
	}
}
