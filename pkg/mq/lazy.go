package mq

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// DialFunc 建立一个新的发布者
type DialFunc func() (MessagePublisher, error)

// LazyPublisher 按需连接的发布者
// 启动时RabbitMQ不可用也能在之后恢复发布:没有连接时在Publish中重连,
// 发布失败后丢弃当前连接,下一次Publish重新建立
// 通常放在BreakerPublisher内部,连续重连失败时由熔断器快速失败
type LazyPublisher struct {
	mu      sync.Mutex
	dial    DialFunc
	current MessagePublisher
}

// NewLazyPublisher 创建按需连接的发布者,不会立即连接
func NewLazyPublisher(dial DialFunc) *LazyPublisher {
	return &LazyPublisher{dial: dial}
}

// Connect 尝试立即建立连接,已连接时不做任何事
func (p *LazyPublisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.connectLocked()
	return err
}

func (p *LazyPublisher) connectLocked() (MessagePublisher, error) {
	if p.current != nil {
		return p.current, nil
	}
	next, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.current = next
	return next, nil
}

// Publish 没有连接时先连接;发布失败时丢弃连接
func (p *LazyPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, err := p.connectLocked()
	if err != nil {
		return err
	}
	if err := next.Publish(ctx, routingKey, message); err != nil {
		if cerr := next.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("关闭失效的RabbitMQ连接失败")
		}
		p.current = nil
		return err
	}
	return nil
}

// Close 关闭当前连接
func (p *LazyPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil
	}
	err := p.current.Close()
	p.current = nil
	return err
}
