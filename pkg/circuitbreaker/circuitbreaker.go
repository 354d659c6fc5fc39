// Package circuitbreaker 熔断器
//
// 用于保护尽力而为的外部调用(目前是结算事件发布):
// 下游连续失败后快速失败,不再让每次结算都等待超时;冷却时间过后放行少量探测请求
//
//	Closed ──连续失败达到阈值──> Open ──冷却时间到──> HalfOpen ──探测成功──> Closed
//	                                 ^                      │
//	                                 └──────探测失败────────┘
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen 熔断器打开,请求未执行
var ErrOpen = errors.New("circuit breaker is open")

// Settings 熔断器配置,零值字段使用默认值
type Settings struct {
	FailureThreshold uint32        // 连续失败多少次后打开,默认5
	Cooldown         time.Duration // 打开状态持续时间,默认30s
	HalfOpenRequests uint32        // 半开状态允许的探测请求数,默认1

	// OnStateChange 状态变化回调(日志、指标),在锁内调用,不要阻塞
	OnStateChange func(name string, from, to State)
}

// Breaker 熔断器,并发安全
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu               sync.Mutex
	state            State
	failures         uint32 // 关闭状态下的连续失败数
	halfOpenInFlight uint32
	openedAt         time.Time
}

// New 创建熔断器
func New(name string, settings Settings) *Breaker {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.HalfOpenRequests == 0 {
		settings.HalfOpenRequests = 1
	}
	return &Breaker{name: name, settings: settings, now: time.Now}
}

// Execute 熔断器允许时执行fn,并按fn的结果更新状态
// 熔断器打开时直接返回ErrOpen
func (b *Breaker) Execute(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	b.after(err == nil)
	return err
}

// State 当前状态(冷却时间已过的Open报告为HalfOpen)
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if b.halfOpenInFlight >= b.settings.HalfOpenRequests {
			return ErrOpen
		}
		b.halfOpenInFlight++
	}
	return nil
}

func (b *Breaker) after(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.settings.FailureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		if success {
			b.transition(StateClosed)
		} else {
			b.transition(StateOpen)
		}
	}
}

// current 调用方持有锁
func (b *Breaker) current() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.Cooldown {
		b.transition(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}

	b.state = to
	b.failures = 0
	b.halfOpenInFlight = 0
	if to == StateOpen {
		b.openedAt = b.now()
	}

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
