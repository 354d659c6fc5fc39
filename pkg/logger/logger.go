// Package logger 基于zerolog的结构化日志
//
// 初始化后通过zerolog/log包的全局Logger使用:
//
//	log.Info().Uint("user_id", userID).Str("transaction_id", id).Msg("结算完成")
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options 日志配置
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | 文件路径
	EnableCaller bool
}

// Setup 构建Logger并设置为全局log.Logger
// 输出到文件时返回的io.Closer需要在退出前关闭;输出到标准流时为nil
func Setup(opts Options) (io.Closer, error) {
	logger, closer, err := New(opts)
	if err != nil {
		return nil, err
	}
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = logger
	return closer, nil
}

// New 按配置构建Logger,不修改全局状态
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("无效的日志级别: %s", opts.Level)
		}
		level = parsed
	}

	var (
		out    io.Writer
		closer io.Closer
	)
	switch opts.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		out, closer = f, f
	}

	if opts.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if opts.EnableCaller {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), closer, nil
}
