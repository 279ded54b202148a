package logger

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"researchhub/pkg/config"
	"researchhub/pkg/trace"
)

// New 按配置构建 logger：默认 info 级别 JSON 输出，format=console 时用开发格式
func New(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "console") {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

// NewNamed 创建带服务名字段的 logger；配置无效时退回默认配置并记录警告
func NewNamed(service string, cfg config.LogConfig) *zap.Logger {
	l, err := New(cfg)
	if err != nil {
		l = Default(service)
		l.Warn("Invalid log config, using defaults", zap.String("level", cfg.Level), zap.Error(err))
		return l
	}
	return l.With(zap.String("service", service))
}

// Default 在配置加载之前使用
func Default(service string) *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l.With(zap.String("service", service))
}

// WithTrace 从 context 中提取 trace_id 并添加到 logger
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if traceID := trace.FromContext(ctx); traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}
