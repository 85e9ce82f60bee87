package logger

import (
	"sort"
	"time"

	"github.com/suchimauz/clinic-availability-engine/internal/config"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/out"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const unknownModule = "unknown"

type ZapLogger struct {
	base          *zap.Logger
	defaultFields out.LogFields
	module        string
}

var _ out.LoggerPort = (*ZapLogger)(nil)

// NewZapLogger: JSON в проде, цветной консольный вывод локально.
// Время пишется в таймзоне приложения.
func NewZapLogger(cfg *config.Config) (*ZapLogger, error) {
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		loc = time.UTC
	}

	var zapCfg zap.Config
	if cfg.IsLocal() {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapCfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format("2006-01-02 15:04:05.000"))
	}

	base, err := zapCfg.Build(zap.Fields(zap.String("version", cfg.App.Version)))
	if err != nil {
		return nil, err
	}

	return newZapLogger(base), nil
}

// NewNopLogger ничего не пишет, нужен в тестах и CLI-командах
func NewNopLogger() *ZapLogger {
	return newZapLogger(zap.NewNop())
}

func newZapLogger(base *zap.Logger) *ZapLogger {
	return &ZapLogger{
		base:          base,
		defaultFields: make(out.LogFields),
		module:        unknownModule,
	}
}

func (l *ZapLogger) WithFields(fields out.LogFields) out.LoggerPort {
	newLogger := &ZapLogger{
		base:          l.base,
		defaultFields: make(out.LogFields, len(l.defaultFields)+len(fields)),
		module:        l.module,
	}

	// Копируем существующие поля
	for k, v := range l.defaultFields {
		newLogger.defaultFields[k] = v
	}

	// Добавляем новые поля
	for k, v := range fields {
		newLogger.defaultFields[k] = v
	}

	return newLogger
}

func (l *ZapLogger) WithModule(module string) out.LoggerPort {
	return &ZapLogger{
		base:          l.base,
		defaultFields: l.defaultFields,
		module:        module,
	}
}

func (l *ZapLogger) Debug(event string, fields out.LogFields) {
	l.log(out.LogLevelDebug, event, fields)
}

func (l *ZapLogger) Info(event string, fields out.LogFields) {
	l.log(out.LogLevelInfo, event, fields)
}

func (l *ZapLogger) Warn(event string, fields out.LogFields) {
	l.log(out.LogLevelWarn, event, fields)
}

func (l *ZapLogger) Error(event string, fields out.LogFields) {
	l.log(out.LogLevelError, event, fields)
}

// Sync сбрасывает буферы zap, вызывается при остановке приложения
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}

func (l *ZapLogger) log(level out.LogLevel, event string, fields out.LogFields) {
	zapFields := l.zapFields(fields)

	switch level {
	case out.LogLevelDebug:
		l.base.Debug(event, zapFields...)
	case out.LogLevelInfo:
		l.base.Info(event, zapFields...)
	case out.LogLevelWarn:
		l.base.Warn(event, zapFields...)
	case out.LogLevelError:
		l.base.Error(event, zapFields...)
	}
}

// zapFields объединяет поля логгера и вызова, поля вызова важнее
func (l *ZapLogger) zapFields(fields out.LogFields) []zap.Field {
	merged := make(out.LogFields, len(l.defaultFields)+len(fields))
	for k, v := range l.defaultFields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	// Стабильный порядок полей в выводе
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]zap.Field, 0, len(keys)+1)
	result = append(result, zap.String("module", l.module))
	for _, k := range keys {
		result = append(result, zap.Any(k, merged[k]))
	}
	return result
}
