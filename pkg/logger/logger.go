package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Loggers menyimpan logger per kebutuhan (error, audit, request, security, system).
type Loggers struct {
	Error    *zap.Logger
	Audit    *zap.Logger
	Request  *zap.Logger
	Security *zap.Logger
	System   *zap.Logger
}

func encoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return encoderCfg
}

func newLogger(ws zapcore.WriteSyncer, name string, level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		ws,
		level,
	)
	return zap.New(core).With(zap.String("logger", name))
}

func fileSyncer(dir, name string) (zapcore.WriteSyncer, error) {
	file, err := os.OpenFile(filepath.Join(dir, name+".log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(file), nil
}

// New builds the loggers. With an empty dir everything goes to stdout,
// otherwise each logger writes to <dir>/<name>.log.
func New(dir string) (*Loggers, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log dir: %w", err)
		}
	}

	build := func(name string, level zapcore.Level) (*zap.Logger, error) {
		if dir == "" {
			return newLogger(zapcore.Lock(os.Stdout), name, level), nil
		}
		ws, err := fileSyncer(dir, name)
		if err != nil {
			return nil, fmt.Errorf("cannot create %s logger: %w", name, err)
		}
		return newLogger(ws, name, level), nil
	}

	var (
		l   Loggers
		err error
	)
	if l.Error, err = build("errors", zapcore.ErrorLevel); err != nil {
		return nil, err
	}
	if l.Audit, err = build("audit", zapcore.InfoLevel); err != nil {
		return nil, err
	}
	if l.Request, err = build("request", zapcore.InfoLevel); err != nil {
		return nil, err
	}
	if l.Security, err = build("security", zapcore.WarnLevel); err != nil {
		return nil, err
	}
	if l.System, err = build("system", zapcore.InfoLevel); err != nil {
		return nil, err
	}
	return &l, nil
}

// NewNop returns loggers that discard everything.
func NewNop() *Loggers {
	nop := zap.NewNop()
	return &Loggers{Error: nop, Audit: nop, Request: nop, Security: nop, System: nop}
}

func (l *Loggers) Sync() {
	_ = l.Error.Sync()
	_ = l.Audit.Sync()
	_ = l.Request.Sync()
	_ = l.Security.Sync()
	_ = l.System.Sync()
}
