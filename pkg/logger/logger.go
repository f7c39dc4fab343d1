package logger

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Log struct {
	LogLevel zapcore.Level `yaml:"level" envconfig:"LOG_LEVEL" default:"info"`
	// Sink is a file path, empty means stdout.
	Sink string `yaml:"sink" envconfig:"LOG_SINK"`
}

func NewLogger(cfg Log, name string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	ws, sinkErr := newSink(cfg.Sink)

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, zap.NewAtomicLevelAt(cfg.LogLevel))
	log := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.DPanicLevel)).Named(name)
	if sinkErr != nil {
		log.Warn("log sink is unavailable, writing to stdout", zap.String("sink", cfg.Sink), zap.Error(sinkErr))
	}
	return log
}

// newSink opens the file sink. On failure it still returns stdout together
// with the error.
func newSink(path string) (zapcore.WriteSyncer, error) {
	stdout := zapcore.Lock(os.Stdout)
	if path == "" {
		return stdout, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return stdout, errors.Wrap(err, "open log sink")
	}
	return zapcore.AddSync(f), nil
}
