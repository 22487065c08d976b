package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOutput configures a rotated JSON log file.
type FileOutput struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// WithFile tees l into a rotated JSON file at the level of l. With an empty
// path it returns l unchanged. The returned closer releases the file.
func WithFile(l *zap.Logger, out FileOutput) (*zap.Logger, io.Closer) {
	if out.Path == "" {
		return l, io.NopCloser(nil)
	}

	rotator := &lumberjack.Logger{
		Filename:   out.Path,
		MaxSize:    out.MaxSizeMB,
		MaxBackups: out.MaxBackups,
		MaxAge:     out.MaxAgeDays,
		Compress:   out.Compress,
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	tee := l.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(rotator),
			zapcore.LevelOf(core),
		)
		return zapcore.NewTee(core, fileCore)
	}))
	return tee, rotator
}
