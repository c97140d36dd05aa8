package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level        string
	Development  bool
	LogstashAddr string
	Service      string
}

// New builds the process logger. Entries go to stdout and, when LogstashAddr
// is set, to Logstash as JSON lines. The returned func flushes and closes both.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if strings.TrimSpace(opts.Level) != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var stdoutEncoder zapcore.Encoder
	if opts.Development {
		devCfg := zap.NewDevelopmentEncoderConfig()
		devCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		stdoutEncoder = zapcore.NewConsoleEncoder(devCfg)
	} else {
		stdoutEncoder = zapcore.NewJSONEncoder(encoderCfg)
	}
	cores := []zapcore.Core{
		zapcore.NewCore(stdoutEncoder, zapcore.Lock(os.Stdout), level),
	}

	var logstash *LogstashWriter
	if addr := strings.TrimSpace(opts.LogstashAddr); addr != "" {
		w, err := NewLogstashWriter(addr)
		if err != nil {
			return nil, nil, err
		}
		logstash = w
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), w, level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	if opts.Service != "" {
		logger = logger.With(zap.String("service", opts.Service))
	}

	cleanup := func() {
		_ = logger.Sync()
		if logstash != nil {
			_ = logstash.Close()
		}
	}
	return logger, cleanup, nil
}
