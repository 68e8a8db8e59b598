package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger, set by Initialize.
var Log = zap.NewNop()

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// Initialize builds the logger for env ("production" gives JSON with ISO8601
// timestamps, anything else a development console encoder). Extra sinks such as
// a rotating file or the CloudWatch Logs writer receive JSON lines.
func Initialize(env string, sinks ...io.Writer) (*zap.Logger, error) {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
	}

	active := sinks[:0:0]
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}

	if len(active) == 0 {
		l, err := config.Build()
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
		Log = l
		return l, nil
	}

	level := zap.NewAtomicLevelAt(config.Level.Level())
	consoleEncoder := zapcore.NewConsoleEncoder(config.EncoderConfig)
	if env == "production" {
		consoleEncoder = zapcore.NewJSONEncoder(config.EncoderConfig)
	}
	cores := []zapcore.Core{zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level)}

	jsonConfig := config.EncoderConfig
	jsonConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	for _, s := range active {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonConfig), zapcore.AddSync(s), level))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return Log, nil
}

// NewFileSink returns a size-rotated log file.
func NewFileSink(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   true,
	}
}

// RequestFields returns the request id field for log lines emitted inside a handler.
func RequestFields(c *gin.Context) []zap.Field {
	if rid := c.GetString(RequestIDKey); rid != "" {
		return []zap.Field{zap.String(RequestIDKey, rid)}
	}
	return nil
}
