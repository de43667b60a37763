// Package logger builds the zap-backed logr.Logger used by the CLI and hands
// it to library code through context.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oakwood-commons/mentionx/pkg/settings"
)

type loggerContextKey struct{}

const (
	CommitKey    = "commit"
	VersionKey   = "version"
	GoVersionKey = "go_version"
	TimeStampKey = "timestamp"
	MessageKey   = "message"
	CommandKey   = "command"
)

// Options configures New.
type Options struct {
	// Level is the zap level; negative values enable logr V-levels
	// (-1 shows V(1), -2 shows V(2)).
	Level int8
	// Console selects the human-readable encoder instead of JSON.
	Console bool
	// Output defaults to standard error.
	Output io.Writer
}

var (
	once      sync.Once
	globalZap *zap.Logger
	globalLog logr.Logger = logr.Discard()
)

// New builds a logger from opts. The returned *zap.Logger is only needed for
// Sync.
func New(opts Options) (logr.Logger, *zap.Logger) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	var encoder zapcore.Encoder
	if opts.Console {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	goVersion := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(out)), zap.NewAtomicLevelAt(zapcore.Level(opts.Level))).
		With([]zapcore.Field{
			zap.String(CommitKey, settings.VersionInformation.Commit),
			zap.String(VersionKey, settings.VersionInformation.BuildVersion),
			zap.String(GoVersionKey, goVersion),
		})
	z := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	return zapr.NewLogger(z), z
}

// Get initializes the global logger on first use; later calls return it
// unchanged whatever their level.
func Get(level int8) logr.Logger {
	once.Do(func() {
		globalLog, globalZap = New(Options{Level: level})
	})
	return globalLog
}

// Global returns the global logger, or a no-op logger before Get.
func Global() logr.Logger {
	return globalLog
}

// WithLogger attaches log to ctx.
func WithLogger(ctx context.Context, log logr.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the logger in ctx, falling back to the global one.
func FromContext(ctx context.Context) logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(logr.Logger); ok {
		return log
	}
	return globalLog
}

// Sync flushes buffered entries. Errors from syncing terminals and pipes are
// ignored.
func Sync() {
	if globalZap == nil {
		return
	}
	if err := globalZap.Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "WARNING: failed to sync logger: %v\n", err)
	}
}

// isIgnorableSyncError matches what stderr returns when it is a TTY or pipe.
// Windows wraps ERROR_INVALID_HANDLE in *os.PathError, hence the string check.
func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}
