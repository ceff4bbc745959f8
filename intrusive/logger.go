package intrusive

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/refkit/errors"
)

var (
	logger     atomic.Pointer[zap.Logger]
	loggerOnce sync.Once
)

// Logger returns the intrusive package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		logger.CompareAndSwap(nil, zap.NewNop())
	})
	return logger.Load()
}

// SetLogger configures the intrusive package's logger.
// Invariant violations are logged at Fatal level, so the logger's fatal hook
// decides how the process terminates.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// bail reports a violated ownership invariant and terminates.
// Recovery is not meaningful once the counting protocol has been broken.
func bail(err *errors.Error, fields ...zap.Field) {
	fields = append(fields, zap.String("phase", string(err.Phase)), zap.Error(err))
	Logger().Fatal(err.Detail, fields...)
	// unreachable unless a custom fatal hook returns
	panic(err)
}
