// Package atomlog provides the structured, leveled logging of root-cell
// lifecycle events every complete module of this shape carries, built on
// go.uber.org/zap. deroproject-graviton only ever left commented-out
// fmt.Printf debug lines at its commit/version-swap call sites
// (tree.go); atomlog turns those into real, always-on structured log
// lines without losing the "log at the point of state change" shape.
package atomlog

import (
	"go.uber.org/zap"

	"github.com/conjurernix/atomdb/hash"
)

// Logger wraps a *zap.Logger with the handful of root-cell events
// package cell emits. A nil *Logger is valid and logs nothing, so
// callers that never configured one pay no cost.
type Logger struct {
	z *zap.Logger
}

// New returns a production-configured (JSON, info-level) logger.
func New() (*Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Logger{z: z}, nil
}

// Nop returns a logger that discards everything, useful as a default
// and in tests.
func Nop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// Reset logs a cell's root hash being replaced unconditionally.
func (l *Logger) Reset(newHash hash.Hash) {
	if l == nil {
		return
	}
	l.z.Info("atomdb: root reset", zap.String("new_hash", string(newHash)))
}

// Swap logs a successful CAS transition of a cell's root hash.
func (l *Logger) Swap(oldHash, newHash hash.Hash) {
	if l == nil {
		return
	}
	l.z.Info("atomdb: root swap", zap.String("old_hash", string(oldHash)), zap.String("new_hash", string(newHash)))
}

// SwapRetry logs a lost CAS race, before Swap's loop recomputes fn
// against the value another writer just installed.
func (l *Logger) SwapRetry(attempt int) {
	if l == nil {
		return
	}
	l.z.Debug("atomdb: swap lost CAS race, retrying", zap.Int("attempt", attempt))
}

// CompareAndSet logs the outcome of a compare-and-set attempt.
func (l *Logger) CompareAndSet(ok bool) {
	if l == nil {
		return
	}
	l.z.Info("atomdb: compare-and-set", zap.Bool("applied", ok))
}

// Error logs a failure from any cell operation.
func (l *Logger) Error(op string, err error) {
	if l == nil {
		return
	}
	l.z.Error("atomdb: operation failed", zap.String("op", op), zap.Error(err))
}

// Sync flushes any buffered log entries; callers should defer it after
// New.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.z.Sync()
}
