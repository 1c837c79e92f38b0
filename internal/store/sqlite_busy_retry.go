package store

import (
	"context"
	"strings"
	"time"
)

const (
	busyBackoffStart = 30 * time.Millisecond
	busyBackoffMax   = 500 * time.Millisecond
)

func isSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	// 统一用字符串判断，避免引入 driver 具体错误类型耦合。
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlite_busy") || strings.Contains(msg, "database is locked")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed: files.cid")
}

// withBusyRetry 在 SQLITE_BUSY 时按指数退避重试读操作，等待受 ctx 约束
func withBusyRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	backoff := busyBackoffStart
	for {
		v, err := fn()
		if err == nil || !isSQLiteBusyError(err) {
			return v, err
		}

		// 若上层已取消/超时，直接返回最后一次的 busy 错误，便于诊断。
		if ctx.Err() != nil {
			return v, err
		}

		wait := min(backoff, busyBackoffMax)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return v, err
		case <-timer.C:
		}
		backoff *= 2
	}
}
