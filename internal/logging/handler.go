package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleLimit 控制台单条日志的最大长度
const consoleLimit = 500

// ParseLevel 解析配置中的日志级别，未知值按 info 处理
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// SimpleHandler 简化的日志处理器（控制台 + 可选文件）
type SimpleHandler struct {
	level   *slog.LevelVar
	console io.Writer
	file    io.WriteCloser
	mu      *sync.Mutex
	attrs   []slog.Attr
}

// NewSimpleHandler 创建处理器；file 可为 nil
func NewSimpleHandler(level *slog.LevelVar, console io.Writer, file io.WriteCloser) *SimpleHandler {
	if console == nil {
		console = os.Stdout
	}
	return &SimpleHandler{
		level:   level,
		console: console,
		file:    file,
		mu:      &sync.Mutex{},
	}
}

func (h *SimpleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *SimpleHandler) Handle(_ context.Context, r slog.Record) error {
	message := formatMessage(r, h.attrs)

	timestamp := r.Time.Format("2006-01-02 15:04:05.000")
	if r.Time.IsZero() {
		timestamp = time.Now().Format("2006-01-02 15:04:05.000")
	}
	prefix := fmt.Sprintf("[%s] [PID:%d] [GID:%d] [%s] ", timestamp, os.Getpid(), goroutineID(), levelName(r.Level))

	h.mu.Lock()
	defer h.mu.Unlock()

	// 文件输出不截断
	if h.file != nil {
		_, _ = io.WriteString(h.file, prefix+message+"\n")
	}

	display := message
	if len(display) > consoleLimit {
		display = display[:consoleLimit] + "... (显示截断)"
	}
	_, err := io.WriteString(h.console, prefix+display+"\n")
	return err
}

func (h *SimpleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *SimpleHandler) WithGroup(name string) slog.Handler {
	return h
}

// Close 关闭文件输出
func (h *SimpleHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file != nil {
		err := h.file.Close()
		h.file = nil
		return err
	}
	return nil
}

func formatMessage(r slog.Record, extra []slog.Attr) string {
	var attrs []string
	for _, a := range extra {
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value))
		return true
	})
	if len(attrs) == 0 {
		return r.Message
	}
	return r.Message + " " + strings.Join(attrs, " ")
}

func goroutineID() int {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	fields := strings.Fields(string(buf))
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return id
}
