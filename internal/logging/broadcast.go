package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogEntry 推送给前端的日志条目
type LogEntry struct {
	ID      string            `json:"id"`
	Time    time.Time         `json:"time"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// BroadcastHandler 包装下游处理器：保留最近 N 条日志，并转发给 EventEmitter
type BroadcastHandler struct {
	next    slog.Handler
	Emitter *EventEmitter
	ring    *ring
	attrs   []slog.Attr
}

// NewBroadcastHandler 创建广播处理器，capacity 为内存中保留的条数
func NewBroadcastHandler(next slog.Handler, capacity int) *BroadcastHandler {
	return &BroadcastHandler{
		next:    next,
		Emitter: NewEventEmitter(),
		ring:    newRing(capacity),
	}
}

func (h *BroadcastHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *BroadcastHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := LogEntry{
		ID:      uuid.NewString(),
		Time:    r.Time,
		Level:   levelName(r.Level),
		Message: r.Message,
	}
	if n := r.NumAttrs() + len(h.attrs); n > 0 {
		entry.Attrs = make(map[string]string, n)
		for _, a := range h.attrs {
			entry.Attrs[a.Key] = a.Value.String()
		}
		r.Attrs(func(a slog.Attr) bool {
			entry.Attrs[a.Key] = a.Value.String()
			return true
		})
	}

	h.ring.push(entry)
	h.Emitter.Emit(entry)

	return h.next.Handle(ctx, r)
}

func (h *BroadcastHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BroadcastHandler{
		next:    h.next.WithAttrs(attrs),
		Emitter: h.Emitter,
		ring:    h.ring,
		attrs:   append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *BroadcastHandler) WithGroup(name string) slog.Handler {
	return &BroadcastHandler{
		next:    h.next.WithGroup(name),
		Emitter: h.Emitter,
		ring:    h.ring,
		attrs:   h.attrs,
	}
}

// Recent 返回最近 limit 条日志（按时间正序）
func (h *BroadcastHandler) Recent(limit int) []LogEntry {
	return h.ring.last(limit)
}

type ring struct {
	mu    sync.Mutex
	buf   []LogEntry
	next  int
	count int
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = 1000
	}
	return &ring{buf: make([]LogEntry, capacity)}
}

func (r *ring) push(e LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = e
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *ring) last(limit int) []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > r.count {
		limit = r.count
	}
	out := make([]LogEntry, 0, limit)
	start := (r.next - limit + len(r.buf)) % len(r.buf)
	for i := 0; i < limit; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}
