package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
)

// Op names a write operation
type Op string

const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
)

// WriteResult describes the outcome of one best-effort write
type WriteResult struct {
	Key string
	Op  Op
	Err error
	At  time.Time
}

// OK reports whether the write reached the store
func (r WriteResult) OK() bool { return r.Err == nil }

// Writer persists client state without letting storage failures reach
// callers. Failures are logged and handed to the observers.
type Writer struct {
	store Store
	log   *logger.Logger

	mu        sync.RWMutex
	observers []func(WriteResult)
}

func NewWriter(store Store, log *logger.Logger) *Writer {
	return &Writer{store: store, log: log}
}

// Store returns the underlying store for reads
func (w *Writer) Store() Store { return w.store }

// Observe registers fn to receive every write result
func (w *Writer) Observe(fn func(WriteResult)) {
	w.mu.Lock()
	w.observers = append(w.observers, fn)
	w.mu.Unlock()
}

func (w *Writer) SetString(ctx context.Context, key, value string) WriteResult {
	return w.finish(WriteResult{Key: key, Op: OpSet, Err: w.store.Set(ctx, key, value)})
}

func (w *Writer) SetJSON(ctx context.Context, key string, v interface{}) WriteResult {
	data, err := json.Marshal(v)
	if err != nil {
		return w.finish(WriteResult{Key: key, Op: OpSet, Err: fmt.Errorf("failed to encode %s: %w", key, err)})
	}
	return w.SetString(ctx, key, string(data))
}

func (w *Writer) Delete(ctx context.Context, key string) WriteResult {
	return w.finish(WriteResult{Key: key, Op: OpDelete, Err: w.store.Delete(ctx, key)})
}

func (w *Writer) finish(res WriteResult) WriteResult {
	res.At = time.Now().UTC()

	if res.Err != nil {
		w.log.Error("storage_write_failed", "Failed to persist client state", "", res.Err, map[string]interface{}{
			"key": res.Key,
			"op":  string(res.Op),
		})
	}

	w.mu.RLock()
	observers := w.observers
	w.mu.RUnlock()
	for _, fn := range observers {
		fn(res)
	}

	return res
}
