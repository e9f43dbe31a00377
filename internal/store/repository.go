package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"chairline/backend/internal/metrics"
)

// Substrate holds the encoded contents of named logical stores. Read returns
// nil data and a nil error when the store does not exist yet. Write replaces
// the whole store.
type Substrate interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

type Options struct {
	Logger *slog.Logger
	// StrictWrites surfaces write faults as ErrPersistence instead of logging
	// and dropping them.
	StrictWrites bool
}

// Repository loads and saves a whole collection of T as one JSON document.
// Every save rewrites the complete collection.
type Repository[T any] struct {
	mu     sync.Mutex
	name   string
	sub    Substrate
	log    *slog.Logger
	strict bool
}

func NewRepository[T any](sub Substrate, name string, opts Options) *Repository[T] {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Repository[T]{
		name:   name,
		sub:    sub,
		log:    log.With(slog.String("component", "store"), slog.String("store", name)),
		strict: opts.StrictWrites,
	}
}

func (r *Repository[T]) Name() string {
	return r.name
}

// LoadAll never fails: a missing, empty or unreadable store yields an empty
// slice and the fault is logged.
func (r *Repository[T]) LoadAll(ctx context.Context) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.sub.Read(ctx, r.name)
	if err != nil {
		r.log.Error("store read failed; treating as empty", slog.Any("err", err))
		metrics.RecordStoreFault(r.name, "read")
		return []T{}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		r.log.Error("store contents corrupt; treating as empty", slog.Any("err", err))
		metrics.RecordStoreFault(r.name, "decode")
		return []T{}
	}
	if items == nil {
		items = []T{}
	}

	r.log.Debug("store loaded", slog.Int("count", len(items)))
	return items
}

func (r *Repository[T]) SaveAll(ctx context.Context, items []T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if items == nil {
		items = []T{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return r.writeFault("encode", err)
	}
	data = append(data, '\n')

	if err := r.sub.Write(ctx, r.name, data); err != nil {
		return r.writeFault("write", err)
	}

	r.log.Debug("store saved", slog.Int("count", len(items)))
	return nil
}

func (r *Repository[T]) writeFault(op string, err error) error {
	metrics.RecordStoreFault(r.name, op)
	if r.strict {
		r.log.Error("store save failed", slog.String("op", op), slog.Any("err", err))
		return fmt.Errorf("%w: %s %s: %v", ErrPersistence, op, r.name, err)
	}
	r.log.Error("store save failed; change kept in memory only", slog.String("op", op), slog.Any("err", err))
	return nil
}
