package store

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("key not found")
)

// KV is the persistent key-value store backing the catalog. Values are
// opaque strings; there is no transactionality beyond single-key Set.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Mutator serializes read-modify-write cycles per key. Every collection
// mutation rewrites its whole stored value, so two interleaved mutations of
// the same key would lose one of the updates; routing them through Update
// makes each cycle atomic with respect to the others.
type Mutator struct {
	kv KV

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMutator creates a Mutator on top of kv.
func NewMutator(kv KV) *Mutator {
	return &Mutator{
		kv:    kv,
		locks: make(map[string]*sync.Mutex),
	}
}

func (m *Mutator) lockFor(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// Update runs fn with the current value of key (exists reports whether the
// key was present) and stores the value fn returns. An error from fn aborts
// the cycle without writing. Cycles for the same key never interleave.
func (m *Mutator) Update(ctx context.Context, key string, fn func(current string, exists bool) (string, error)) error {
	l := m.lockFor(key)
	l.Lock()
	defer l.Unlock()

	current, err := m.kv.Get(ctx, key)
	exists := true
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		exists = false
		current = ""
	}

	next, err := fn(current, exists)
	if err != nil {
		return err
	}

	return m.kv.Set(ctx, key, next)
}
