// Package kvtest provides kv.Store doubles for tests.
package kvtest

import (
	"context"
	"sync"

	"github.com/colonyops/chime/internal/core/kv"
)

// Faulty wraps a kv.Store and fails reads or writes on demand.
type Faulty struct {
	kv.Store

	mu     sync.Mutex
	getErr error
	setErr error
	sets   int
}

var _ kv.Store = (*Faulty)(nil)

// NewFaulty wraps an in-memory store.
func NewFaulty() *Faulty {
	return &Faulty{Store: kv.NewMemory()}
}

// FailGet makes every Get return err. A nil err restores normal reads.
func (f *Faulty) FailGet(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

// FailSet makes every Set return err. A nil err restores normal writes.
func (f *Faulty) FailSet(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setErr = err
}

func (f *Faulty) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	err := f.getErr
	f.mu.Unlock()
	if err != nil {
		return "", false, err
	}
	return f.Store.Get(ctx, key)
}

func (f *Faulty) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	err := f.setErr
	f.sets++
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Set(ctx, key, value)
}

// Sets returns how many writes were attempted, failed or not.
func (f *Faulty) Sets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}
