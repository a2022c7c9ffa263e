package kv

import (
	"context"

	memkv "github.com/colonyops/chime/pkg/kv"
)

// Memory is a Store held entirely in process memory.
type Memory struct {
	data *memkv.Store[string, string]
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: memkv.New[string, string]()}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.data.Get(key)
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.data.Set(key, value)
	return nil
}

// Dump returns a copy of every stored key and value.
func (m *Memory) Dump() map[string]string {
	return m.data.Snapshot()
}
