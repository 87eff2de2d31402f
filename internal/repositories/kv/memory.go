package kv

import (
	"context"
	"slices"

	"github.com/puzpuzpuz/xsync/v3"
)

// Memory keeps values in process memory. Nothing survives a restart.
type Memory struct {
	data *xsync.MapOf[string, []byte]
}

func NewMemory() *Memory {
	return &Memory{
		data: xsync.NewMapOf[string, []byte](),
	}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	v, ok := m.data.Load(key)
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.data.Store(key, slices.Clone(value))
	return nil
}
