package kv

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/cockroachdb/pebble"
	"github.com/orgball2608/scheduled-post-manager/pkg/logger"
)

// Pebble stores values in an embedded pebble database on local disk.
type Pebble struct {
	db     *pebble.DB
	logger logger.Logger
}

// OpenPebble opens (creating if needed) the database at path. opts may be nil.
func OpenPebble(path string, opts *pebble.Options, log logger.Logger) (*Pebble, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database: %w", err)
	}
	return &Pebble{
		db:     db,
		logger: log.WithComponent("PebbleKV"),
	}, nil
}

var _ Repository = (*Pebble)(nil)

func (p *Pebble) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	v, closer, err := p.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			p.logger.Error("Failed to release pebble value", "key", key, "error", err)
		}
	}()
	return slices.Clone(v), true, nil
}

// Set is synced to disk before returning.
func (p *Pebble) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	return p.db.Set([]byte(key), value, pebble.Sync)
}

func (p *Pebble) Close() error {
	return p.db.Close()
}
