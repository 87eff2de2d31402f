// Package kv stores opaque byte blobs under string keys. It is the durable
// mirror behind the post store; backends only need whole-value get and set.
package kv

import (
	"context"
	"errors"
)

var ErrEmptyKey = errors.New("kv key must not be empty")

//go:generate go run go.uber.org/mock/mockgen -source=kv.go -destination=mocks/mock.go
type Repository interface {
	// Get returns the value stored under key. found is false when the key was never written.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}
