package kv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectQuery(t *testing.T) {
	query, args, err := selectQuery("scheduledPosts")
	require.NoError(t, err)
	assert.Equal(t, "SELECT value FROM kv_entries WHERE key = $1", query)
	assert.Equal(t, []interface{}{"scheduledPosts"}, args)
}

func TestUpsertQuery(t *testing.T) {
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	query, args, err := upsertQuery("scheduledPosts", []byte(`[]`), at)
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO kv_entries (key,value,updated_at) VALUES ($1,$2,$3) "+
			"ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at",
		query,
	)
	assert.Equal(t, []interface{}{"scheduledPosts", []byte(`[]`), at}, args)
}

func TestRedisPrefixesKeys(t *testing.T) {
	r, err := NewRedis("redis://localhost:6379/0", "post-scheduler/")
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "post-scheduler/scheduledPosts", r.key("scheduledPosts"))
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis("not a url", "")
	assert.Error(t, err)
}
