package kv

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/scheduled-post-manager/internal/repositories"
	"github.com/orgball2608/scheduled-post-manager/pkg/logger"
)

const tableName = "kv_entries"

// Pgx stores values in the kv_entries table, one row per key.
type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
	now    func() time.Time
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("PostgresKV"),
		now:    time.Now,
	}
}

var _ Repository = (*Pgx)(nil)

func selectQuery(key string) (string, []interface{}, error) {
	return repositories.SqBuilder.
		Select("value").
		From(tableName).
		Where(sq.Eq{"key": key}).
		ToSql()
}

func upsertQuery(key string, value []byte, updatedAt time.Time) (string, []interface{}, error) {
	return repositories.SqBuilder.
		Insert(tableName).
		Columns("key", "value", "updated_at").
		Values(key, value, updatedAt).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
}

func (p *Pgx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	query, args, err := selectQuery(key)
	if err != nil {
		return nil, false, repositories.ErrBadQuery
	}

	var value []byte
	err = p.pg.QueryRow(ctx, query, args...).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (p *Pgx) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	query, args, err := upsertQuery(key, value, p.now())
	if err != nil {
		return repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	p.logger.Debug("Value stored", "key", key, "bytes", len(value), "rows", tag.RowsAffected())
	return nil
}
