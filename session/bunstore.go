package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// sessionRow is the persisted shape of a Record.
type sessionRow struct {
	bun.BaseModel `bun:"table:sessions,alias:sess"`
	ID            string    `bun:"id,pk"`
	UserID        *int64    `bun:"user_id"`
	Data          []byte    `bun:"data"`
	ExpiresAt     time.Time `bun:"expires_at,notnull"`
}

// BunStore keeps sessions in the relational store so they survive a
// process restart.
type BunStore struct {
	db *bun.DB
}

var _ Store = (*BunStore)(nil)

// NewBunStore returns a store backed by db. Call CreateSchema once at
// startup before serving.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// CreateSchema creates the sessions table when missing.
func (b *BunStore) CreateSchema(ctx context.Context) error {
	_, err := b.db.NewCreateTable().
		Model((*sessionRow)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (b *BunStore) Get(ctx context.Context, id string) (*Record, error) {
	row := new(sessionRow)
	err := b.db.NewSelect().
		Model(row).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if time.Now().After(row.ExpiresAt) {
		_, _ = b.db.NewDelete().
			Model((*sessionRow)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return nil, ErrNotFound
	}

	rec := &Record{ID: row.ID, UserID: row.UserID, ExpiresAt: row.ExpiresAt}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &rec.Values); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func (b *BunStore) Put(ctx context.Context, rec *Record) error {
	var data []byte
	if len(rec.Values) > 0 {
		var err error
		if data, err = json.Marshal(rec.Values); err != nil {
			return err
		}
	}

	row := &sessionRow{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Data:      data,
		ExpiresAt: rec.ExpiresAt,
	}

	_, err := b.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Set("data = EXCLUDED.data").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(ctx)
	return err
}

func (b *BunStore) Remove(ctx context.Context, id string) error {
	_, err := b.db.NewDelete().
		Model((*sessionRow)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (b *BunStore) Renew(ctx context.Context, id string, expiresAt time.Time) error {
	res, err := b.db.NewUpdate().
		Model((*sessionRow)(nil)).
		Set("expires_at = ?", expiresAt).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeExpired removes every expired session row.
func (b *BunStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := b.db.NewDelete().
		Model((*sessionRow)(nil)).
		Where("expires_at < ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
