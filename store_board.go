package homepage

import (
	"context"

	"github.com/uptrace/bun"
)

// LoadBoard returns the persisted guestbook messages in insertion order.
func (s *AccountStore) LoadBoard(ctx context.Context) ([]GuestbookMessage, error) {
	var messages []GuestbookMessage
	err := s.db.NewSelect().
		Model(&messages).
		OrderExpr("rowid ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// SaveBoard replaces the persisted guestbook with the given messages.
// Called once at shutdown; delete and bulk insert share one transaction.
func (s *AccountStore) SaveBoard(ctx context.Context, messages []GuestbookMessage) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*GuestbookMessage)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return err
		}

		if len(messages) == 0 {
			return nil
		}

		_, err := tx.NewInsert().Model(&messages).Exec(ctx)
		return err
	})
}

// Visitors returns the stored visitor count.
func (s *AccountStore) Visitors(ctx context.Context) (int64, error) {
	counters := new(SiteCounters)
	err := s.db.NewSelect().
		Model(counters).
		Where("?TableAlias.id = 0").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return 0, err
	}
	return counters.Visitors, nil
}

// SetVisitors stores the visitor count. Called once at shutdown.
func (s *AccountStore) SetVisitors(ctx context.Context, visitors int64) error {
	_, err := s.db.NewUpdate().
		Model((*SiteCounters)(nil)).
		Set("visitors = ?", visitors).
		Where("id = 0").
		Exec(ctx)
	return err
}
