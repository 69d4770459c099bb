package homepage

import (
	"context"

	"github.com/uptrace/bun"
)

// CreateSchema creates every table the store uses. Safe to run on every
// startup; tables and the counter seed row are created only when missing.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		return err
	}

	tables := []struct {
		model any
		fks   []string
	}{
		{model: (*User)(nil)},
		{
			model: (*Permissions)(nil),
			fks:   []string{`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE ON UPDATE CASCADE`},
		},
		{model: (*RegistrationTicket)(nil)},
		{
			model: (*ShortLink)(nil),
			fks:   []string{`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE ON UPDATE CASCADE`},
		},
		{
			model: (*ShortLinkStat)(nil),
			fks:   []string{`("link_id") REFERENCES "short_links" ("id") ON DELETE CASCADE ON UPDATE CASCADE`},
		},
		{model: (*GuestbookMessage)(nil)},
		{model: (*SiteCounters)(nil)},
	}

	for _, t := range tables {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.fks {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return err
		}
	}

	_, err := db.NewInsert().
		Model(&SiteCounters{ID: 0, Visitors: 0}).
		Ignore().
		Exec(ctx)

	return err
}
