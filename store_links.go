package homepage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"io"

	"github.com/uptrace/bun"
)

const (
	generatedShortLength = 5
	shortAlphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// CreateShortLink stores a new short link for userID. An empty short
// requests a generated 5-character alphanumeric code; a caller-chosen
// code that already exists is a definitive ErrShortTaken, never retried.
func (s *AccountStore) CreateShortLink(ctx context.Context, userID int64, url, short string) (string, error) {
	var code string

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*User)(nil)).
			Where("?TableAlias.id = ?", userID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}

		if short != "" {
			_, err := tx.NewInsert().
				Model(&ShortLink{UserID: userID, URL: url, Short: short}).
				Exec(ctx)
			if err != nil {
				if IsUniqueViolation(err) {
					return ErrShortTaken
				}
				return err
			}
			code = short
			return nil
		}

		for {
			candidate, err := randomShortCode()
			if err != nil {
				return err
			}

			_, err = tx.NewInsert().
				Model(&ShortLink{UserID: userID, URL: url, Short: candidate}).
				Exec(ctx)
			if err != nil {
				if IsUniqueViolation(err) {
					continue
				}
				return err
			}

			code = candidate
			return nil
		}
	})
	if err != nil {
		return "", err
	}

	return code, nil
}

// GetShortLink resolves a code to its target URL and logs the hit. The
// lookup and the stat insert share one transaction: a resolution that is
// about to redirect is logged exactly once, never zero or twice.
func (s *AccountStore) GetShortLink(ctx context.Context, code, peerAddr string) (string, error) {
	var url string

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		link := new(ShortLink)
		err := tx.NewSelect().
			Model(link).
			Where("?TableAlias.short = ?", code).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrLinkNotFound
			}
			return err
		}

		_, err = tx.NewInsert().
			Model(&ShortLinkStat{LinkID: link.ID, PeerAddr: peerAddr}).
			Exec(ctx)
		if err != nil {
			return err
		}

		url = link.URL
		return nil
	})
	if err != nil {
		return "", err
	}

	return url, nil
}

// DeleteIfOwnsShortLink removes a link only when both the code and the
// owner match the same row. Ownership is enforced in the query itself,
// not by a separate pre-check.
func (s *AccountStore) DeleteIfOwnsShortLink(ctx context.Context, userID int64, code string) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*ShortLink)(nil)).
		Where("user_id = ?", userID).
		Where("short = ?", code).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListShortLinks returns every link owned by userID, oldest first.
func (s *AccountStore) ListShortLinks(ctx context.Context, userID int64) ([]ShortLink, error) {
	var links []ShortLink
	err := s.db.NewSelect().
		Model(&links).
		Where("?TableAlias.user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return links, nil
}

func randomShortCode() (string, error) {
	// bytes at or above this value would skew the modulo towards the
	// start of the alphabet; redraw them
	const limit = byte(len(shortAlphabet) * (256 / len(shortAlphabet)))

	code := make([]byte, 0, generatedShortLength)
	buf := make([]byte, generatedShortLength)
	for len(code) < generatedShortLength {
		if _, err := io.ReadFull(rand.Reader, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			code = append(code, shortAlphabet[int(b)%len(shortAlphabet)])
			if len(code) == generatedShortLength {
				break
			}
		}
	}
	return string(code), nil
}
