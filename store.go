package homepage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"io"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ticketBytes is the raw entropy of a registration ticket before base64.
const ticketBytes = 128

// AccountStore owns every read and write of identity, permission, ticket
// and short link data. Multi-statement invariants run inside a single
// transaction; nothing outside this type touches those rows.
type AccountStore struct {
	db     *bun.DB
	hasher *Hasher
	logger Logger
}

// NewAccountStore wires the store to its database and password hasher.
func NewAccountStore(db *bun.DB, hasher *Hasher) *AccountStore {
	return &AccountStore{
		db:     db,
		hasher: hasher,
		logger: defLogger{},
	}
}

// WithLogger replaces the default logger.
func (s *AccountStore) WithLogger(logger Logger) *AccountStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// DB exposes the underlying handle for schema bootstrap and tests.
func (s *AccountStore) DB() *bun.DB {
	return s.db
}

// VerifyUser checks a username/password pair and returns the account id.
// Every failure path collapses into ErrInvalidCredentials so the caller
// cannot tell an unknown name from a wrong password.
func (s *AccountStore) VerifyUser(ctx context.Context, username, password string) (int64, error) {
	user := new(User)
	err := s.db.NewSelect().
		Model(user).
		Where("?TableAlias.name = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInvalidCredentials
		}
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "user lookup failed")
	}

	if err := s.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return 0, ErrInvalidCredentials
		}
		// hashes in the DB are expected to be valid PHC strings
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "stored hash unreadable")
	}

	return user.ID, nil
}

// RegisterUser redeems a ticket and creates the account it reserved, in
// one transaction. The ticket is consumed exactly once: a failed user
// insert rolls the ticket delete back with it.
func (s *AccountStore) RegisterUser(ctx context.Context, ticket, password string) (int64, error) {
	var userID int64

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		reserved := new(RegistrationTicket)
		err := tx.NewSelect().
			Model(reserved).
			Where("?TableAlias.ticket = ?", ticket).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTicketNotFound
			}
			return err
		}

		res, err := tx.NewDelete().
			Model((*RegistrationTicket)(nil)).
			Where("id = ?", reserved.ID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// raced by a concurrent redemption of the same ticket
			return ErrTicketNotFound
		}

		hash, err := s.hasher.HashPassword(password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user := &User{Name: reserved.Name, PasswordHash: hash}
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			if IsUniqueViolation(err) {
				// name claimed between ticket issuance and redemption
				return ErrNameTaken
			}
			return err
		}

		userID = user.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("registered user id=%d", userID)
	return userID, nil
}

// GenerateRegistrationTicket reserves a name and returns its single-use
// ticket. The name must have neither a live ticket nor an account; the
// check and the insert share one transaction so no caller can race a
// second reservation in between.
func (s *AccountStore) GenerateRegistrationTicket(ctx context.Context, name string) (string, error) {
	var ticket string

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := tx.NewSelect().
			Model((*RegistrationTicket)(nil)).
			Where("?TableAlias.name = ?", name).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !taken {
			taken, err = tx.NewSelect().
				Model((*User)(nil)).
				Where("?TableAlias.name = ?", name).
				Exists(ctx)
			if err != nil {
				return err
			}
		}
		if taken {
			return ErrNameTaken
		}

		// A ticket collision is astronomically unlikely but handled:
		// redraw on a unique violation rather than assuming it away.
		for {
			raw := make([]byte, ticketBytes)
			if _, err := io.ReadFull(rand.Reader, raw); err != nil {
				return err
			}
			candidate := base64.StdEncoding.EncodeToString(raw)

			_, err := tx.NewInsert().
				Model(&RegistrationTicket{Name: name, Ticket: candidate}).
				Exec(ctx)
			if err != nil {
				if IsUniqueViolation(err) {
					continue
				}
				return err
			}

			ticket = candidate
			return nil
		}
	})
	if err != nil {
		return "", err
	}

	return ticket, nil
}

// GetUsername resolves an account id to its name. ErrUserNotFound means
// the id no longer maps to a row and any session holding it is stale.
func (s *AccountStore) GetUsername(ctx context.Context, id int64) (string, error) {
	user := new(User)
	err := s.db.NewSelect().
		Model(user).
		Column("name").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return user.Name, nil
}

// GetPermissions returns the capability row for an account. A missing
// row is not an error; it just means no capabilities.
func (s *AccountStore) GetPermissions(ctx context.Context, id int64) (Permissions, error) {
	perms := new(Permissions)
	err := s.db.NewSelect().
		Model(perms).
		Where("?TableAlias.user_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Permissions{UserID: id}, nil
		}
		return Permissions{}, err
	}
	return *perms, nil
}

// GrantPermissions upserts the capability row for an account.
func (s *AccountStore) GrantPermissions(ctx context.Context, perms Permissions) error {
	_, err := s.db.NewInsert().
		Model(&perms).
		On("CONFLICT (user_id) DO UPDATE").
		Set("admin = EXCLUDED.admin").
		Set("short = EXCLUDED.short").
		Exec(ctx)
	return err
}
