// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/pverkade/signon/internal/model"
)

// sessionRow is the database representation of a session. The token column
// holds the sealed token, never the plaintext.
type sessionRow struct {
	bun.BaseModel `bun:"table:sessions"`

	ID         int64     `bun:"id,pk,autoincrement"`
	Username   string    `bun:"username,notnull"`
	Token      []byte    `bun:"token,notnull"`
	ObtainedAt time.Time `bun:"obtained_at,notnull"`
	ExpiresAt  time.Time `bun:"expires_at,nullzero"`
}

// Store persists at most one current session. Saving a session replaces
// whatever was stored before.
type Store struct {
	bun  *bun.DB
	seal *sealer
}

// Save stores s as the current session, replacing any previous one.
func (st *Store) Save(s model.Session) error {
	sealed, err := st.seal.seal([]byte(s.Token))
	if err != nil {
		return fmt.Errorf("failed to seal token: %w", err)
	}
	row := &sessionRow{
		Username:   s.Username,
		Token:      sealed,
		ObtainedAt: s.ObtainedAt,
		ExpiresAt:  s.ExpiresAt,
	}
	ctx := context.Background()
	return st.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*sessionRow)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear previous session: %w", err)
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return nil
	})
}

// Current returns the stored session with its token unsealed, or nil when
// no session exists or the stored one has expired.
func (st *Store) Current() (*model.Session, error) {
	ctx := context.Background()
	row := new(sessionRow)
	err := st.bun.NewSelect().Model(row).Order("obtained_at DESC").Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	s := model.Session{
		Username:   row.Username,
		ObtainedAt: row.ObtainedAt,
		ExpiresAt:  row.ExpiresAt,
	}
	if s.Expired(time.Now()) {
		// Expired rows are useless; drop them rather than hand them out.
		if _, err := st.bun.NewDelete().Model((*sessionRow)(nil)).Where("id = ?", row.ID).Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to remove expired session: %w", err)
		}
		return nil, nil
	}
	token, err := st.seal.open(row.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal token: %w", err)
	}
	s.Token = string(token)
	return &s, nil
}

// Clear removes the stored session, if any.
func (st *Store) Clear() error {
	ctx := context.Background()
	_, err := st.bun.NewDelete().Model((*sessionRow)(nil)).Where("1 = 1").Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions whose expiry lies at or before now and
// returns how many rows were removed. Sessions without an expiry are kept.
func (st *Store) PurgeExpired(now time.Time) (int, error) {
	ctx := context.Background()
	res, err := st.bun.NewDelete().
		Model((*sessionRow)(nil)).
		Where("expires_at IS NOT NULL").
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

// Close releases the underlying database handle.
func (st *Store) Close() error {
	if st.bun == nil {
		return nil
	}
	return st.bun.Close()
}

// SaveSession stores s via the package-level store.
func SaveSession(s model.Session) error {
	if store == nil {
		return errors.New("session store not initialized")
	}
	return store.Save(s)
}

// CurrentSession returns the stored session via the package-level store,
// or nil when none exists.
func CurrentSession() (*model.Session, error) {
	if store == nil {
		return nil, errors.New("session store not initialized")
	}
	return store.Current()
}

// ClearSession removes the stored session via the package-level store.
func ClearSession() error {
	if store == nil {
		return errors.New("session store not initialized")
	}
	return store.Clear()
}
