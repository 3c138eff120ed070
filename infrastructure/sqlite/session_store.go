package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/uptrace/bun"

	"baletrack/infrastructure/argon"
	"baletrack/models"
)

// stationSlot is the primary key of the one persisted session.
const stationSlot = "station"

// SessionStore keeps the station session in client_sessions with its tokens
// sealed at rest.
type SessionStore struct {
	db     *DB
	sealer *argon.Sealer
}

func NewSessionStore(db *DB, sealer *argon.Sealer) *SessionStore {
	return &SessionStore{db: db, sealer: sealer}
}

func (s *SessionStore) Load(ctx context.Context) (*models.Session, error) {
	var row models.PersistedSession
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&row).Where("slot = ?", stationSlot).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(row.UserJSON), &user); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	access, err := s.sealer.Open(row.SealedAccessToken)
	if err != nil {
		return nil, fmt.Errorf("open access token: %w", err)
	}
	refresh, err := s.sealer.Open(row.SealedRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("open refresh token: %w", err)
	}
	return &models.Session{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		BindingToken: row.BindingToken,
		ExpiresAt:    row.ExpiresAt,
	}, nil
}

// Save replaces the stored session. Last writer wins.
func (s *SessionStore) Save(ctx context.Context, sess models.Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	access, err := s.sealer.Seal(sess.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	refresh, err := s.sealer.Seal(sess.RefreshToken)
	if err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}

	now := time.Now().UTC()
	row := &models.PersistedSession{
		Slot:               stationSlot,
		UserJSON:           string(userJSON),
		SealedAccessToken:  access,
		SealedRefreshToken: refresh,
		BindingToken:       sess.BindingToken,
		ExpiresAt:          sess.ExpiresAt.UTC(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(row).
			On("CONFLICT (slot) DO UPDATE").
			Set("user_json = EXCLUDED.user_json").
			Set("sealed_access_token = EXCLUDED.sealed_access_token").
			Set("sealed_refresh_token = EXCLUDED.sealed_refresh_token").
			Set("binding_token = EXCLUDED.binding_token").
			Set("expires_at = EXCLUDED.expires_at").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	})
}

func (s *SessionStore) Delete(ctx context.Context) error {
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.PersistedSession)(nil)).Where("slot = ?", stationSlot).Exec(ctx)
		return err
	})
}
