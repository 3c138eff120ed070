package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/uptrace/bun"

	"baletrack/infrastructure/sqlite"
	"baletrack/models"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionExport = "export"
)

// Verb is the past tense of action for activity lines.
func Verb(action string) string {
	switch action {
	case ActionCreate, ActionUpdate:
		return action + "d"
	case ActionDelete:
		return "deleted"
	case ActionExport:
		return "exported"
	}
	return action
}

// Service records the writes operators make through this station.
type Service struct {
	db *sqlite.DB
}

func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Record stores one entry in its own transaction.
func (s *Service) Record(ctx context.Context, user models.User, action, collection, entityID string, after any) error {
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return s.Write(ctx, tx, user, action, collection, entityID, after)
	})
}

// Track records an entry for a write that already succeeded remotely. A
// failure here is logged and never undoes the write.
func (s *Service) Track(ctx context.Context, user models.User, action, collection, entityID string, after any) {
	if s == nil {
		return
	}
	if err := s.Record(ctx, user, action, collection, entityID, after); err != nil {
		slog.Error("write audit log", slog.String("action", action), slog.String("collection", collection), slog.String("entity_id", entityID), slog.Any("err", err))
	}
}

// Write stores one entry inside the caller's transaction.
func (s *Service) Write(ctx context.Context, tx bun.Tx, user models.User, action, collection, entityID string, after any) error {
	afterJSON, err := marshal(after)
	if err != nil {
		return err
	}
	log := &models.AuditLog{
		UserID:     user.ID.String(),
		UserEmail:  user.Email,
		Action:     action,
		Collection: collection,
		EntityID:   entityID,
		AfterJSON:  afterJSON,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = tx.NewInsert().Model(log).Exec(ctx)
	return err
}

// Recent returns the newest entries first.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 10
	}
	var logs []models.AuditLog
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&logs).OrderExpr("al.id DESC").Limit(limit).Scan(ctx)
	})
	return logs, err
}

// ForEntity returns the history of one record, newest first.
func (s *Service) ForEntity(ctx context.Context, collection, entityID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&logs).
			Where("al.collection = ?", collection).
			Where("al.entity_id = ?", entityID).
			OrderExpr("al.id DESC").
			Scan(ctx)
	})
	return logs, err
}

func marshal(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
