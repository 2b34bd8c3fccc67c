package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"stockreceipter/models"
)

// Service writes audit and user-activity records inside the caller transaction.
type Service struct {
	now func() time.Time
}

func NewService() *Service {
	return &Service{now: time.Now}
}

// NewServiceWithClock is used by tests that need stable timestamps.
func NewServiceWithClock(now func() time.Time) *Service {
	return &Service{now: now}
}

// Now returns the recorder clock in UTC.
func (s *Service) Now() time.Time {
	if s == nil || s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

// Write stores a before/after snapshot of an entity. A nil receiver is a no-op.
func (s *Service) Write(ctx context.Context, tx bun.IDB, userID uuid.UUID, action, entityType, entityID string, before, after any) error {
	if s == nil {
		return nil
	}
	beforeJSON, err := marshal(before)
	if err != nil {
		return err
	}
	afterJSON, err := marshal(after)
	if err != nil {
		return err
	}
	log := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
		CreatedAt:  s.Now(),
	}
	_, err = tx.NewInsert().Model(log).Exec(ctx)
	return err
}

// RecordActivity appends a row to the acting user's activity feed.
func (s *Service) RecordActivity(ctx context.Context, tx bun.IDB, userID uuid.UUID, activityType, description string, referenceID uuid.UUID) error {
	row := &models.UserActivity{
		UserID:      userID,
		Type:        activityType,
		Description: description,
		ReferenceID: referenceID,
		CreatedAt:   s.Now(),
	}
	_, err := tx.NewInsert().Model(row).Exec(ctx)
	return err
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
