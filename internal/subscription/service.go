package subscription

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter tracks free-tier message consumption. Backed by redis in
// production; tests swap in an in-memory fake.
type Counter interface {
	IncrQuota(ctx context.Context, userID uint64) (int64, error)
	GetQuota(ctx context.Context, userID uint64) (int64, error)
	ResetQuota(ctx context.Context, userID uint64) error
}

// Service is the free/pro gate. It is advisory by design: it nudges free
// users toward checkout, it is not an access-control boundary.
type Service struct {
	db       *gorm.DB
	counter  Counter
	limit    int64
	validity time.Duration
}

func NewService(db *gorm.DB, counter Counter, messageLimit int, proAccessDays int) *Service {
	if messageLimit <= 0 {
		messageLimit = 10
	}
	if proAccessDays <= 0 {
		proAccessDays = 30
	}
	return &Service{
		db:       db,
		counter:  counter,
		limit:    int64(messageLimit),
		validity: time.Duration(proAccessDays) * 24 * time.Hour,
	}
}

// State evaluates the gate for a user. An elapsed pro window transitions the
// user back to free and clears the stored activation record.
func (s *Service) State(ctx context.Context, userID uint64) (State, error) {
	now := time.Now()

	var ent Entitlement
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&ent).Error
	switch {
	case err == nil:
		expiresAt := ent.ActivatedAt.Add(s.validity)
		if now.Before(expiresAt) {
			days := int((time.Until(expiresAt) + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
			return State{
				Mode:           ModePro,
				MessagesUsed:   0,
				MessageLimit:   s.limit,
				DaysRemaining:  days,
				ExpiresAt:      &expiresAt,
				IsExpiringSoon: days > 0 && days <= 5,
			}, nil
		}
		// window elapsed: drop the record and fall through to free
		if derr := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Entitlement{}).Error; derr != nil {
			return State{}, derr
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return State{}, err
	}

	used, err := s.counter.GetQuota(ctx, userID)
	if err != nil {
		return State{}, err
	}
	return State{
		Mode:         ModeFree,
		MessagesUsed: used,
		MessageLimit: s.limit,
	}, nil
}

// HasAIAccess reports whether the next AI call is allowed: always in pro
// mode, under the quota in free mode.
func (s *Service) HasAIAccess(ctx context.Context, userID uint64) (bool, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return false, err
	}
	return st.Mode == ModePro || st.MessagesUsed < st.MessageLimit, nil
}

// ConsumeMessage counts one outgoing user message against the free quota.
// Pro users are not metered.
func (s *Service) ConsumeMessage(ctx context.Context, userID uint64) error {
	st, err := s.State(ctx, userID)
	if err != nil {
		return err
	}
	if st.Mode == ModePro {
		return nil
	}
	_, err = s.counter.IncrQuota(ctx, userID)
	return err
}

// ResetQuota starts a fresh free-tier counting period (new session).
func (s *Service) ResetQuota(ctx context.Context, userID uint64) error {
	return s.counter.ResetQuota(ctx, userID)
}

// Activate records a pro entitlement starting now, replacing any previous
// activation for the user.
func (s *Service) Activate(ctx context.Context, userID uint64, checkoutSessionID, customerEmail string) (State, error) {
	ent := Entitlement{
		UserID:            userID,
		CheckoutSessionID: checkoutSessionID,
		CustomerEmail:     customerEmail,
		ActivatedAt:       time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"checkout_session_id", "customer_email", "activated_at", "updated_at"}),
	}).Create(&ent).Error
	if err != nil {
		return State{}, err
	}
	return s.State(ctx, userID)
}
