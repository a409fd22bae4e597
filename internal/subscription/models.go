package subscription

import "time"

type Mode string

const (
	ModeFree Mode = "free"
	ModePro  Mode = "pro"
)

// Entitlement is the stored pro-access activation record. One row per user;
// expiry is evaluated on read and the row is cleared once the window elapses.
type Entitlement struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	UserID            uint64    `gorm:"uniqueIndex;not null"`
	CheckoutSessionID string    `gorm:"type:varchar(128)"`
	CustomerEmail     string    `gorm:"type:varchar(255)"`
	ActivatedAt       time.Time `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Entitlement) TableName() string { return "pro_entitlements" }

// State is the gate's user-visible snapshot.
type State struct {
	Mode           Mode       `json:"mode"`
	MessagesUsed   int64      `json:"messages_used"`
	MessageLimit   int64      `json:"message_limit"`
	DaysRemaining  int        `json:"days_remaining"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	IsExpiringSoon bool       `json:"is_expiring_soon"`
}
