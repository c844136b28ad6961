package domain

import "time"

// Idempotency records the outcome of a successfully processed POST, keyed by
// (scope, key). Scope names the operation (e.g. "subscribe"), ResourceID
// points at what it produced and Fingerprint summarizes the payload that
// produced it. A retry with the same key and fingerprint inside the TTL is
// answered from this record instead of re-running side effects such as
// sending a second welcome email.
type Idempotency struct {
	ID          string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Scope       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_scope_key,priority:1"`
	Key         string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_scope_key,priority:2"`
	ResourceID  string    `gorm:"type:TEXT NOT NULL"`
	Fingerprint string    `gorm:"type:TEXT NOT NULL;default:''"`
	Status      int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt   time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt   time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
