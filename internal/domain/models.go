// Package domain defines the core models for subscribers, compliance tasks and
// assistant transcripts. Persistent types carry GORM tags for the SQLite store
// and BSON tags for the MongoDB subscriber store.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Subscriber is one newsletter signup.
//
// Email is stored lowercased and is unique across all subscribers; the
// database index, not the pre-insert lookup, is what guarantees that two
// concurrent signups for one address produce a single record.
type Subscriber struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"          bson:"_id"`
	FirstName    string    `json:"first_name"    gorm:"type:varchar(255);not null"        bson:"firstName"`
	Email        string    `json:"email"         gorm:"type:varchar(320);not null;uniqueIndex:ux_subscribers_email" bson:"email"`
	SubscribedAt time.Time `json:"subscribed_at" gorm:"not null;index"                    bson:"subscribedAt"`
}

// TableName returns the database table name for Subscriber.
func (Subscriber) TableName() string { return "subscribers" }

// Task priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ComplianceTask is a user-created reminder on the compliance calendar.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - OwnerID: the user the task belongs to; indexed together with DueDate.
//   - Title / Description: free text, title required.
//   - DueDate: calendar day in YYYY-MM-DD form.
//   - Priority: high, medium or low (defaults to medium).
//   - Completed: toggled by the owner.
type ComplianceTask struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	OwnerID     string         `json:"owner_id"    gorm:"type:varchar(64);not null;index:idx_owner_due,priority:1"`
	Title       string         `json:"title"       gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text;not null;default:''"`
	DueDate     string         `json:"due_date"    gorm:"type:char(10);not null;index:idx_owner_due,priority:2"`
	Priority    string         `json:"priority"    gorm:"type:varchar(8);not null;default:'medium';check:priority IN ('high','medium','low')"`
	Completed   bool           `json:"completed"   gorm:"not null;default:false"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for ComplianceTask.
func (ComplianceTask) TableName() string { return "compliance_tasks" }

// Transcript senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatMessage is one transcript entry of an assistant session. Transcripts
// are kept in process memory only.
type ChatMessage struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Sender    string `json:"sender"    enums:"user,bot"`
	Timestamp string `json:"timestamp" example:"2025-01-20T10:04:05.123Z"`
}
