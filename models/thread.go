package models

import "time"

// ThreadStatus tracks where a conversation sits in the inbox queue.
type ThreadStatus string

const (
	ThreadStatusUnread        ThreadStatus = "unread"
	ThreadStatusNeedsApproval ThreadStatus = "needs_approval"
	ThreadStatusActive        ThreadStatus = "active"
	ThreadStatusClosed        ThreadStatus = "closed"
)

// SenderRole identifies who authored a message.
type SenderRole string

const (
	RoleCustomer SenderRole = "customer"
	RoleAI       SenderRole = "ai"
	RoleHuman    SenderRole = "human"
)

// Outcome is the tri-state result tag attached to an activity.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomePending Outcome = "pending"
	OutcomeBlocked Outcome = "blocked"
)

// Thread is the conversation container for a lead on one channel
// (email/sms/dm). The pipeline creates exactly one per lead.
type Thread struct {
	ID             string `gorm:"primaryKey" json:"id"`
	OrganizationID string `gorm:"not null;default:org_demo;index" json:"organizationId"`
	LeadID         string `gorm:"not null;index" json:"leadId"`

	Channel string       `gorm:"not null" json:"channel"`
	Status  ThreadStatus `gorm:"not null;default:unread" json:"status"`

	LastText  string    `gorm:"type:text" json:"lastText"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updatedAt"`
}

// Message is one immutable utterance in a thread. Rows are never edited
// or deleted; display order is At ascending.
type Message struct {
	ID             string `gorm:"primaryKey" json:"id"`
	OrganizationID string `gorm:"not null;default:org_demo;index" json:"organizationId"`
	ThreadID       string `gorm:"not null;index" json:"threadId"`

	From SenderRole `gorm:"not null" json:"from"`
	Text string     `gorm:"type:text;not null" json:"text"`

	At time.Time `gorm:"not null;index" json:"at"`
}

// Activity is one append-only ops-feed entry describing a pipeline or
// approval step outcome.
type Activity struct {
	ID             string `gorm:"primaryKey" json:"id"`
	OrganizationID string `gorm:"not null;default:org_demo;index" json:"organizationId"`
	ThreadID       string `gorm:"not null;index" json:"threadId"`

	Type    string  `gorm:"not null" json:"type"`
	Detail  string  `gorm:"type:text" json:"detail"`
	Outcome Outcome `json:"outcome"`

	At time.Time `gorm:"not null;index" json:"at"`
}
