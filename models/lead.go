package models

import (
	"strings"
	"time"
)

// LeadStatus tracks a lead through its lifecycle. Statuses only move
// forward: New -> Analyzed -> Drafted -> Tasked -> Contacted -> Closed.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "New"
	LeadStatusAnalyzed  LeadStatus = "Analyzed"
	LeadStatusDrafted   LeadStatus = "Drafted"
	LeadStatusTasked    LeadStatus = "Tasked"
	LeadStatusContacted LeadStatus = "Contacted"
	LeadStatusClosed    LeadStatus = "Closed"
)

// Priority buckets assigned by analysis. P3 is the fallback when the
// model returns something unexpected.
const (
	PriorityP1 = "P1"
	PriorityP2 = "P2"
	PriorityP3 = "P3"
	PriorityP4 = "P4"
)

// ValidPriority reports whether p is one of P1-P4.
func ValidPriority(p string) bool {
	switch p {
	case PriorityP1, PriorityP2, PriorityP3, PriorityP4:
		return true
	}
	return false
}

// AnalyzeRecord is the audit payload stored after the analysis step.
// Raw holds the completion text when it could not be parsed as JSON.
type AnalyzeRecord struct {
	Summary   string   `json:"summary,omitempty"`
	Priority  string   `json:"priority,omitempty"`
	NextStep  string   `json:"nextStep,omitempty"`
	Questions []string `json:"questions,omitempty"`
	Raw       string   `json:"raw,omitempty"`
	Fallback  bool     `json:"fallback,omitempty"`
}

// TaskRecord is the audit payload stored after a follow-up task is filed.
type TaskRecord struct {
	PageID string `json:"pageId"`
}

// DraftRecord marks that the draft-reply step ran for this lead.
type DraftRecord struct {
	Generated bool `json:"generated"`
}

// AILog is the per-step audit trail kept on a lead. One typed field per
// pipeline step rather than an open-ended map, so consumers can handle
// every known step exhaustively.
type AILog struct {
	Analyze    *AnalyzeRecord `json:"analyze,omitempty"`
	Task       *TaskRecord    `json:"task,omitempty"`
	DraftReply *DraftRecord   `json:"draftReply,omitempty"`
}

// Lead is a contact/opportunity record derived from one inbound message.
type Lead struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	OrganizationID string    `gorm:"not null;default:org_demo;index" json:"organizationId"`
	CreatedAt      time.Time `gorm:"not null;index" json:"createdAt"`

	Source     string `gorm:"not null;default:web" json:"source"`
	RawMessage string `gorm:"type:text;not null" json:"rawMessage"`

	// Contact identity so the UI shows a person, not a UUID
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `gorm:"index" json:"email"`
	Company   string `gorm:"index" json:"company"`

	Status LeadStatus `gorm:"not null;default:New" json:"status"`

	// Derived by analysis
	Summary   string   `gorm:"type:text" json:"summary"`
	Priority  string   `json:"priority"`
	NextStep  string   `json:"nextStep"`
	Questions []string `gorm:"serializer:json;type:text" json:"questions"`

	DraftReply string `gorm:"type:text" json:"draftReply"`

	AILog AILog `gorm:"serializer:json;type:text" json:"aiLog"`
}

// DisplayName derives the name shown in thread lists. Precedence:
// full name, company, email, truncated raw message, "Lead #" + id tail.
func (l *Lead) DisplayName() string {
	full := strings.TrimSpace(strings.TrimSpace(l.FirstName) + " " + strings.TrimSpace(l.LastName))
	if full != "" {
		return full
	}
	if l.Company != "" {
		return l.Company
	}
	if l.Email != "" {
		return l.Email
	}
	if l.RawMessage != "" {
		if len(l.RawMessage) > 48 {
			return l.RawMessage[:48]
		}
		return l.RawMessage
	}
	id := l.ID
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	return "Lead #" + id
}
