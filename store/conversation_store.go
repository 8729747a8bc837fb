package store

import (
	"errors"
	"time"

	"leadpilot/models"
	"leadpilot/utils"

	"gorm.io/gorm"
)

// ConversationStore persists threads, messages and the per-thread
// activity feed. No operation here deletes rows.
type ConversationStore struct {
	db *gorm.DB
}

func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// ThreadPatch carries the thread fields a caller wants merged. Nil
// fields are left untouched.
type ThreadPatch struct {
	Status    *models.ThreadStatus
	LastText  *string
	UpdatedAt *time.Time
}

// CreateThreadForLead creates the conversation container for a lead, or
// refreshes the existing one: creation is idempotent by lead id, so a
// re-ingested lead updates the preview text instead of growing a
// duplicate thread.
func (s *ConversationStore) CreateThreadForLead(orgID, leadID, channel string, status models.ThreadStatus, initialText string) (*models.Thread, error) {
	var existing models.Thread
	err := s.db.First(&existing, "organization_id = ? AND lead_id = ?", orgID, leadID).Error
	if err == nil {
		existing.LastText = initialText
		existing.UpdatedAt = time.Now().UTC()
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	thread := models.Thread{
		ID:             "t_" + leadID,
		OrganizationID: orgID,
		LeadID:         leadID,
		Channel:        channel,
		Status:         status,
		LastText:       initialText,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.db.Create(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

// GetThread returns the thread or nil when absent.
func (s *ConversationStore) GetThread(orgID, threadID string) (*models.Thread, error) {
	var thread models.Thread
	err := s.db.First(&thread, "organization_id = ? AND id = ?", orgID, threadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListThreads returns all threads for a tenant, newest-updated first.
func (s *ConversationStore) ListThreads(orgID string) ([]models.Thread, error) {
	var threads []models.Thread
	err := s.db.
		Where("organization_id = ?", orgID).
		Order("updated_at DESC").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

// UpdateThread merges the patch into the thread row, returning nil when
// the id is unknown.
func (s *ConversationStore) UpdateThread(threadID string, patch ThreadPatch) (*models.Thread, error) {
	var thread models.Thread
	err := s.db.First(&thread, "id = ?", threadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		thread.Status = *patch.Status
	}
	if patch.LastText != nil {
		thread.LastText = *patch.LastText
	}
	if patch.UpdatedAt != nil {
		thread.UpdatedAt = *patch.UpdatedAt
	}

	if err := s.db.Save(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

// AddMessage appends an immutable message row. A zero timestamp means
// now.
func (s *ConversationStore) AddMessage(orgID, threadID string, from models.SenderRole, text string, at time.Time) (*models.Message, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	msg := models.Message{
		ID:             utils.NewID("m"),
		OrganizationID: orgID,
		ThreadID:       threadID,
		From:           from,
		Text:           text,
		At:             at,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns the thread's messages oldest to newest.
func (s *ConversationStore) ListMessages(orgID, threadID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.
		Where("organization_id = ? AND thread_id = ?", orgID, threadID).
		Order("at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// AddActivity appends an immutable ops-feed row. A zero timestamp means
// now.
func (s *ConversationStore) AddActivity(orgID, threadID, actType, detail string, outcome models.Outcome, at time.Time) (*models.Activity, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	activity := models.Activity{
		ID:             utils.NewID("a"),
		OrganizationID: orgID,
		ThreadID:       threadID,
		Type:           actType,
		Detail:         detail,
		Outcome:        outcome,
		At:             at,
	}
	if err := s.db.Create(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListActivities returns the thread's activities in chronological order.
// Callers decide the presentation order.
func (s *ConversationStore) ListActivities(orgID, threadID string) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.db.
		Where("organization_id = ? AND thread_id = ?", orgID, threadID).
		Order("at ASC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
