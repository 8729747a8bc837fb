package store

import (
	"errors"
	"time"

	"leadpilot/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeadStore persists leads. Absence of a row is signaled with a nil
// result, not an error, so callers branch on emptiness.
type LeadStore struct {
	db *gorm.DB
}

func NewLeadStore(db *gorm.DB) *LeadStore {
	return &LeadStore{db: db}
}

// LeadPatch carries the fields a caller wants merged into an existing
// lead. Nil fields are left untouched.
type LeadPatch struct {
	Status     *models.LeadStatus
	Summary    *string
	Priority   *string
	NextStep   *string
	Questions  *[]string
	DraftReply *string
	AILog      *models.AILog
}

// Upsert inserts the lead or fully replaces the existing row with the
// same id, defaulting org/source/status/questions when absent.
func (s *LeadStore) Upsert(lead *models.Lead) (*models.Lead, error) {
	if lead.OrganizationID == "" {
		lead.OrganizationID = "org_demo"
	}
	if lead.Source == "" {
		lead.Source = "web"
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if lead.Questions == nil {
		lead.Questions = []string{}
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(lead).Error
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// Get returns the lead or nil when the id is unknown.
func (s *LeadStore) Get(id string) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.First(&lead, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// List returns all leads for a tenant, newest first.
func (s *LeadStore) List(orgID string) ([]models.Lead, error) {
	var leads []models.Lead
	err := s.db.
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&leads).Error
	if err != nil {
		return nil, err
	}
	return leads, nil
}

// Update merges the patch into the existing row and returns the updated
// lead, or nil when the id is unknown.
func (s *LeadStore) Update(id string, patch LeadPatch) (*models.Lead, error) {
	lead, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, nil
	}

	if patch.Status != nil {
		lead.Status = *patch.Status
	}
	if patch.Summary != nil {
		lead.Summary = *patch.Summary
	}
	if patch.Priority != nil {
		lead.Priority = *patch.Priority
	}
	if patch.NextStep != nil {
		lead.NextStep = *patch.NextStep
	}
	if patch.Questions != nil {
		lead.Questions = *patch.Questions
	}
	if patch.DraftReply != nil {
		lead.DraftReply = *patch.DraftReply
	}
	if patch.AILog != nil {
		lead.AILog = *patch.AILog
	}

	if err := s.db.Save(lead).Error; err != nil {
		return nil, err
	}
	return lead, nil
}

// SampleIDs returns up to n lead ids, used to make 404 responses
// debuggable.
func (s *LeadStore) SampleIDs(orgID string, n int) ([]string, error) {
	var ids []string
	err := s.db.Model(&models.Lead{}).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Limit(n).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
