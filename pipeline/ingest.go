package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadpilot/models"
	"leadpilot/providers"
	"leadpilot/store"
	"leadpilot/utils"

	"github.com/badoux/checkmail"
	"github.com/sirupsen/logrus"
)

// IngestInput is one inbound message payload. Only Message is required;
// everything else defaults.
type IngestInput struct {
	OrgID     string
	LeadID    string
	Message   string
	Source    string
	Channel   string
	FirstName string
	LastName  string
	Email     string
	Company   string
}

// IngestResult is the final state after a pipeline run. TaskID is empty
// when no task was filed, Draft is empty when no draft was produced.
type IngestResult struct {
	Lead     *models.Lead
	ThreadID string
	TaskID   string
	Draft    string
}

// Ingest runs the full ingestion sequence: persist lead + thread +
// inbound message, analyze, file a follow-up task, draft a reply. The
// external-provider steps degrade instead of aborting; only failures to
// persist the core records are fatal.
func (p *Pipeline) Ingest(ctx context.Context, in IngestInput) (*IngestResult, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	orgID := in.OrgID
	if orgID == "" {
		orgID = "org_demo"
	}
	leadID := in.LeadID
	if leadID == "" {
		leadID = utils.NewID("lead")
	}
	channel := in.Channel
	if channel == "" {
		channel = "email"
	}

	email := strings.TrimSpace(in.Email)
	if email != "" {
		if err := checkmail.ValidateFormat(email); err != nil {
			p.Log.WithField("email", email).Warn("dropping malformed lead email")
			email = ""
		}
	}

	log := p.Log.WithFields(logrus.Fields{"lead_id": leadID, "channel": channel})

	// 1) Create + store the lead
	lead, err := p.Leads.Upsert(&models.Lead{
		ID:             leadID,
		OrganizationID: orgID,
		Source:         in.Source,
		RawMessage:     message,
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Email:          email,
		Company:        strings.TrimSpace(in.Company),
		Status:         models.LeadStatusNew,
	})
	if err != nil {
		return nil, p.fatal("create_lead", fmt.Errorf("create lead: %w", err))
	}

	// 1b) Create / refresh the thread for this lead
	thread, err := p.Convos.CreateThreadForLead(orgID, leadID, channel, models.ThreadStatusUnread, message)
	if err != nil {
		return nil, p.fatal("create_thread", fmt.Errorf("create thread: %w", err))
	}

	// 1c) Store the inbound message
	if _, err := p.Convos.AddMessage(orgID, thread.ID, models.RoleCustomer, message, time.Time{}); err != nil {
		return nil, p.fatal("store_message", fmt.Errorf("store inbound message: %w", err))
	}

	// 1d) Ops feed: ingested
	p.bestEffort("activity_ingested", func() error {
		_, err := p.Convos.AddActivity(orgID, thread.ID, "ingested",
			"Inbound message captured and thread created.", models.OutcomeOK, time.Time{})
		return err
	})

	// 2) Analyze. Never aborts: disabled, failed or unparseable
	// completions fall back to defaults.
	analysis := p.complete(ctx, "analyze", AnalyzePrompt(message))
	record := models.AnalyzeRecord{
		Summary:   analysis.Text,
		Priority:  models.PriorityP3,
		NextStep:  DefaultNextStep,
		Questions: []string{},
		Fallback:  true,
	}
	if analysis.Parsed != nil {
		record = models.AnalyzeRecord{
			Summary:   stringField(analysis.Parsed, "summary", analysis.Text),
			Priority:  priorityField(analysis.Parsed, "priority"),
			NextStep:  stringField(analysis.Parsed, "nextStep", DefaultNextStep),
			Questions: stringListField(analysis.Parsed, "questions"),
		}
	}

	lead = p.mergeLead(lead, store.LeadPatch{
		Status:    utils.Pointer(models.LeadStatusAnalyzed),
		Summary:   &record.Summary,
		Priority:  &record.Priority,
		NextStep:  &record.NextStep,
		Questions: &record.Questions,
		AILog:     utils.Pointer(withAnalyze(lead.AILog, record)),
	})

	p.bestEffort("activity_lead_scored", func() error {
		_, err := p.Convos.AddActivity(orgID, thread.ID, "lead_scored",
			fmt.Sprintf("Lead analyzed. Priority %s.", lead.Priority), models.OutcomeOK, time.Time{})
		return err
	})

	// 3) File a follow-up task. Best-effort: failure is recorded, never
	// propagated. Skipped entirely when the tracker is not configured.
	var taskID string
	if p.Tasks != nil && p.Tasks.Configured() {
		notes := fmt.Sprintf("Summary:\n%s\n\nRaw:\n%s", orNone(lead.Summary), message)
		id, err := p.Tasks.FileTask(ctx, "Follow up: New lead", notes, leadID, lead.Priority)
		if err != nil {
			log.WithError(err).Warn("task filing failed")
			p.bestEffort("activity_task_create_failed", func() error {
				_, err := p.Convos.AddActivity(orgID, thread.ID, "task_create_failed",
					"Notion task creation failed.", models.OutcomeBlocked, time.Time{})
				return err
			})
		} else {
			taskID = id
			lead = p.mergeLead(lead, store.LeadPatch{
				Status: utils.Pointer(models.LeadStatusTasked),
				AILog:  utils.Pointer(withTask(lead.AILog, models.TaskRecord{PageID: id})),
			})
			p.bestEffort("activity_task_created", func() error {
				_, err := p.Convos.AddActivity(orgID, thread.ID, "task_created",
					"Notion task created.", models.OutcomeOK, time.Time{})
				return err
			})
		}
	}

	// 4) Draft a reply
	draft := p.complete(ctx, "draft_reply", DraftPrompt(message, lead.Summary, lead.Priority)).Text

	lead = p.mergeLead(lead, store.LeadPatch{
		DraftReply: &draft,
		Status:     utils.Pointer(models.LeadStatusDrafted),
		AILog:      utils.Pointer(withDraft(lead.AILog, models.DraftRecord{Generated: draft != ""})),
	})

	if draft != "" {
		p.bestEffort("store_draft_message", func() error {
			_, err := p.Convos.AddMessage(orgID, thread.ID, models.RoleAI, "Draft: "+draft, time.Time{})
			return err
		})
		now := time.Now().UTC()
		if _, err := p.Convos.UpdateThread(thread.ID, store.ThreadPatch{
			Status:    utils.Pointer(models.ThreadStatusNeedsApproval),
			LastText:  &message,
			UpdatedAt: &now,
		}); err != nil {
			log.WithError(err).Warn("thread status update failed")
		}
		p.bestEffort("activity_draft_generated", func() error {
			_, err := p.Convos.AddActivity(orgID, thread.ID, "draft_generated",
				"AI draft generated for human review.", models.OutcomePending, time.Time{})
			return err
		})
	}

	log.WithFields(logrus.Fields{
		"status":    lead.Status,
		"priority":  lead.Priority,
		"task_id":   taskID,
		"has_draft": draft != "",
	}).Info("ingest complete")

	return &IngestResult{
		Lead:     lead,
		ThreadID: thread.ID,
		TaskID:   taskID,
		Draft:    draft,
	}, nil
}

// complete runs one completion call, tolerating provider errors: any
// failure becomes an empty completion the caller treats as a fallback.
func (p *Pipeline) complete(ctx context.Context, step, prompt string) *providers.Completion {
	comp, err := p.AI.Complete(ctx, prompt)
	if err != nil {
		p.Log.WithError(err).WithField("step", step).Warn("completion failed, continuing degraded")
		return &providers.Completion{}
	}
	return comp
}

// mergeLead applies a patch to the stored lead. A failed store write is
// logged and the patch applied in memory so the rest of the run still
// sees the derived fields.
func (p *Pipeline) mergeLead(lead *models.Lead, patch store.LeadPatch) *models.Lead {
	updated, err := p.Leads.Update(lead.ID, patch)
	if err == nil && updated != nil {
		return updated
	}
	if err != nil {
		p.Log.WithError(err).WithField("lead_id", lead.ID).Error("lead update failed")
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
	return lead
}

func withAnalyze(log models.AILog, rec models.AnalyzeRecord) models.AILog {
	log.Analyze = &rec
	return log
}

func withTask(log models.AILog, rec models.TaskRecord) models.AILog {
	log.Task = &rec
	return log
}

func withDraft(log models.AILog, rec models.DraftRecord) models.AILog {
	log.DraftReply = &rec
	return log
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func stringField(m map[string]interface{}, key, fallback string) string {
	if v, ok := m[key].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func priorityField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok && models.ValidPriority(v) {
		return v
	}
	return models.PriorityP3
}

func stringListField(m map[string]interface{}, key string) []string {
	items, ok := m[key].([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
