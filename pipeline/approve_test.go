package pipeline

import (
	"context"
	"errors"
	"testing"

	"leadpilot/models"
	"leadpilot/providers"
)

// seedThread runs a full ingest so approval tests operate on realistic
// state: a drafted thread in needs_approval.
func seedThread(t *testing.T, p *Pipeline) *IngestResult {
	t.Helper()
	res, err := p.Ingest(context.Background(), IngestInput{
		Message:   "Need a website, budget $5k",
		Channel:   "email",
		FirstName: "Ada",
	})
	if err != nil {
		t.Fatalf("seed ingest: %v", err)
	}
	return res
}

func draftingPipeline(t *testing.T) *Pipeline {
	t.Helper()
	ai := &fakeCompleter{
		enabled: true,
		analyze: goodAnalysis(),
		draft:   &providers.Completion{Text: "Happy to help!"},
	}
	return New(testDB(t), ai, &fakeTasks{}, quietLogger())
}

func TestApprove_HappyPath(t *testing.T) {
	p := draftingPipeline(t)
	seed := seedThread(t, p)

	const reply = "Sure, here's our availability"

	before := len(activityTypes(t, p, seed.ThreadID))

	thread, msg, err := p.Approve(context.Background(), "org_demo", seed.ThreadID, reply)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if thread.Status != models.ThreadStatusActive {
		t.Errorf("thread status = %q, want active", thread.Status)
	}
	if thread.LastText != reply {
		t.Errorf("LastText = %q, want the approved text", thread.LastText)
	}
	if msg.From != models.RoleHuman {
		t.Errorf("message role = %q, want human", msg.From)
	}
	if msg.Text != reply {
		t.Errorf("message text = %q", msg.Text)
	}

	acts, err := p.Convos.ListActivities("org_demo", seed.ThreadID)
	if err != nil {
		t.Fatalf("activities: %v", err)
	}
	if len(acts) != before+2 {
		t.Fatalf("activity count = %d, want %d (+action_sent +followup_scheduled)", len(acts), before+2)
	}
	sent := acts[len(acts)-2]
	followup := acts[len(acts)-1]
	if sent.Type != "action_sent" || sent.Outcome != models.OutcomeOK {
		t.Errorf("got %s/%s, want action_sent/ok", sent.Type, sent.Outcome)
	}
	if followup.Type != "followup_scheduled" || followup.Outcome != models.OutcomePending {
		t.Errorf("got %s/%s, want followup_scheduled/pending", followup.Type, followup.Outcome)
	}

	lead, err := p.Leads.Get(seed.Lead.ID)
	if err != nil {
		t.Fatalf("lead: %v", err)
	}
	if lead.Status != models.LeadStatusContacted {
		t.Errorf("lead status = %q, want Contacted", lead.Status)
	}
}

func TestApprove_UnknownThreadWritesNothing(t *testing.T) {
	db := testDB(t)
	p := New(db, &fakeCompleter{}, &fakeTasks{}, quietLogger())

	_, _, err := p.Approve(context.Background(), "org_demo", "t_missing", "hello")
	if !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("err = %v, want ErrThreadNotFound", err)
	}

	if n := countRows(t, db, &models.Message{}); n != 0 {
		t.Errorf("message rows = %d, want 0", n)
	}
	if n := countRows(t, db, &models.Activity{}); n != 0 {
		t.Errorf("activity rows = %d, want 0", n)
	}
}

func TestApprove_EmptyTextWritesNothing(t *testing.T) {
	p := draftingPipeline(t)
	seed := seedThread(t, p)

	msgsBefore, _ := p.Convos.ListMessages("org_demo", seed.ThreadID)
	actsBefore, _ := p.Convos.ListActivities("org_demo", seed.ThreadID)

	_, _, err := p.Approve(context.Background(), "org_demo", seed.ThreadID, "   \n\t ")
	if !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("err = %v, want ErrEmptyReply", err)
	}

	msgsAfter, _ := p.Convos.ListMessages("org_demo", seed.ThreadID)
	actsAfter, _ := p.Convos.ListActivities("org_demo", seed.ThreadID)
	if len(msgsAfter) != len(msgsBefore) {
		t.Errorf("messages grew from %d to %d", len(msgsBefore), len(msgsAfter))
	}
	if len(actsAfter) != len(actsBefore) {
		t.Errorf("activities grew from %d to %d", len(actsBefore), len(actsAfter))
	}
}

func TestApprove_WrongOrgIsNotFound(t *testing.T) {
	p := draftingPipeline(t)
	seed := seedThread(t, p)

	_, _, err := p.Approve(context.Background(), "org_other", seed.ThreadID, "hello")
	if !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("err = %v, want ErrThreadNotFound for foreign tenant", err)
	}
}
