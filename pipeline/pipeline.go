// Package pipeline orchestrates the stores and provider clients into
// the two end-to-end operations of the inbox: ingesting an inbound
// message and approving an AI-drafted reply.
package pipeline

import (
	"context"
	"errors"

	"leadpilot/providers"
	"leadpilot/store"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrEmptyMessage   = errors.New("message text is required")
	ErrEmptyReply     = errors.New("reply text is required")
	ErrThreadNotFound = errors.New("thread not found")
)

// Completer obtains a text completion, degrading to a disabled result
// when no credential is configured.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, prompt string) (*providers.Completion, error)
}

// TaskFiler files a follow-up task in the external tracker.
type TaskFiler interface {
	Configured() bool
	FileTask(ctx context.Context, title, notes, leadID, priority string) (string, error)
}

// Pipeline runs one sequential unit of work per invocation. Concurrent
// runs for different leads act on disjoint rows; conflicting writes to
// the same thread resolve last-write-wins at the store.
type Pipeline struct {
	Leads  *store.LeadStore
	Convos *store.ConversationStore
	AI     Completer
	Tasks  TaskFiler
	Log    *logrus.Logger
}

func New(db *gorm.DB, ai Completer, tasks TaskFiler, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.New()
	}
	return &Pipeline{
		Leads:  store.NewLeadStore(db),
		Convos: store.NewConversationStore(db),
		AI:     ai,
		Tasks:  tasks,
		Log:    log,
	}
}

// bestEffort runs a side step that must not fail the parent operation.
// The error is logged and reported, never propagated.
func (p *Pipeline) bestEffort(step string, fn func() error) {
	if err := fn(); err != nil {
		p.Log.WithError(err).WithField("step", step).Warn("best-effort step failed")
	}
}

// fatal reports a pipeline-aborting store failure before returning it.
func (p *Pipeline) fatal(step string, err error) error {
	p.Log.WithError(err).WithField("step", step).Error("pipeline aborted")
	sentry.CaptureException(err)
	return err
}
