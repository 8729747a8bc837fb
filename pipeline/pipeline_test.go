package pipeline

import (
	"context"
	"io"
	"strings"
	"testing"

	"leadpilot/models"
	"leadpilot/providers"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates an in-memory SQLite database with all required tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Lead{},
		&models.Thread{},
		&models.Message{},
		&models.Activity{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeCompleter is a test double for the completion provider. The
// analyze and draft results are dispatched on the prompt shape.
type fakeCompleter struct {
	enabled bool
	analyze *providers.Completion
	draft   *providers.Completion
	err     error
}

func (f *fakeCompleter) Enabled() bool { return f.enabled }

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (*providers.Completion, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.enabled {
		return &providers.Completion{Disabled: true}, nil
	}
	if strings.Contains(prompt, "Return JSON only") {
		return f.analyze, nil
	}
	return f.draft, nil
}

// fakeTasks is a test double for the task tracker.
type fakeTasks struct {
	configured bool
	id         string
	err        error
	calls      int
}

func (f *fakeTasks) Configured() bool { return f.configured }

func (f *fakeTasks) FileTask(ctx context.Context, title, notes, leadID, priority string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

func goodAnalysis() *providers.Completion {
	text := `{"summary":"Wants a website for ~$5k","priority":"P2","nextStep":"Send scoping call link","questions":["What's the timeline?"]}`
	return &providers.Completion{
		Text: text,
		Parsed: map[string]interface{}{
			"summary":   "Wants a website for ~$5k",
			"priority":  "P2",
			"nextStep":  "Send scoping call link",
			"questions": []interface{}{"What's the timeline?"},
		},
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func activityTypes(t *testing.T, p *Pipeline, threadID string) []string {
	t.Helper()
	acts, err := p.Convos.ListActivities("org_demo", threadID)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	types := make([]string, len(acts))
	for i, a := range acts {
		types[i] = a.Type
	}
	return types
}
