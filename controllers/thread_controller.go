package controller

import (
	"log"

	"leadpilot/models"
	"leadpilot/store"
	"leadpilot/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ThreadController struct {
	Leads  *store.LeadStore
	Convos *store.ConversationStore
	Logger *log.Logger
	OrgID  string
}

func NewThreadController(db *gorm.DB, logger *log.Logger, orgID string) *ThreadController {
	return &ThreadController{
		Leads:  store.NewLeadStore(db),
		Convos: store.NewConversationStore(db),
		Logger: logger,
		OrgID:  orgID,
	}
}

// GetThreads handles GET /api/threads — the inbox queue, newest-updated
// first, with a derived display name per thread.
func (tc *ThreadController) GetThreads(c *fiber.Ctx) error {
	threads, err := tc.Convos.ListThreads(tc.OrgID)
	if err != nil {
		tc.Logger.Printf("List threads failed: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list threads", err)
	}

	leads, err := tc.Leads.List(tc.OrgID)
	if err != nil {
		tc.Logger.Printf("List leads for threads failed: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list threads", err)
	}
	leadByID := make(map[string]models.Lead, len(leads))
	for _, l := range leads {
		leadByID[l.ID] = l
	}

	formatted := make([]fiber.Map, 0, len(threads))
	for _, t := range threads {
		lead, ok := leadByID[t.LeadID]
		if !ok {
			lead = models.Lead{ID: t.LeadID}
		}
		formatted = append(formatted, fiber.Map{
			"id":        t.ID,
			"leadId":    t.LeadID,
			"name":      lead.DisplayName(),
			"channel":   t.Channel,
			"status":    t.Status,
			"lastText":  t.LastText,
			"updatedAt": t.UpdatedAt,
		})
	}

	return c.JSON(fiber.Map{"ok": true, "threads": formatted})
}

// GetThread handles GET /api/threads/:id — thread header, lead, the
// message history oldest first and the full activity trail.
func (tc *ThreadController) GetThread(c *fiber.Ctx) error {
	threadID := c.Params("id")

	thread, err := tc.Convos.GetThread(tc.OrgID, threadID)
	if err != nil {
		tc.Logger.Printf("Get thread %s failed: %v", threadID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load thread", err)
	}
	if thread == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Thread not found", nil)
	}

	lead, err := tc.Leads.Get(thread.LeadID)
	if err != nil {
		tc.Logger.Printf("Get lead %s failed: %v", thread.LeadID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load thread", err)
	}

	messages, err := tc.Convos.ListMessages(tc.OrgID, threadID)
	if err != nil {
		tc.Logger.Printf("List messages for %s failed: %v", threadID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load thread", err)
	}

	activities, err := tc.Convos.ListActivities(tc.OrgID, threadID)
	if err != nil {
		tc.Logger.Printf("List activities for %s failed: %v", threadID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load thread", err)
	}

	return c.JSON(fiber.Map{
		"ok":         true,
		"thread":     thread,
		"lead":       lead,
		"messages":   messages,
		"activities": activities,
	})
}
