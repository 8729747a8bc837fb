package controller

import (
	"fmt"
	"log"

	"leadpilot/models"
	"leadpilot/pipeline"
	"leadpilot/providers"
	"leadpilot/store"
	"leadpilot/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AgentController exposes the individual AI/task steps as standalone
// operator endpoints, so a single step can be re-run for an existing
// lead outside the ingestion pipeline.
type AgentController struct {
	Leads  *store.LeadStore
	AI     pipeline.Completer
	Notion *providers.NotionClient
	Logger *log.Logger
}

func NewAgentController(db *gorm.DB, ai pipeline.Completer, notion *providers.NotionClient, logger *log.Logger) *AgentController {
	return &AgentController{
		Leads:  store.NewLeadStore(db),
		AI:     ai,
		Notion: notion,
		Logger: logger,
	}
}

type leadIDInput struct {
	LeadID string `json:"leadId" validate:"required"`
}

func (ac *AgentController) loadLead(c *fiber.Ctx) (*models.Lead, error) {
	var input leadIDInput
	if err := c.BodyParser(&input); err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	lead, err := ac.Leads.Get(input.LeadID)
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load lead", err)
	}
	if lead == nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}
	return lead, nil
}

// Analyze handles POST /api/analyze — re-runs the triage step for one
// lead.
func (ac *AgentController) Analyze(c *fiber.Ctx) error {
	lead, err := ac.loadLead(c)
	if lead == nil {
		return err
	}

	comp, err := ac.AI.Complete(c.Context(), pipeline.AnalyzePrompt(lead.RawMessage))
	if err != nil {
		ac.Logger.Printf("Analyze completion failed for %s: %v", lead.ID, err)
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Completion failed", err)
	}

	record := models.AnalyzeRecord{
		Summary:   comp.Text,
		Priority:  models.PriorityP3,
		NextStep:  "Review",
		Questions: []string{},
		Fallback:  true,
	}
	if comp.Parsed != nil {
		record = models.AnalyzeRecord{
			Summary:   comp.Text,
			Priority:  models.PriorityP3,
			NextStep:  "Review",
			Questions: []string{},
		}
		if s, ok := comp.Parsed["summary"].(string); ok {
			record.Summary = s
		}
		if p, ok := comp.Parsed["priority"].(string); ok && models.ValidPriority(p) {
			record.Priority = p
		}
		if n, ok := comp.Parsed["nextStep"].(string); ok {
			record.NextStep = n
		}
		if qs, ok := comp.Parsed["questions"].([]interface{}); ok {
			record.Questions = record.Questions[:0]
			for _, q := range qs {
				if s, ok := q.(string); ok {
					record.Questions = append(record.Questions, s)
				}
			}
		}
	}

	aiLog := lead.AILog
	aiLog.Analyze = &record

	updated, err := ac.Leads.Update(lead.ID, store.LeadPatch{
		Status:    utils.Pointer(models.LeadStatusAnalyzed),
		Summary:   &record.Summary,
		Priority:  &record.Priority,
		NextStep:  &record.NextStep,
		Questions: &record.Questions,
		AILog:     &aiLog,
	})
	if err != nil || updated == nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Lead not found after update", err)
	}

	return c.JSON(fiber.Map{"ok": true, "lead": updated})
}

// DraftReply handles POST /api/draft-reply — re-drafts the reply for
// one lead.
func (ac *AgentController) DraftReply(c *fiber.Ctx) error {
	lead, err := ac.loadLead(c)
	if lead == nil {
		return err
	}

	comp, err := ac.AI.Complete(c.Context(), pipeline.DraftPrompt(lead.RawMessage, lead.Summary, lead.Priority))
	if err != nil {
		ac.Logger.Printf("Draft completion failed for %s: %v", lead.ID, err)
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Completion failed", err)
	}

	updated, err := ac.Leads.Update(lead.ID, store.LeadPatch{
		DraftReply: &comp.Text,
		Status:     utils.Pointer(models.LeadStatusDrafted),
	})
	if err != nil || updated == nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Lead not found after update", err)
	}

	return c.JSON(fiber.Map{"ok": true, "draft": comp.Text, "lead": updated})
}

// CreateTask handles POST /api/create-task — files the follow-up task
// for one lead. Unlike the pipeline's best-effort step, a tracker
// failure here is surfaced to the caller.
func (ac *AgentController) CreateTask(c *fiber.Ctx) error {
	lead, err := ac.loadLead(c)
	if lead == nil {
		return err
	}

	title := "Follow up: " + utils.Coalesce(lead.Company, lead.FirstName+" "+lead.LastName, "New lead")
	notes := fmt.Sprintf("Summary:\n%s\n\nRaw:\n%s", orNone(lead.Summary), lead.RawMessage)

	pageID, err := ac.Notion.FileTask(c.Context(), title, notes, lead.ID, lead.Priority)
	if err != nil {
		ac.Logger.Printf("Task creation failed for %s: %v", lead.ID, err)
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Notion task creation failed", err)
	}

	aiLog := lead.AILog
	aiLog.Task = &models.TaskRecord{PageID: pageID}

	updated, err := ac.Leads.Update(lead.ID, store.LeadPatch{
		Status: utils.Pointer(models.LeadStatusTasked),
		AILog:  &aiLog,
	})
	if err != nil || updated == nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Lead not found after update", err)
	}

	return c.JSON(fiber.Map{
		"ok":   true,
		"task": fiber.Map{"id": pageID},
		"lead": updated,
	})
}

// NotionSchema handles GET /api/notion/schema — dumps the configured
// database's property names/types so operators can check the mapping.
func (ac *AgentController) NotionSchema(c *fiber.Ctx) error {
	props, err := ac.Notion.Schema(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch Notion schema", err)
	}
	return c.JSON(fiber.Map{
		"ok":          true,
		"database_id": ac.Notion.DatabaseID,
		"properties":  props,
	})
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
