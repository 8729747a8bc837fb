package controller

import (
	"errors"
	"log"

	"leadpilot/pipeline"
	"leadpilot/utils"

	"github.com/gofiber/fiber/v2"
)

// InboxController exposes the two pipeline operations: ingesting an
// inbound message and approving a drafted reply.
type InboxController struct {
	Pipeline *pipeline.Pipeline
	Logger   *log.Logger
	OrgID    string
}

func NewInboxController(p *pipeline.Pipeline, logger *log.Logger, orgID string) *InboxController {
	return &InboxController{
		Pipeline: p,
		Logger:   logger,
		OrgID:    orgID,
	}
}

// Ingest handles POST /api/ingest
func (ic *InboxController) Ingest(c *fiber.Ctx) error {
	var input struct {
		// The message text may arrive under any of these keys.
		Message    string `json:"message"`
		RawMessage string `json:"rawMessage"`
		Text       string `json:"text"`

		Source  string `json:"source" validate:"omitempty,max=64"`
		Channel string `json:"channel" validate:"omitempty,oneof=email sms dm"`
		Via     string `json:"via" validate:"omitempty,oneof=email sms dm"`
		LeadID  string `json:"leadId"`

		FirstName      string `json:"firstName" validate:"omitempty,max=100"`
		FirstNameSnake string `json:"first_name" validate:"omitempty,max=100"`
		LastName       string `json:"lastName" validate:"omitempty,max=100"`
		LastNameSnake  string `json:"last_name" validate:"omitempty,max=100"`
		Email          string `json:"email"`
		Company        string `json:"company" validate:"omitempty,max=200"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	message := utils.Coalesce(input.Message, input.RawMessage, input.Text)
	if message == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing message", nil)
	}

	res, err := ic.Pipeline.Ingest(c.Context(), pipeline.IngestInput{
		OrgID:     ic.OrgID,
		LeadID:    input.LeadID,
		Message:   message,
		Source:    input.Source,
		Channel:   utils.Coalesce(input.Channel, input.Via),
		FirstName: utils.Coalesce(input.FirstName, input.FirstNameSnake),
		LastName:  utils.Coalesce(input.LastName, input.LastNameSnake),
		Email:     input.Email,
		Company:   input.Company,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyMessage) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing message", nil)
		}
		ic.Logger.Printf("Ingest failed: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Ingest failed", err)
	}

	var taskID interface{}
	if res.TaskID != "" {
		taskID = res.TaskID
	}

	return c.JSON(fiber.Map{
		"ok":       true,
		"lead":     res.Lead,
		"threadId": res.ThreadID,
		"task":     fiber.Map{"id": taskID},
		"draft":    res.Draft,
	})
}

// Approve handles POST /api/threads/:id/approve
func (ic *InboxController) Approve(c *fiber.Ctx) error {
	threadID := c.Params("id")

	var input struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	thread, msg, err := ic.Pipeline.Approve(c.Context(), ic.OrgID, threadID, input.Text)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrEmptyReply):
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing text", nil)
		case errors.Is(err, pipeline.ErrThreadNotFound):
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Thread not found", nil)
		default:
			ic.Logger.Printf("Approve failed for thread %s: %v", threadID, err)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Approve failed", err)
		}
	}

	return c.JSON(fiber.Map{
		"ok":      true,
		"thread":  thread,
		"message": msg,
	})
}
