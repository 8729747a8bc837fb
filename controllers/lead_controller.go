package controller

import (
	"log"
	"strings"

	"leadpilot/store"
	"leadpilot/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LeadController struct {
	Leads  *store.LeadStore
	Logger *log.Logger
	OrgID  string
}

func NewLeadController(db *gorm.DB, logger *log.Logger, orgID string) *LeadController {
	return &LeadController{
		Leads:  store.NewLeadStore(db),
		Logger: logger,
		OrgID:  orgID,
	}
}

// GetLeads handles GET /api/leads — tenant-scoped list, newest first.
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
	leads, err := lc.Leads.List(lc.OrgID)
	if err != nil {
		lc.Logger.Printf("List leads failed: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list leads", err)
	}
	return c.JSON(fiber.Map{"ok": true, "leads": leads})
}

// GetLead handles GET /api/leads/:id. Unknown ids get a 404 carrying a
// few valid sample ids to aid debugging.
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	leadID := strings.TrimSpace(c.Params("id"))

	lead, err := lc.Leads.Get(leadID)
	if err != nil {
		lc.Logger.Printf("Get lead %s failed: %v", leadID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load lead", err)
	}
	if lead == nil {
		sampleIDs, err := lc.Leads.SampleIDs(lc.OrgID, 5)
		if err != nil {
			sampleIDs = []string{}
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"ok":          false,
			"error":       "Lead not found",
			"requestedId": leadID,
			"sampleIds":   sampleIDs,
		})
	}

	return c.JSON(fiber.Map{"ok": true, "lead": lead})
}
