package routes

import (
	"log"
	"os"

	"leadpilot/config"
	controller "leadpilot/controllers"
	"leadpilot/pipeline"
	"leadpilot/providers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRoutes wires the inbox API. Provider clients are constructed
// eagerly from config; an unconfigured completion client degrades, an
// unconfigured task client is skipped by the pipeline.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	pipelineLog := logrus.New()
	pipelineLog.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ai := providers.NewOpenAIClient(config.AppConfig.OpenAIAPIKey, config.AppConfig.OpenAIModel, pipelineLog)
	notion := providers.NewNotionClient(config.AppConfig.NotionAPIKey, config.AppConfig.NotionDatabaseID, pipelineLog)

	orgID := config.AppConfig.DefaultOrgID
	p := pipeline.New(db, ai, notion, pipelineLog)

	inboxController := controller.NewInboxController(p, log.New(os.Stdout, "INBOX: ", log.LstdFlags), orgID)
	leadController := controller.NewLeadController(db, log.New(os.Stdout, "LEAD: ", log.LstdFlags), orgID)
	threadController := controller.NewThreadController(db, log.New(os.Stdout, "THREAD: ", log.LstdFlags), orgID)
	agentController := controller.NewAgentController(db, ai, notion, log.New(os.Stdout, "AGENT: ", log.LstdFlags))

	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Ingestion pipeline
	api.Post("/ingest", inboxController.Ingest)

	// Leads
	api.Get("/leads", leadController.GetLeads)
	api.Get("/leads/:id", leadController.GetLead)

	// Inbox queue
	api.Get("/threads", threadController.GetThreads)
	api.Get("/threads/:id", threadController.GetThread)
	api.Post("/threads/:id/approve", inboxController.Approve)

	// Standalone agent steps
	api.Post("/analyze", agentController.Analyze)
	api.Post("/draft-reply", agentController.DraftReply)
	api.Post("/create-task", agentController.CreateTask)
	api.Get("/notion/schema", agentController.NotionSchema)
}
