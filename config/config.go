package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"leadpilot/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	AppConfig Config
)

type Config struct {
	Environment string `json:"environment"`
	ServerPort  string `json:"server_port"`

	// Storage. Driver is "postgres" for deployments, "sqlite" for local dev.
	DBDriver       string `json:"db_driver"`
	DBHost         string `json:"db_host"`
	DBPort         string `json:"db_port"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"-"`
	DBName         string `json:"db_name"`
	DBSSLMode      string `json:"db_ssl_mode"`
	DBMaxIdleConns int    `json:"db_max_idle_conns"`
	DBMaxOpenConns int    `json:"db_max_open_conns"`
	SQLitePath     string `json:"sqlite_path"`

	// Completion provider. Absence of the key disables AI assistance
	// instead of failing requests.
	OpenAIAPIKey string `json:"-"`
	OpenAIModel  string `json:"openai_model"`

	// Task tracker. Checked at point of use, not at startup.
	NotionAPIKey     string `json:"-"`
	NotionDatabaseID string `json:"notion_database_id"`

	SentryDSN    string `json:"-"`
	DefaultOrgID string `json:"default_org_id"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

func LoadConfig() error {
	AppConfig = Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "5000"),

		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "leadpilot"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		SQLitePath:     getEnv("SQLITE_PATH", "data.sqlite"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		NotionAPIKey:     getEnv("NOTION_API_KEY", ""),
		NotionDatabaseID: getEnv("NOTION_DATABASE_ID", ""),

		SentryDSN:    getEnv("SENTRY_DSN", ""),
		DefaultOrgID: getEnv("DEFAULT_ORG_ID", "org_demo"),
	}

	// Only the store is hard-required up front. Provider credentials are
	// validated lazily so the inbox stays usable without them.
	switch AppConfig.DBDriver {
	case "postgres":
		if AppConfig.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required when DB_DRIVER=postgres")
		}
	case "sqlite":
		// No credentials needed.
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", AppConfig.DBDriver)
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	var (
		db  *gorm.DB
		err error
	)
	switch AppConfig.DBDriver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(AppConfig.SQLitePath), &gorm.Config{})
	default:
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			AppConfig.DBHost,
			AppConfig.DBPort,
			AppConfig.DBUser,
			AppConfig.DBPassword,
			AppConfig.DBName,
			AppConfig.DBSSLMode,
		)
		log.Println("Using connection string:", maskPassword(dsn))
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	DB = db

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("✅ Successfully connected to the database")
	log.Println("🔄 Starting database migration...")
	if err := MigrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("✅ Database migration completed")
	return nil
}

// MigrateDB creates/updates the inbox tables. Exported so tests can
// migrate an in-memory database the same way.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Lead{},
		&models.Thread{},
		&models.Message{},
		&models.Activity{},
	)
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("🔧 Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	if AppConfig.DBDriver == "sqlite" {
		log.Printf("Database: sqlite(%s)", AppConfig.SQLitePath)
	} else {
		log.Printf("Database: %s@%s:%s/%s",
			AppConfig.DBUser,
			AppConfig.DBHost,
			AppConfig.DBPort,
			AppConfig.DBName)
	}
	log.Printf("Providers: OpenAI(%t), Notion(%t), Sentry(%t)",
		AppConfig.OpenAIAPIKey != "",
		AppConfig.NotionAPIKey != "",
		AppConfig.SentryDSN != "")
}
