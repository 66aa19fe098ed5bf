package main

import (
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/internal/infrastructure/database"
	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

// Seeds a development tenant so webhooks can be exercised locally.
// Tokens come from the environment; empty ones leave that destination
// unconfigured, which the pipeline treats as "skip".
func main() {
	log.Println("🚀 Seeding development integration settings...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	clientRef := os.Getenv("SEED_CLIENT_REFERENCE_ID")
	if clientRef == "" {
		clientRef = "dev-tenant"
	}

	settings := entities.IntegrationSettings{
		ID:                         uuid.New(),
		ClientReferenceID:          clientRef,
		AutosyncEnabled:            true,
		Timezone:                   "UTC",
		NotionAPIToken:             os.Getenv("SEED_NOTION_API_TOKEN"),
		NotionTasksDatabaseID:      os.Getenv("SEED_NOTION_TASKS_DATABASE_ID"),
		MondayAPIToken:             os.Getenv("SEED_MONDAY_API_TOKEN"),
		MondayBoardID:              os.Getenv("SEED_MONDAY_BOARD_ID"),
		MondayGroupID:              os.Getenv("SEED_MONDAY_GROUP_ID"),
		GoogleCalendarToken:        os.Getenv("SEED_GOOGLE_CALENDAR_TOKEN"),
		GoogleCalendarRefreshToken: os.Getenv("SEED_GOOGLE_CALENDAR_REFRESH_TOKEN"),
		GoogleCalendarID:           os.Getenv("SEED_GOOGLE_CALENDAR_ID"),
	}

	result := db.Where("client_reference_id = ?", clientRef).FirstOrCreate(&settings)
	if result.Error != nil {
		log.Fatalf("Failed to seed settings: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		log.Printf("ℹ️  Tenant %q already exists, nothing to do", clientRef)
		return
	}

	log.Printf("✅ Seeded tenant %q (notion=%v monday=%v calendar=%v)",
		clientRef, settings.HasNotion(), settings.HasMonday(), settings.HasCalendar())
}
