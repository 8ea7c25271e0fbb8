package main

import (
	"log"
	"os"

	"teamcollab-be/internal/model"
	"teamcollab-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. AutoMigrate, parents before children
	models := []interface{}{
		&model.Company{},
		&model.User{},
		&model.Project{},
		&model.SystemSettings{},
		&model.Assistant{},
		&model.AssistantTone{},
		&model.Conversation{},
		&model.ConversationAssistant{},
		&model.Message{},
		&model.Metrics{},
		&model.MetricCache{},
		&model.PointInTimeSummary{},
	}
	log.Printf("Step 1: Running AutoMigrate for %d Tables...", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 4. Post-Migration: indexes and constraints GORM tags cannot express
	log.Println("Step 2: Creating partial indexes and constraints...")

	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_messages_live_conversation_created
		 ON messages (conversation_id, created_at DESC, id DESC) WHERE deleted_at IS NULL;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_messages_single_author') THEN
		 ALTER TABLE messages ADD CONSTRAINT chk_messages_single_author CHECK ((user_id IS NULL) <> (assistant_id IS NULL)); END IF; END $$;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
