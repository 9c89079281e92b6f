package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/model"
	"retention-flow-be/internal/repository/implementation"
	"retention-flow-be/pkg/database"
)

// Seeds a handful of active subscriptions, plus a demo funnel of analytics
// events, so the flow and the ETL can be exercised locally without the
// upstream billing system.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	subscriptions := []model.Subscription{
		{UserId: uuid.New(), MonthlyPriceCents: 2500, Status: "active"},
		{UserId: uuid.New(), MonthlyPriceCents: 2500, Status: "active"},
		{UserId: uuid.New(), MonthlyPriceCents: 2900, Status: "active"},
	}

	for i := range subscriptions {
		if err := db.Create(&subscriptions[i]).Error; err != nil {
			log.Fatalf("Error: Failed to seed subscription: %v", err)
		}
		log.Printf("Seeded subscription %s for user %s ($%.2f/mo)",
			subscriptions[i].Id, subscriptions[i].UserId,
			float64(subscriptions[i].MonthlyPriceCents)/100)
	}

	analyticsRepo := implementation.NewAnalyticsRepository(db)
	now := time.Now().UTC()
	var batch []*entity.AnalyticsEvent
	for i := range subscriptions {
		userId := subscriptions[i].UserId
		sessionId := fmt.Sprintf("seed_session_%d", i+1)
		batch = append(batch,
			&entity.AnalyticsEvent{
				UserId:    &userId,
				SessionId: sessionId,
				EventName: entity.EventPopupOpened,
				CreatedAt: now,
			},
			&entity.AnalyticsEvent{
				UserId:     &userId,
				SessionId:  sessionId,
				EventName:  entity.EventStepCompleted,
				Properties: map[string]any{"stepNumber": 1, "screen": "survey"},
				CreatedAt:  now,
			},
		)
	}
	if err := analyticsRepo.CreateEvents(context.Background(), batch); err != nil {
		log.Fatalf("Error: Failed to seed analytics events: %v", err)
	}
	log.Printf("Seeded %d analytics events", len(batch))

	log.Println("✅ Seeding finished")
}
