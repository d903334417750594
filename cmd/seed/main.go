package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizfund/internal/model"
	"quizfund/internal/repository"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("quizfund")
	schedRepo := repository.NewScheduledRoomRepo(db)

	hostID := os.Getenv("SEED_HOST_ID")
	if hostID == "" {
		hostID = "host_demo1234"
	}

	room := &model.ScheduledRoom{
		HostID:      hostID,
		Title:       "Friday Night Charity Trivia",
		CharityName: "Local Food Bank",
		ScheduledAt: time.Now().Add(72 * time.Hour),
		Config: model.RoomConfig{
			EntryFee:     500,
			HostFeeBPS:   500,
			PrizePoolBPS: 3000,
			CharityName:  "Local Food Bank",
			RoundDefinitions: []model.RoundDefinition{
				{
					RoundType:          "general",
					QuestionsPerRound:  5,
					TimePerQuestionSec: 30,
					Category:           "General Knowledge",
					PrizeDescription:   "Round 1 spot prize",
				},
				{
					RoundType:          "themed",
					QuestionsPerRound:  5,
					TimePerQuestionSec: 30,
					Category:           "Science",
					Difficulty:         "medium",
					PrizeDescription:   "Round 2 spot prize",
				},
				{
					RoundType:          "final",
					QuestionsPerRound:  3,
					TimePerQuestionSec: 45,
					Category:           "General Knowledge",
					Difficulty:         "hard",
					PrizeDescription:   "Grand prize",
				},
			},
		},
	}

	if err := schedRepo.Create(ctx, room); err != nil {
		log.Fatalf("Failed to insert scheduled room: %v", err)
	}

	fmt.Printf("Successfully scheduled '%s' (%s) for host '%s'\n", room.Title, room.ID, hostID)
}
