// Command seed walks the configured flow with generated answers so the admin
// endpoints have data to show in development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"

	"lola-discovery-be/internal/config"
	"lola-discovery-be/internal/dto"
	"lola-discovery-be/internal/pkg/logger"
	"lola-discovery-be/internal/repository/unitofwork"
	"lola-discovery-be/internal/service"
	"lola-discovery-be/pkg/database"
	"lola-discovery-be/pkg/flow"
)

var businessNames = []string{"Acme Outdoor Co.", "Blue Fern Studio", "Harbor Coffee", "Northwind Goods", "Pixel & Pine"}

func main() {
	count := flag.Int("sessions", 10, "number of demo sessions to create")
	partial := flag.Float64("partial", 0.3, "share of sessions left in progress")
	flag.Parse()

	cfg := config.Load()
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	graph, err := flow.LoadFile(cfg.Flow.ConfigPath)
	if err != nil {
		log.Fatalf("Unable to load flow config: %v", err)
	}

	db, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	sessionService := service.NewSessionService(
		graph,
		unitofwork.NewRepositoryFactory(db),
		nil,
		nil,
		nil,
		logger.NewNopLogger(),
		service.SessionOptions{},
	)

	ctx := context.Background()
	completed := 0
	for i := 0; i < *count; i++ {
		done, err := seedSession(ctx, sessionService, i, rand.Float64() < *partial)
		if err != nil {
			log.Printf("Session %d skipped: %v", i+1, err)
			continue
		}
		if done {
			completed++
		}
	}

	log.Printf("Seeded %d sessions (%d completed)", *count, completed)
}

func seedSession(ctx context.Context, svc service.ISessionService, n int, stopEarly bool) (bool, error) {
	start, err := svc.Start(ctx, dto.ClientInfo{
		IpAddress: fmt.Sprintf("192.0.2.%d", n%254+1),
		UserAgent: "lola-seed",
	})
	if err != nil {
		return false, err
	}

	question := start.Question
	for answered := 0; question != nil; answered++ {
		if stopEarly && answered >= 2 {
			return false, nil
		}

		raw, err := json.Marshal(sampleAnswer(question))
		if err != nil {
			return false, err
		}
		res, err := svc.SubmitAnswer(ctx, start.SessionId, &dto.SubmitAnswerRequest{
			QuestionId: question.ID,
			Answer:     raw,
		})
		if err != nil {
			return false, fmt.Errorf("question %s: %w", question.ID, err)
		}
		if res.Completed {
			return true, nil
		}
		question = res.Question
	}
	return false, nil
}

func sampleAnswer(q *flow.QuestionView) interface{} {
	switch q.InputType {
	case flow.InputSingleChoice:
		return q.Options[rand.IntN(len(q.Options))]
	case flow.InputMultiChoice:
		picked := []string{}
		for _, opt := range q.Options {
			if rand.IntN(2) == 0 {
				picked = append(picked, opt)
			}
		}
		if len(picked) == 0 {
			picked = append(picked, q.Options[0])
		}
		if limit := q.Validation.MaxSelections; limit != nil && len(picked) > *limit {
			picked = picked[:*limit]
		}
		return picked
	case flow.InputRanking:
		items := append([]string{}, q.Options...)
		rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		return items
	case flow.InputMultiField:
		values := make(map[string]string, len(q.Fields))
		for _, f := range q.Fields {
			values[f.Name] = "demo " + f.Name
		}
		return values
	case flow.InputScale:
		values := make(map[string]int, len(q.Fields))
		for _, f := range q.Fields {
			lo, hi := f.Bounds()
			values[f.Name] = int(lo) + rand.IntN(int(hi-lo)+1)
		}
		return values
	default:
		return businessNames[rand.IntN(len(businessNames))]
	}
}
