package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"strconv"

	"signalmail/db"
	"signalmail/internal/model"
	"signalmail/internal/pipeline"
	"signalmail/internal/repository"
	"signalmail/internal/step"
	"signalmail/internal/trigger"
	"signalmail/pkg/llm"
	"signalmail/pkg/mailer"
	"signalmail/pkg/news"

	"github.com/joho/godotenv"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	err = db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	newsClient := newsSource()
	if newsClient == nil {
		slog.Error("no news source API keys configured")
		return
	}

	summarizer := summaryClient()
	if summarizer == nil {
		slog.Error("no summarizer API keys configured")
		return
	}

	mail := mailClient()
	if mail == nil {
		slog.Error("RESEND_API_KEY environment variable is not set")
		return
	}

	p := pipeline.New(pipeline.Config{
		Users:           repository.NewUserRepository(db.DB),
		Watchlists:      repository.NewWatchlistRepository(db.DB),
		News:            newsClient,
		Summarizer:      summarizer,
		Mailer:          mail,
		Steps:           step.NewRedisRunner(db.Redis),
		SendConcurrency: envInt("SEND_CONCURRENCY"),
	})

	registry := trigger.NewRegistry()
	registry.On(model.EventUserCreated, func(ctx context.Context, ev model.Event) (pipeline.Report, error) {
		var data model.UserCreatedData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return pipeline.Report{}, err
		}
		return p.RunWelcome(ctx, ev.ID, data)
	})
	registry.On(model.EventSendDailyNews, func(ctx context.Context, ev model.Event) (pipeline.Report, error) {
		return p.RunDigest(ctx, ev.ID)
	})

	queue := trigger.NewEventQueue(db.Redis)

	cronExpr := os.Getenv("DIGEST_CRON")
	if cronExpr == "" {
		cronExpr = trigger.DefaultDigestCron
	}
	scheduler, err := trigger.NewScheduler(cronExpr, queue)
	if err != nil {
		log.Fatalf("error building digest scheduler: %v", err)
	}

	ctx := context.Background()

	go func() {
		if err := scheduler.Run(ctx); err != nil {
			slog.Error("scheduler stopped", "error", err)
		}
	}()

	slog.Info("worker started", "digest_cron", cronExpr)

	if err := trigger.NewConsumer(queue, registry).Run(ctx); err != nil {
		log.Fatalf("consumer stopped: %v", err)
	}
}

func newsSource() news.NewsClient {
	if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
		return news.NewFinnHubClient(key)
	}
	if key := os.Getenv("ALPHA_VANTAGE_API_KEY"); key != "" {
		return news.NewAlphaVantageClient(key)
	}
	return nil
}

func mailClient() mailer.Mailer {
	key := os.Getenv("RESEND_API_KEY")
	if key == "" {
		return nil
	}
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "Signalmail <digest@signalmail.app>"
	}
	return mailer.NewResendClient(key, from)
}

func summaryClient() llm.SummaryClient {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return llm.NewOpenAIClient(key)
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return llm.NewAnthropicClient(key)
	}
	return nil
}

func envInt(name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer environment variable", "name", name, "value", v)
		return 0
	}
	return n
}
