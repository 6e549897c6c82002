package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/hive-corporation/casebridge/internal/adapter/appliance"
	"github.com/hive-corporation/casebridge/internal/adapter/notifier"
	"github.com/hive-corporation/casebridge/internal/adapter/repository"
	"github.com/hive-corporation/casebridge/internal/adapter/statestore"
	"github.com/hive-corporation/casebridge/internal/config"
	"github.com/hive-corporation/casebridge/internal/core/poll"
)

func main() {
	// Load .env file if it exists (optional - tokens can come from the config file)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found (this is fine if tokens are configured elsewhere)")
	}

	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	once := flag.Bool("once", false, "Run a single poll cycle and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Println("🔌 Database connection...")
	dbPool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("❌ Error connecting to database: %v", err)
	}
	defer dbPool.Close()

	client := appliance.NewClient(
		cfg.Appliance.BaseURL,
		cfg.Appliance.PublicToken,
		cfg.Appliance.PrivateToken,
		cfg.Appliance.SkipTLSVerify,
	)

	poll.InitMetrics()
	engine := poll.NewEngine(
		client,
		repository.NewPostgresCaseStore(dbPool),
		statestore.New(cfg.State.FilePath),
		client.BaseURL(),
		poll.Config{
			ModelBreaches:    cfg.Poll.ModelBreaches,
			AIAnalyst:        cfg.Poll.AIAnalyst,
			BreachLookback:   cfg.Poll.BreachLookback,
			IncidentLookback: cfg.Poll.IncidentLookback,
		},
	)

	var notifiers notifier.Fanout
	if cfg.NATS.URL != "" {
		n, err := notifier.NewNATSNotifier(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			log.Fatalf("❌ Error connecting to NATS: %v", err)
		}
		defer n.Close()
		notifiers = append(notifiers, n)
	}
	if cfg.Slack.BotToken != "" {
		notifiers = append(notifiers, notifier.NewSlackNotifier(cfg.Slack.BotToken, cfg.Slack.Channel, cfg.Slack.MentionTeam))
	}
	if len(notifiers) > 0 {
		engine.SetNotifier(notifiers)
	}

	if *once {
		if err := engine.Cycle(ctx); err != nil {
			log.Fatalf("❌ Poll cycle failed: %v", err)
		}
		log.Println("🏁 Poll cycle finished")
		return
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down poller...")
		cancel()
	}()

	log.Printf("🚀 Polling every %s...", cfg.Poll.Interval)
	ticker := time.NewTicker(cfg.Poll.Interval)
	defer ticker.Stop()

	runCycle(ctx, engine)
	for {
		select {
		case <-ticker.C:
			runCycle(ctx, engine)
		case <-ctx.Done():
			log.Println("🏁 Poller stopped")
			return
		}
	}
}

func runCycle(ctx context.Context, engine *poll.Engine) {
	if err := engine.Cycle(ctx); err != nil {
		log.Printf("❌ Poll cycle failed: %v", err)
	}
}
