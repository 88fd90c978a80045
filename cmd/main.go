package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/accordkit/accord/archive"
	"github.com/accordkit/accord/broker"
	"github.com/accordkit/accord/cache"
	"github.com/accordkit/accord/client"
	"github.com/accordkit/accord/config"
	"github.com/accordkit/accord/gateway"
	logger "github.com/accordkit/accord/middleware/log"
	"github.com/accordkit/accord/model"
)

// Example bot: replies to "!ping" and mirrors gateway traffic into the
// optional Kafka and PostgreSQL sinks when they are configured.
func main() {
	cfg, err := config.LoadConfig("./config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer appLogger.Close()

	state := cache.NewMemory()
	transport := client.NewHTTPTransport(&cfg.API, appLogger)
	messages := client.NewMessages(transport, state, appLogger)

	session := gateway.NewSession(&cfg.Gateway, cfg.API.Token, state, appLogger)

	// Optional fan-out to Kafka. Missing brokers degrade to a local-only bot.
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := broker.NewProducer(&cfg.Kafka, appLogger)
		if err != nil {
			log.Printf("kafka unavailable, running without fan-out: %v", err)
		} else {
			defer producer.Close()
			session.OnEvent(producer.Handler())
		}
	}

	// Optional message archive.
	if cfg.Postgres.Host != "" {
		store, err := archive.NewStore(&cfg.Postgres, appLogger)
		if err != nil {
			log.Printf("postgres unavailable, running without archive: %v", err)
		} else {
			session.OnEvent(store.Handler())
		}
	}

	session.OnEvent(func(ctx context.Context, event string, data json.RawMessage) {
		if event != gateway.EventMessageCreate {
			return
		}
		var msg model.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
		msg.TransformContent()
		if current, ok := state.CurrentUser(); ok && current.ID == msg.Author.ID {
			return
		}
		if msg.Content != "!ping" {
			return
		}
		if _, err := messages.Reply(ctx, &msg, "pong"); err != nil {
			log.Printf("failed to reply: %v", err)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := session.Connect(ctx); err != nil {
		log.Fatalf("failed to connect to gateway: %v", err)
	}
	defer session.Close()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
