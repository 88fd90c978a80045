// Package example shows how bot applications wire the SDK logger.
package example

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/accordkit/accord/config"
	logger "github.com/accordkit/accord/middleware/log"
)

// Example_configured builds a logger from application configuration,
// the same way cmd/main.go does.
func Example_configured() {
	log, err := logger.NewLogger(&config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		panic(err)
	}
	defer log.Close()

	log.InfoContext(context.Background(), "bot starting",
		zap.Int("shard_id", 0))
}

// Example_tracedSend correlates every log line of one message send
// through a context trace ID.
func Example_tracedSend() {
	log, _ := logger.NewDevelopmentLogger()
	defer log.Sync()

	ctx := logger.WithTraceID(context.Background(), logger.NewTraceID())

	log.DebugContext(ctx, "validating payload",
		zap.Uint64("channel_id", 2))
	log.InfoContext(ctx, "message sent",
		zap.Uint64("message_id", 3))
}

// Example_serviceFields gives a long-lived service its own logger with
// pinned fields.
func Example_serviceFields() {
	log, _ := logger.NewDevelopmentLogger()
	defer log.Sync()

	archiveLog := log.WithFields(zap.String("service", "archive"))

	ctx := context.Background()
	if err := fmt.Errorf("connection refused"); err != nil {
		archiveLog.WarnContext(ctx, "failed to archive message event",
			zap.Error(err),
			zap.String("event", "MESSAGE_CREATE"))
	}
}
