// Package archive persists observed messages to PostgreSQL, giving
// bots a queryable log that survives message deletion on the platform.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/accordkit/accord/config"
	"github.com/accordkit/accord/gateway"
	logger "github.com/accordkit/accord/middleware/log"
	"github.com/accordkit/accord/model"
)

// MessageLog is one archived message row.
type MessageLog struct {
	MessageID uint64 `gorm:"primaryKey"`
	ChannelID uint64 `gorm:"index;not null"`
	GuildID   uint64 `gorm:"index"`
	AuthorID  uint64 `gorm:"index;not null"`
	AuthorTag string `gorm:"type:varchar(64)"`
	Content   string `gorm:"type:text"`
	Edited    bool   `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (MessageLog) TableName() string {
	return "message_logs"
}

// IStore defines the archive operations.
type IStore interface {
	Record(ctx context.Context, msg *model.Message) error
	Update(ctx context.Context, msg *model.Message) error
	Delete(ctx context.Context, messageID model.Snowflake) error
	Recent(ctx context.Context, channelID model.Snowflake, limit int) ([]MessageLog, error)
}

// Store implements IStore on gorm.
type Store struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewStore connects to PostgreSQL and migrates the schema.
func NewStore(cfg *config.PostgresConfig, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := db.AutoMigrate(&MessageLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate archive schema: %w", err)
	}

	return &Store{db: db, logger: log}, nil
}

// newStoreFromDB wraps an existing connection; used by tests.
func newStoreFromDB(db *gorm.DB, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Store{db: db, logger: log}
}

func rowFromMessage(msg *model.Message) MessageLog {
	return MessageLog{
		MessageID: uint64(msg.ID),
		ChannelID: uint64(msg.ChannelID),
		GuildID:   uint64(msg.GuildID),
		AuthorID:  uint64(msg.Author.ID),
		AuthorTag: msg.Author.Tag(),
		Content:   msg.Content,
	}
}

// Record stores a newly observed message.
func (s *Store) Record(ctx context.Context, msg *model.Message) error {
	row := rowFromMessage(msg)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record message %s: %w", msg.ID, err)
	}
	return nil
}

// Update replaces the stored content after an edit.
func (s *Store) Update(ctx context.Context, msg *model.Message) error {
	err := s.db.WithContext(ctx).
		Model(&MessageLog{}).
		Where("message_id = ?", uint64(msg.ID)).
		Updates(map[string]any{"content": msg.Content, "edited": true}).Error
	if err != nil {
		return fmt.Errorf("failed to update message %s: %w", msg.ID, err)
	}
	return nil
}

// Delete soft-deletes an archived message, keeping the row queryable
// through Unscoped for audit purposes.
func (s *Store) Delete(ctx context.Context, messageID model.Snowflake) error {
	err := s.db.WithContext(ctx).
		Where("message_id = ?", uint64(messageID)).
		Delete(&MessageLog{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}
	return nil
}

// Recent returns the newest archived messages for a channel.
func (s *Store) Recent(ctx context.Context, channelID model.Snowflake, limit int) ([]MessageLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	var rows []MessageLog
	err := s.db.WithContext(ctx).
		Where("channel_id = ?", uint64(channelID)).
		Order("message_id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	return rows, nil
}

// Handler adapts the store into a gateway dispatch handler covering
// message create, update, and delete events. Failures are logged and
// dropped; archiving must not stall the session.
func (s *Store) Handler() gateway.Handler {
	return func(ctx context.Context, event string, data json.RawMessage) {
		var err error
		switch event {
		case gateway.EventMessageCreate:
			var msg model.Message
			if err = json.Unmarshal(data, &msg); err == nil {
				msg.TransformContent()
				err = s.Record(ctx, &msg)
			}
		case gateway.EventMessageUpdate:
			var msg model.Message
			if err = json.Unmarshal(data, &msg); err == nil {
				msg.TransformContent()
				err = s.Update(ctx, &msg)
			}
		case gateway.EventMessageDelete:
			var ev struct {
				ID model.Snowflake `json:"id"`
			}
			if err = json.Unmarshal(data, &ev); err == nil {
				err = s.Delete(ctx, ev.ID)
			}
		default:
			return
		}
		if err != nil {
			s.logger.WarnContext(ctx, "failed to archive message event",
				zap.String("event", event), zap.Error(err))
		}
	}
}
