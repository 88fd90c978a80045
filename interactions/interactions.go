// Package interactions serves the inbound interaction webhook. The
// platform POSTs each interaction to a registered endpoint and signs
// the body with the application's Ed25519 key; unverifiable requests
// must be rejected with 401 or the endpoint registration fails.
package interactions

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/accordkit/accord/config"
	logger "github.com/accordkit/accord/middleware/log"
	"github.com/accordkit/accord/model"
)

// Interaction types as sent on the wire.
const (
	TypePing               = 1
	TypeApplicationCommand = 2
	TypeMessageComponent   = 3
)

// Response callback types.
const (
	ResponsePong            = 1
	ResponseChannelMessage  = 4
	ResponseDeferredMessage = 5
	ResponseDeferredUpdate  = 6
	ResponseUpdateMessage   = 7
)

// Interaction is the decoded webhook payload.
type Interaction struct {
	ID        model.Snowflake `json:"id"`
	Type      int             `json:"type"`
	Token     string          `json:"token"`
	GuildID   model.Snowflake `json:"guild_id,omitempty"`
	ChannelID model.Snowflake `json:"channel_id,omitempty"`
	Member    *model.Member   `json:"member,omitempty"`
	User      *model.User     `json:"user,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Message   *model.Message  `json:"message,omitempty"`
}

// ResponseData is the message portion of an interaction response.
type ResponseData struct {
	Content         string                 `json:"content,omitempty"`
	Embeds          []model.Embed          `json:"embeds,omitempty"`
	AllowedMentions *model.AllowedMentions `json:"allowed_mentions,omitempty"`
	Flags           model.MessageFlags     `json:"flags,omitempty"`
	TTS             bool                   `json:"tts,omitempty"`
}

// Response is the payload returned to the webhook caller.
type Response struct {
	Type int           `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// Handler resolves an interaction into a response. Returning an error
// yields a 500 to the platform, which it surfaces as a failed
// interaction to the invoking user.
type Handler func(c *gin.Context, interaction *Interaction) (*Response, error)

// Server hosts the webhook endpoint.
type Server struct {
	publicKey ed25519.PublicKey
	handler   Handler
	logger    *logger.Logger
	engine    *gin.Engine
}

// NewServer builds the webhook server. The public key comes from the
// application settings page, hex encoded.
func NewServer(cfg *config.InteractionsConfig, handler Handler, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	key, err := hex.DecodeString(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}

	s := &Server{
		publicKey: ed25519.PublicKey(key),
		handler:   handler,
		logger:    log,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.POST("/interactions", s.verifySignature, s.handleInteraction)
	s.engine = engine

	return s, nil
}

// Engine exposes the router so callers can mount extra routes or run
// it under their own http.Server.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves the webhook on addr, blocking until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.InfoContext(context.Background(), "interaction server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

// verifySignature checks the Ed25519 signature over timestamp+body.
// The body is re-buffered for the next handler.
func (s *Server) verifySignature(c *gin.Context) {
	signature := c.GetHeader("X-Signature-Ed25519")
	timestamp := c.GetHeader("X-Signature-Timestamp")
	if signature == "" || timestamp == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing signature headers"})
		return
	}

	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed signature"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}
	c.Set("body", body)

	signed := make([]byte, 0, len(timestamp)+len(body))
	signed = append(signed, timestamp...)
	signed = append(signed, body...)

	if !ed25519.Verify(s.publicKey, signed, sig) {
		s.logger.WarnContext(c.Request.Context(), "rejected interaction with bad signature")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid request signature"})
		return
	}

	c.Next()
}

func (s *Server) handleInteraction(c *gin.Context) {
	body := c.MustGet("body").([]byte)

	var interaction Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed interaction payload"})
		return
	}

	if interaction.Type == TypePing {
		c.JSON(http.StatusOK, Response{Type: ResponsePong})
		return
	}

	if s.handler == nil {
		c.JSON(http.StatusOK, Response{Type: ResponseDeferredMessage})
		return
	}

	resp, err := s.handler(c, &interaction)
	if err != nil {
		s.logger.ErrorContext(c.Request.Context(), "interaction handler failed",
			zap.String("interaction_id", interaction.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "interaction handler failed"})
		return
	}
	if resp == nil {
		resp = &Response{Type: ResponseDeferredMessage}
	}

	c.JSON(http.StatusOK, resp)
}
