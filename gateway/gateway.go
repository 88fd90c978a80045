// Package gateway maintains the event-stream session that keeps a
// local cache snapshot warm and hands dispatch events to subscribers.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/accordkit/accord/config"
	logger "github.com/accordkit/accord/middleware/log"
	"github.com/accordkit/accord/model"
)

// State receives entity updates decoded from dispatch events. Both
// cache.Memory and cache.RedisStore satisfy it.
type State interface {
	SetCurrentUser(u model.User)
	PutGuild(g model.Guild)
	RemoveGuild(guildID model.Snowflake)
	PutChannel(ch model.Channel)
	PutRole(guildID model.Snowflake, role model.Role)
	RemoveRole(guildID, roleID model.Snowflake)
	PutMember(guildID model.Snowflake, member model.Member)
	RemoveMember(guildID, userID model.Snowflake)
}

// Handler receives every dispatch event after the cache has been
// updated. Handlers run on the read loop goroutine and must not block.
type Handler func(ctx context.Context, event string, data json.RawMessage)

// Session is a single gateway connection with heartbeat management.
type Session struct {
	cfg    *config.GatewayConfig
	token  string
	logger *logger.Logger

	// mu protects concurrent writes to the WebSocket connection
	mu   sync.Mutex
	conn *websocket.Conn

	state    State
	handlers []Handler

	seqMu sync.Mutex
	seq   int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession creates a session. The state may be nil for consumers that
// only want raw events.
func NewSession(cfg *config.GatewayConfig, token string, state State, log *logger.Logger) *Session {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Session{
		cfg:    cfg,
		token:  token,
		logger: log,
		state:  state,
	}
}

// OnEvent registers a dispatch handler. Must be called before Connect.
func (s *Session) OnEvent(h Handler) {
	s.handlers = append(s.handlers, h)
}

// Connect dials the gateway, performs the hello/identify handshake, and
// starts the read and heartbeat loops.
func (s *Session) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial gateway: %w", err)
	}
	s.conn = conn

	var hello payload
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return fmt.Errorf("failed to read hello: %w", err)
	}
	if hello.Op != opHello {
		conn.Close()
		return fmt.Errorf("expected hello opcode, got %d", hello.Op)
	}
	var hd helloData
	if err := json.Unmarshal(hello.Data, &hd); err != nil {
		conn.Close()
		return fmt.Errorf("failed to decode hello: %w", err)
	}

	identify := identifyData{
		Token:   s.token,
		Intents: s.cfg.Intents,
		Shard:   [2]int{s.cfg.ShardID, s.cfg.ShardCount},
		Properties: identifyProperties{
			OS:      runtime.GOOS,
			Browser: "accord",
			Device:  "accord",
		},
	}
	if err := s.writePayload(payload{Op: opIdentify, Data: mustMarshal(identify)}); err != nil {
		conn.Close()
		return fmt.Errorf("failed to identify: %w", err)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.heartbeatLoop(time.Duration(hd.HeartbeatInterval) * time.Millisecond)
	go s.readLoop()

	s.logger.InfoContext(ctx, "gateway connected",
		zap.Int("shard_id", s.cfg.ShardID),
		zap.Int64("heartbeat_interval_ms", hd.HeartbeatInterval),
	)
	return nil
}

// Close stops the loops and closes the connection.
func (s *Session) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	var err error
	if s.conn != nil {
		err = s.conn.Close()
	}
	s.wg.Wait()
	return err
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func (s *Session) writePayload(p payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(p)
}

func (s *Session) sequence() int64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	return s.seq
}

func (s *Session) setSequence(seq int64) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	if seq > s.seq {
		s.seq = seq
	}
}

func (s *Session) heartbeatLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			seq := s.sequence()
			if err := s.writePayload(payload{Op: opHeartbeat, Data: mustMarshal(seq)}); err != nil {
				s.logger.WarnContext(s.ctx, "failed to send heartbeat", zap.Error(err))
				// The connection is almost certainly dead; stop the
				// read loop and surface the shutdown to subscribers.
				s.cancel()
				return
			}
		}
	}
}

func (s *Session) readLoop() {
	defer s.wg.Done()

	for {
		var p payload
		if err := s.conn.ReadJSON(&p); err != nil {
			if s.ctx.Err() == nil {
				s.logger.WarnContext(s.ctx, "gateway read failed", zap.Error(err))
			}
			return
		}

		switch p.Op {
		case opDispatch:
			s.setSequence(p.Seq)
			s.applyState(p.Type, p.Data)
			for _, h := range s.handlers {
				h(s.ctx, p.Type, p.Data)
			}
		case opHeartbeat:
			seq := s.sequence()
			_ = s.writePayload(payload{Op: opHeartbeat, Data: mustMarshal(seq)})
		case opHeartbeatACK:
			// Nothing to track; reconnect handling lives with the caller.
		}
	}
}

// applyState feeds a dispatch event into the cache state.
func (s *Session) applyState(event string, data json.RawMessage) {
	if s.state == nil {
		return
	}

	switch event {
	case EventReady:
		var rd readyData
		if json.Unmarshal(data, &rd) == nil {
			s.state.SetCurrentUser(rd.User)
		}
	case EventGuildCreate:
		var g model.Guild
		if json.Unmarshal(data, &g) == nil {
			s.state.PutGuild(g)
		}
	case EventGuildDelete:
		var gd guildDeleteEvent
		if json.Unmarshal(data, &gd) == nil {
			s.state.RemoveGuild(gd.ID)
		}
	case EventGuildRoleCreate, EventGuildRoleUpdate:
		var re roleEvent
		if json.Unmarshal(data, &re) == nil {
			s.state.PutRole(re.GuildID, re.Role)
		}
	case EventGuildRoleDelete:
		var re roleEvent
		if json.Unmarshal(data, &re) == nil {
			s.state.RemoveRole(re.GuildID, re.RoleID)
		}
	case EventGuildMemberAdd:
		var ma memberAddEvent
		if json.Unmarshal(data, &ma) == nil {
			s.state.PutMember(ma.GuildID, ma.Member)
		}
	case EventGuildMemberRemove:
		var mr memberRemoveEvent
		if json.Unmarshal(data, &mr) == nil {
			s.state.RemoveMember(mr.GuildID, mr.User.ID)
		}
	case EventChannelCreate, EventChannelUpdate:
		var ch model.Channel
		if json.Unmarshal(data, &ch) == nil {
			s.state.PutChannel(ch)
		}
	}
}
