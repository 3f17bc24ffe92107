package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"macrosim/internal/game"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Inbound message types a client may send.
const (
	MsgCreateGame    = "createGame"
	MsgJoinGame      = "joinGame"
	MsgStartGame     = "startGame"
	MsgPolicyAction  = "policyAction"
	MsgPauseGame     = "pauseGame"
	MsgResumeGame    = "resumeGame"
	MsgRequestScores = "requestScores"
)

const (
	sendBuffer   = 64
	readLimit    = 64 << 10
	writeTimeout = 5 * time.Second
)

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type CreateGameRequest struct {
	PlayerName  string `json:"playerName"`
	CountryCode string `json:"countryCode"`
}

type JoinGameRequest struct {
	GameID      string `json:"gameId"`
	PlayerName  string `json:"playerName"`
	CountryCode string `json:"countryCode"`
}

// client is one socket. gameID is owned by the connection's read loop.
type client struct {
	id     string
	gameID string
	send   chan []byte

	closeOnce sync.Once
	closeSlow func()
}

func (c *client) drop() {
	c.closeOnce.Do(c.closeSlow)
}

// Hub fans room messages out to the sockets joined to each game. A client
// that cannot keep up is disconnected instead of stalling the room.
type Hub struct {
	log   *slog.Logger
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{log: logger, rooms: map[string]map[*client]struct{}{}}
}

func (h *Hub) Publish(gameID string, msg game.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("encode broadcast failed", "game_id", gameID, "type", msg.Type, "err", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[gameID] {
		select {
		case c.send <- data:
		default:
			h.log.Warn("dropping slow client", "game_id", gameID, "player_id", c.id)
			go c.drop()
		}
	}
}

func (h *Hub) join(c *client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[gameID]
	if !ok {
		room = map[*client]struct{}{}
		h.rooms[gameID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) leave(c *client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[gameID]
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, gameID)
	}
}

// RoomSize reports how many sockets are joined to a game.
func (h *Hub) RoomSize(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.log.Error("websocket accept failed", "err", err)
		return
	}
	conn.SetReadLimit(readLimit)

	c := &client{
		id:   uuid.NewString(),
		send: make(chan []byte, sendBuffer),
		closeSlow: func() {
			conn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
		},
	}
	log := s.log.With("player_id", c.id)
	log.Debug("websocket connected", "remote", r.RemoteAddr)

	defer func() {
		if c.gameID != "" {
			s.hub.leave(c, c.gameID)
			s.game.Disconnect(c.gameID, c.id)
		}
		log.Debug("websocket closed")
	}()

	s.reply(c, game.Message{Type: game.MsgConnected, Data: game.Connected{PlayerID: c.id}})

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return writeLoop(ctx, conn, c) })
	g.Go(func() error {
		// The read loop ending closes the socket so the write loop exits too.
		defer conn.CloseNow()
		return s.readLoop(ctx, conn, c)
	})
	err = g.Wait()
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Debug("websocket ended", "err", err)
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, c *client) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, c *client) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			s.replyError(c, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := s.dispatch(c, msg); err != nil {
			s.replyError(c, err)
		}
	}
}

func (s *Server) dispatch(c *client, msg inbound) error {
	switch msg.Type {
	case MsgCreateGame:
		var in CreateGameRequest
		if err := decodeJSON(msg.Data, &in); err != nil {
			return fmt.Errorf("createGame: %w", err)
		}
		if c.gameID != "" {
			return fmt.Errorf("already in game %s", c.gameID)
		}
		created, err := s.game.CreateGame(c.id, in.PlayerName, in.CountryCode)
		if err != nil {
			return err
		}
		c.gameID = created.GameID
		s.hub.join(c, created.GameID)
		s.reply(c, game.Message{Type: game.MsgGameCreated, Data: created})
		return nil

	case MsgJoinGame:
		var in JoinGameRequest
		if err := decodeJSON(msg.Data, &in); err != nil {
			return fmt.Errorf("joinGame: %w", err)
		}
		if c.gameID != "" {
			return fmt.Errorf("already in game %s", c.gameID)
		}
		joined, err := s.game.JoinGame(in.GameID, c.id, in.PlayerName, in.CountryCode)
		if err != nil {
			return err
		}
		// The room broadcast went out before the joiner was a member.
		c.gameID = in.GameID
		s.hub.join(c, in.GameID)
		s.reply(c, game.Message{Type: game.MsgPlayerJoined, Data: joined})
		return nil

	case MsgStartGame:
		if err := requireGame(c); err != nil {
			return err
		}
		return s.game.StartGame(c.gameID, c.id)

	case MsgPauseGame:
		if err := requireGame(c); err != nil {
			return err
		}
		return s.game.PauseGame(c.gameID, c.id)

	case MsgResumeGame:
		if err := requireGame(c); err != nil {
			return err
		}
		return s.game.ResumeGame(c.gameID, c.id)

	case MsgPolicyAction:
		if err := requireGame(c); err != nil {
			return err
		}
		var a game.Action
		if err := decodeJSON(msg.Data, &a); err != nil {
			return fmt.Errorf("policyAction: %w", err)
		}
		_, err := s.game.Act(c.gameID, c.id, a)
		return err

	case MsgRequestScores:
		if err := requireGame(c); err != nil {
			return err
		}
		scores, err := s.game.Scores(c.gameID)
		if err != nil {
			return err
		}
		s.reply(c, game.Message{Type: game.MsgScores, Data: scores})
		return nil
	}
	return fmt.Errorf("unknown message type %q", msg.Type)
}

func requireGame(c *client) error {
	if c.gameID == "" {
		return errors.New("not in a game")
	}
	return nil
}

func (s *Server) reply(c *client, msg game.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("encode reply failed", "type", msg.Type, "err", err)
		return
	}
	select {
	case c.send <- data:
	default:
		go c.drop()
	}
}

func (s *Server) replyError(c *client, err error) {
	s.reply(c, errorMessage(err))
}

func errorMessage(err error) game.Message {
	return game.Message{Type: game.MsgError, Data: game.ErrorData{Message: err.Error()}}
}
