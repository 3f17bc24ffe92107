package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"macrosim/internal/api"
	"macrosim/internal/game"

	"github.com/coder/websocket"
)

// Envelope is an inbound server message with its payload left raw so the
// caller can decode by type.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (e Envelope) Decode(out any) error {
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type, err)
	}
	return nil
}

// Conn is a game socket. Reads and writes may run on separate goroutines.
type Conn struct {
	ws *websocket.Conn
}

func (c *Client) Dial(ctx context.Context) (*Conn, error) {
	target, err := socketURL(c.BaseURL)
	if err != nil {
		return nil, err
	}
	ws, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	ws.SetReadLimit(1 << 20)
	return &Conn{ws: ws}, nil
}

func socketURL(base string) (string, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + "/v1/ws", nil
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://") + "/v1/ws", nil
	case strings.HasPrefix(base, "ws://"), strings.HasPrefix(base, "wss://"):
		return base + "/v1/ws", nil
	}
	return "", fmt.Errorf("unsupported api base url %q", base)
}

func (c *Conn) Send(ctx context.Context, typ string, data any) error {
	raw, err := json.Marshal(struct {
		Type string `json:"type"`
		Data any    `json:"data,omitempty"`
	}{Type: typ, Data: data})
	if err != nil {
		return err
	}
	return c.ws.Write(ctx, websocket.MessageText, raw)
}

func (c *Conn) Read(ctx context.Context) (Envelope, error) {
	_, raw, err := c.ws.Read(ctx)
	if err != nil {
		return Envelope{}, err
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed server message: %w", err)
	}
	return env, nil
}

func (c *Conn) CreateGame(ctx context.Context, name, country string) error {
	return c.Send(ctx, api.MsgCreateGame, api.CreateGameRequest{PlayerName: name, CountryCode: country})
}

func (c *Conn) JoinGame(ctx context.Context, gameID, name, country string) error {
	return c.Send(ctx, api.MsgJoinGame, api.JoinGameRequest{GameID: gameID, PlayerName: name, CountryCode: country})
}

func (c *Conn) StartGame(ctx context.Context) error {
	return c.Send(ctx, api.MsgStartGame, nil)
}

func (c *Conn) PauseGame(ctx context.Context) error {
	return c.Send(ctx, api.MsgPauseGame, nil)
}

func (c *Conn) ResumeGame(ctx context.Context) error {
	return c.Send(ctx, api.MsgResumeGame, nil)
}

func (c *Conn) Act(ctx context.Context, a game.Action) error {
	return c.Send(ctx, api.MsgPolicyAction, a)
}

func (c *Conn) RequestScores(ctx context.Context) error {
	return c.Send(ctx, api.MsgRequestScores, nil)
}

func (c *Conn) Close() error {
	return c.ws.Close(websocket.StatusNormalClosure, "bye")
}
