package relay

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	apperrors "github.com/chronica-rpg/chronica/internal/errors"
)

// Client is the non-authoritative side of the relay. It satisfies the
// action service's Emitter so deferred writes ride the websocket instead
// of touching shared state.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial connects to a relay hub
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, apperrors.Wrapf(err, "dialing relay %s", url)
	}
	return &Client{conn: conn}, nil
}

// Emit submits an intent to the authority, fire and forget
func (c *Client) Emit(_ context.Context, action string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, "marshaling intent payload")
	}
	frame, err := wireFrame(msgIntent, Intent{Action: action, Payload: raw})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(frame); err != nil {
		return apperrors.Wrap(err, "sending intent")
	}
	return nil
}

// Close shuts the connection down
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}
