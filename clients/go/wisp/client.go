// Package wisp provides a client for the Wisp presence-and-relay protocol.
package wisp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Message is one direct message as returned by the server.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Content   string `json:"content"`
	Timestamp int64  `json:"ts"`
}

// Event is one server push: a presence update, an incoming message, a send
// echo, or an error.
type Event struct {
	Type    string   `json:"type"`
	Users   []string `json:"users,omitempty"`
	Message *Message `json:"message,omitempty"`
	Code    string   `json:"code,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Client talks to a Wisp server: live events over WebSocket, history over
// HTTP.
type Client struct {
	BaseURL    string
	UserID     string
	HTTPClient *http.Client

	conn *websocket.Conn
}

// NewClient creates a new Wisp client for the given user identity.
func NewClient(baseURL, userID string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UserID:     userID,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Connect opens the WebSocket connection and announces the client's
// identity.
func (c *Client) Connect() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	c.conn = conn

	return c.conn.WriteJSON(map[string]string{
		"type":    "join",
		"user_id": c.UserID,
	})
}

// Send relays a direct message to another user. Delivery confirmation
// arrives asynchronously as a "sent" event carrying the server-assigned id.
func (c *Client) Send(to, content string) error {
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(map[string]string{
		"type":    "send",
		"to":      to,
		"content": content,
	})
}

// Next blocks until the next server event arrives.
func (c *Client) Next() (*Event, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("not connected")
	}

	var event Event
	if err := c.conn.ReadJSON(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Close closes the WebSocket connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// History fetches the full conversation between the client's user and
// other, oldest first.
func (c *Client) History(other string) ([]Message, error) {
	endpoint := fmt.Sprintf("%s/messages/%s/%s",
		c.BaseURL, url.PathEscape(c.UserID), url.PathEscape(other))

	resp, err := c.HTTPClient.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history request failed: %s", resp.Status)
	}

	var body struct {
		Messages []Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Messages, nil
}

// Online fetches the current presence set.
func (c *Client) Online() ([]string, error) {
	resp, err := c.HTTPClient.Get(c.BaseURL + "/online")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("online request failed: %s", resp.Status)
	}

	var body struct {
		Users []string `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Users, nil
}
