// Package discord implements the minimal local IPC client needed to push
// one rich-presence activity slot: endpoint discovery, handshake, and
// SET_ACTIVITY frames. The transport never retries; errors surface to the
// caller, which owns reconnect policy.
package discord

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
)

// endpointIndices is the range of discord-ipc-<n> endpoints probed on
// connect.
const endpointIndices = 10

// ErrMalformedHandshake is returned when the client answers the handshake
// without an authenticated user.
var ErrMalformedHandshake = errors.New("malformed handshake response")

// ErrNoEndpoint is returned when no IPC endpoint exists for an index.
var ErrNoEndpoint = errors.New("no ipc endpoint")

// TransportError classifies an IPC failure. It carries only what logging
// and recovery need, never a reference to the failed connection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("discord ipc %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// User is the authenticated user reported by the handshake acknowledgment.
type User struct {
	Username string
	ID       string
}

// Client is a connected IPC client.
type Client struct {
	conn net.Conn
	user User
}

type handshakeRequest struct {
	V        int    `json:"v"`
	ClientID string `json:"client_id"`
}

type handshakeResponse struct {
	Evt  string `json:"evt"`
	Data struct {
		User struct {
			Username string `json:"username"`
			ID       string `json:"id"`
		} `json:"user"`
	} `json:"data"`
}

type command struct {
	Cmd   string         `json:"cmd"`
	Args  map[string]any `json:"args"`
	Nonce string         `json:"nonce"`
}

// Connect probes endpoint indices 0-9 and performs the handshake on the
// first endpoint that accepts a connection. A readable but malformed
// handshake acknowledgment discards the connection and fails the whole
// attempt.
func Connect(clientID string) (*Client, error) {
	var lastErr error

	for i := 0; i < endpointIndices; i++ {
		conn, err := dialEndpoint(i)
		if err != nil {
			lastErr = err
			continue
		}

		user, err := handshake(conn, clientID)
		if err != nil {
			conn.Close()
			if errors.Is(err, ErrMalformedHandshake) {
				return nil, &TransportError{Op: "handshake", Err: err}
			}
			lastErr = err
			continue
		}

		return &Client{conn: conn, user: user}, nil
	}

	if lastErr == nil {
		lastErr = ErrNoEndpoint
	}
	return nil, &TransportError{Op: "connect", Err: lastErr}
}

// handshake exchanges the client identifier for a READY acknowledgment
// carrying the authenticated user.
func handshake(conn net.Conn, clientID string) (User, error) {
	body, err := json.Marshal(handshakeRequest{V: 1, ClientID: clientID})
	if err != nil {
		return User{}, err
	}
	if err := writeFrame(conn, opHandshake, body); err != nil {
		return User{}, err
	}

	_, resp, err := readFrame(conn)
	if err != nil {
		return User{}, err
	}

	var ready handshakeResponse
	if err := json.Unmarshal(resp, &ready); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrMalformedHandshake, err)
	}
	if ready.Data.User.ID == "" {
		return User{}, ErrMalformedHandshake
	}

	return User{
		Username: ready.Data.User.Username,
		ID:       ready.Data.User.ID,
	}, nil
}

// User returns the authenticated user captured during the handshake.
func (c *Client) User() User {
	return c.user
}

// SetActivity pushes a presence payload.
func (c *Client) SetActivity(activity Activity) error {
	return c.sendActivity(&activity)
}

// ClearActivity clears the presence slot.
func (c *Client) ClearActivity() error {
	return c.sendActivity(nil)
}

func (c *Client) sendActivity(activity *Activity) error {
	cmd := command{
		Cmd: "SET_ACTIVITY",
		Args: map[string]any{
			"pid":      os.Getpid(),
			"activity": activity,
		},
		Nonce: newNonce(),
	}

	body, err := json.Marshal(cmd)
	if err != nil {
		return &TransportError{Op: "encode", Err: err}
	}
	if err := writeFrame(c.conn, opFrame, body); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func newNonce() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "0"
	}
	return hex.EncodeToString(buf)
}
