package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type reply struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type errorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Room    string `json:"room"`
	Status  string `json:"status"`
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	return startHubWith(t, Options{WellKnownRooms: []string{"sys", "t1"}})
}

func startHubWith(t *testing.T, opts Options) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(opts)
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func send(t *testing.T, hub *Hub, c *Client, typ string, data any) {
	t.Helper()

	frame := map[string]any{"type": typ}
	if data != nil {
		frame["data"] = data
	}
	raw, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("marshal %s: %v", typ, err)
	}
	sendRaw(t, hub, c, raw)
}

func sendRaw(t *testing.T, hub *Hub, c *Client, raw []byte) {
	t.Helper()

	if err := hub.Dispatch(context.Background(), c, raw); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

// nextReply pops the next queued message of c.
func nextReply(t *testing.T, c *Client) reply {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	frame, err := c.Outbox().Pop(ctx)
	if err != nil {
		t.Fatalf("client %s: expected a message: %v", c.ID, err)
	}
	var r reply
	if err := json.Unmarshal(frame, &r); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	return r
}

// mustReply skips messages until one of the given type arrives.
func mustReply(t *testing.T, c *Client, typ string) reply {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r := nextReply(t, c)
		if r.Type == typ {
			return r
		}
	}
	t.Fatalf("client %s: expected reply type %s not received", c.ID, typ)
	return reply{}
}

func decode[T any](t *testing.T, r reply) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(r.Data, &v); err != nil {
		t.Fatalf("unmarshal %s data: %v", r.Type, err)
	}
	return v
}

// settle waits until every command submitted so far has been executed.
func settle(t *testing.T, hub *Hub) []RoomSnapshot {
	t.Helper()

	rooms, err := hub.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return rooms
}

// drain discards queued messages of c.
func drain(c *Client) {
	for c.Outbox().Len() > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		_, _ = c.Outbox().Pop(ctx)
		cancel()
	}
}

// expectClosed drains c until its outbox is closed and returns the types of
// the messages that were still queued.
func expectClosed(t *testing.T, c *Client) []string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var types []string
	for {
		frame, err := c.Outbox().Pop(ctx)
		if err == nil {
			var r reply
			if err := json.Unmarshal(frame, &r); err != nil {
				t.Fatalf("unmarshal reply: %v", err)
			}
			types = append(types, r.Type)
			continue
		}
		if !errors.Is(err, ErrOutboxClosed) {
			t.Fatalf("client %s: expected closed outbox, got %v", c.ID, err)
		}
		return types
	}
}

func connectClient(t *testing.T, hub *Hub, id, name, hotel string) *Client {
	t.Helper()

	c := NewClient(id, 0)
	if err := hub.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	send(t, hub, c, "connect", map[string]string{
		"name":    name,
		"mission": "hello",
		"figure":  "hd-180-1",
		"sex":     "M",
		"hotel":   hotel,
	})
	r := nextReply(t, c)
	if r.Type != "connect" || decode[errorData](t, r).Status != "success" {
		t.Fatalf("connect %s: unexpected reply %s %s", name, r.Type, r.Data)
	}
	return c
}

func roomNames(rooms []RoomSnapshot) []string {
	names := make([]string, 0, len(rooms))
	for _, r := range rooms {
		names = append(names, r.Name)
	}
	return names
}
