package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

// readEvent reads one SSE event and returns its name and data.
func readEvent(t *testing.T, r *bufio.Reader) (string, Event) {
	t.Helper()
	var name string
	var ev Event
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				t.Fatalf("decode event: %v", err)
			}
		case line == "" && name != "":
			return name, ev
		}
	}
}

func TestEventsSSE(t *testing.T) {
	e := newTestEnv(t, nil)
	code, tok := e.register(t, "Lyra", 1, 2)

	srv := httptest.NewServer(e.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?token="+tok, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	name, ev := readEvent(t, r)
	if name != EventState || ev.Stage != 1 || ev.Phase != 1 || ev.Health != 100 {
		t.Fatalf("first event = %s %+v", name, ev)
	}

	e.broker.Publish(code, Event{Type: EventRefuel, Stage: 1, Phase: 1, Health: 100})
	name, ev = readEvent(t, r)
	if name != "update" || ev.Type != EventRefuel {
		t.Errorf("update = %s %+v", name, ev)
	}
}

func TestEventsRequireSession(t *testing.T) {
	e := newTestEnv(t, nil)

	for _, path := range []string{"/events", "/events?token=bogus", "/events/ws?token=bogus"} {
		rec := e.do(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s = %d, want 401", path, rec.Code)
		}
	}
}

func TestEventsWebSocket(t *testing.T) {
	e := newTestEnv(t, nil)
	code, tok := e.register(t, "Draco", 1, 2)

	srv := httptest.NewServer(e.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):] + "/events/ws?token=" + tok
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	read := func() Event {
		t.Helper()
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return ev
	}

	if ev := read(); ev.Type != EventState || ev.Health != 100 {
		t.Fatalf("first message = %+v", ev)
	}

	// The handler subscribes before writing the state message, so this
	// publish cannot be missed.
	e.broker.Publish(code, Event{Type: EventAnswer, Stage: 1, Phase: 2, Health: 100})
	if ev := read(); ev.Type != EventAnswer || ev.Phase != 2 {
		t.Errorf("update = %+v", ev)
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}
