package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"carsplay/internal/rental/application/events"
)

func TestWebhookNotifierPayload(t *testing.T) {
	payloadCh := make(chan webhookPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var payload webhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		payloadCh <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel, err := NewWebhookChannel(server.URL)
	if err != nil {
		t.Fatalf("new webhook channel: %v", err)
	}
	notifier, err := NewChannelNotifier(channel)
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}

	notifier.Notify(context.Background(), events.SessionCompleted{
		StationID: "station-1",
		SessionID: "session-1",
		Minutes:   30,
		Amount:    100,
		At:        time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
	})

	select {
	case payload := <-payloadCh:
		if payload.MsgType != "text" {
			t.Fatalf("expected msgtype text, got %s", payload.MsgType)
		}
		content := payload.Text.Content
		checks := []string{
			"Time is up",
			"Station: station-1",
			"Planned: 30 min",
			"Amount: 100.00",
			"Completed: 2025-06-01T10:30:00Z",
		}
		for _, expected := range checks {
			if !strings.Contains(content, expected) {
				t.Fatalf("expected content to include %q, got %s", expected, content)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for webhook payload")
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.SessionCompleted
}

func (r *recordingNotifier) Notify(_ context.Context, event events.SessionCompleted) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordingNotifier) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestMultiNotifierFansOut(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}
	multi := NewMultiNotifier(first, nil, second)

	multi.Notify(context.Background(), events.SessionCompleted{StationID: "station-1"})

	if first.Count() != 1 || second.Count() != 1 {
		t.Fatalf("expected both notifiers to receive the event, got %d and %d", first.Count(), second.Count())
	}
}
