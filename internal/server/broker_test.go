package server

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/WEAV04/willy/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestBrokerFanOut(t *testing.T) {
	broker := NewBroker(testLogger())

	ch1 := broker.Subscribe()
	ch2 := broker.Subscribe()

	event := formatSSE("alert", `{"subject_id":"ana"}`)
	broker.broadcast(event)

	for _, ch := range []chan []byte{ch1, ch2} {
		select {
		case got := <-ch:
			if string(got) != string(event) {
				t.Errorf("got %q, want %q", got, event)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timed out waiting for event")
		}
	}

	// After unsubscribing ch1, only ch2 receives.
	broker.Unsubscribe(ch1)
	event2 := formatSSE("alert", `{"subject_id":"u2"}`)
	broker.broadcast(event2)

	select {
	case got := <-ch2:
		if string(got) != string(event2) {
			t.Errorf("got %q, want %q", got, event2)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for event after unsubscribe")
	}
	select {
	case got, ok := <-ch1:
		if ok {
			t.Errorf("closed channel delivered %q", got)
		}
	default:
	}
}

func TestBrokerNotifyFormatsAlert(t *testing.T) {
	broker := NewBroker(testLogger())
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	broker.Notify(context.Background(), model.AlertEvent{
		SubjectID:   "ana",
		Caregiver:   &model.CaregiverContact{Name: "Lucía", Phone: "+34600000000"},
		LastMessage: "me caí",
		Timestamp:   time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC),
	})

	select {
	case got := <-ch:
		s := string(got)
		if !strings.HasPrefix(s, "event: alert\ndata: ") {
			t.Errorf("unexpected SSE framing: %q", s)
		}
		if !strings.Contains(s, `"subject_id":"ana"`) || !strings.Contains(s, "Lucía") {
			t.Errorf("alert payload missing fields: %q", s)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for alert")
	}
}

func TestBrokerSlowSubscriberDoesNotBlock(t *testing.T) {
	broker := NewBroker(testLogger())
	slow := broker.Subscribe()
	defer broker.Unsubscribe(slow)

	// Fill the slow subscriber's buffer; further broadcasts must not hang.
	event := formatSSE("alert", "{}")
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			broker.broadcast(event)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}
}
