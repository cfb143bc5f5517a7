package willy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// mockServer creates an httptest server that mimics the Willy API.
func mockServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	// Always register auth endpoint.
	if _, ok := handlers["POST /auth/token"]; !ok {
		mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"data": map[string]any{
					"token":      "test-token-xyz",
					"expires_at": time.Now().Add(1 * time.Hour).Format(time.RFC3339),
				},
			})
		})
	}

	for pattern, handler := range handlers {
		mux.HandleFunc(pattern, handler)
	}

	return httptest.NewServer(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:   serverURL,
		ServiceID: "test-service",
		APIKey:    "test-key",
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClientValidation(t *testing.T) {
	cases := []Config{
		{ServiceID: "s", APIKey: "k"},
		{BaseURL: "http://x", APIKey: "k"},
		{BaseURL: "http://x", ServiceID: "s"},
	}
	for _, cfg := range cases {
		if _, err := NewClient(cfg); err == nil {
			t.Errorf("NewClient(%+v) expected error, got nil", cfg)
		}
	}
}

func TestSendMessageReturnsDirective(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"POST /v1/messages": func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test-token-xyz" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{
					"error": map[string]any{"code": "UNAUTHORIZED", "message": "bad token"},
				})
				return
			}
			var req MessageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.SubjectID != "user-1" {
				t.Errorf("subject_id = %q, want user-1", req.SubjectID)
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"data": MessageResponse{
					Directive: Directive{
						BaseMessage:           "Lo que sientes importa.",
						NeedsExternalPhrasing: true,
						SuggestedAction:       ActionGuideToProfessionalHelp,
						Mode:                  ModeCrisis,
					},
					Classification: Classification{
						Emotion: "desesperanza",
						Crisis:  &CrisisVerdict{Category: "suicidal_ideation", Urgency: "high"},
					},
				},
			})
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	resp, err := client.SendMessage(context.Background(), MessageRequest{
		SubjectID: "user-1",
		Text:      "quiero desaparecer",
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if resp.Directive.Mode != ModeCrisis {
		t.Errorf("mode = %q, want %q", resp.Directive.Mode, ModeCrisis)
	}
	if resp.Directive.SuggestedAction != ActionGuideToProfessionalHelp {
		t.Errorf("action = %q", resp.Directive.SuggestedAction)
	}
	if resp.Classification.Crisis == nil || resp.Classification.Crisis.Category != "suicidal_ideation" {
		t.Errorf("unexpected crisis verdict: %+v", resp.Classification.Crisis)
	}
}

func TestTokenIsCachedAcrossRequests(t *testing.T) {
	var authCalls atomic.Int32

	srv := mockServer(t, map[string]http.HandlerFunc{
		"POST /auth/token": func(w http.ResponseWriter, r *http.Request) {
			authCalls.Add(1)
			writeJSON(w, http.StatusOK, map[string]any{
				"data": map[string]any{
					"token":      "test-token-xyz",
					"expires_at": time.Now().Add(1 * time.Hour).Format(time.RFC3339),
				},
			})
		},
		"GET /v1/subjects/user-1/mode": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"data": ModeStatus{SubjectID: "user-1", Mode: ModeNormal},
			})
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	for range 3 {
		if _, err := client.ModeStatus(context.Background(), "user-1"); err != nil {
			t.Fatalf("ModeStatus failed: %v", err)
		}
	}
	if got := authCalls.Load(); got != 1 {
		t.Errorf("auth calls = %d, want 1", got)
	}
}

func TestExpiredTokenIsRefreshed(t *testing.T) {
	var authCalls atomic.Int32

	srv := mockServer(t, map[string]http.HandlerFunc{
		"POST /auth/token": func(w http.ResponseWriter, r *http.Request) {
			authCalls.Add(1)
			// Expires inside the refresh margin, forcing a new token next call.
			writeJSON(w, http.StatusOK, map[string]any{
				"data": map[string]any{
					"token":      "test-token-xyz",
					"expires_at": time.Now().Add(5 * time.Second).Format(time.RFC3339),
				},
			})
		},
		"GET /v1/subjects/user-1/mode": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"data": ModeStatus{SubjectID: "user-1", Mode: ModeNormal},
			})
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	for range 2 {
		if _, err := client.ModeStatus(context.Background(), "user-1"); err != nil {
			t.Fatalf("ModeStatus failed: %v", err)
		}
	}
	if got := authCalls.Load(); got != 2 {
		t.Errorf("auth calls = %d, want 2", got)
	}
}

func TestStartSupervision(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"POST /v1/supervision/ana/start": func(w http.ResponseWriter, r *http.Request) {
			var req StartSupervisionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.Caregiver == nil || req.Caregiver.Name != "Lucía" {
				t.Errorf("caregiver = %+v", req.Caregiver)
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"data": Directive{
					BaseMessage:     "Estoy al pendiente.",
					SuggestedAction: ActionContinueNormal,
					Mode:            ModeSupervision,
				},
			})
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	directive, err := client.StartSupervision(context.Background(), "ana", StartSupervisionRequest{
		Profile:   "Ana, 6 años",
		Caregiver: &CaregiverContact{Name: "Lucía", Relationship: "madre", Phone: "+34600000000"},
	})
	if err != nil {
		t.Fatalf("StartSupervision failed: %v", err)
	}
	if directive.Mode != ModeSupervision {
		t.Errorf("mode = %q, want %q", directive.Mode, ModeSupervision)
	}
}

func TestRecordEventWithoutConsentIsForbidden(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"POST /v1/events": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error": map[string]any{
					"code":    "FORBIDDEN",
					"message": "critical events require subject consent",
				},
			})
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.RecordEvent(context.Background(), RecordEventRequest{
		SubjectID: "user-1",
		EventType: "CrisisEpisode",
		Consented: false,
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsForbidden(err) {
		t.Errorf("IsForbidden = false for %v", err)
	}
	if !strings.Contains(err.Error(), "consent") {
		t.Errorf("error message %q does not mention consent", err)
	}
}

func TestListAlerts(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"GET /v1/subjects/ana/alerts": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("limit = %q, want 5", got)
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"data": []Alert{
					{
						SubjectID:   "ana",
						Caregiver:   &CaregiverContact{Name: "Lucía", Phone: "+34600000000"},
						LastMessage: "me caí pero estoy bien",
						Timestamp:   time.Now().UTC(),
					},
				},
			})
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	alerts, err := client.ListAlerts(context.Background(), "ana", 5)
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("len(alerts) = %d, want 1", len(alerts))
	}
	if alerts[0].Caregiver.Name != "Lucía" {
		t.Errorf("caregiver = %q", alerts[0].Caregiver.Name)
	}
}

func TestSubscribeAlertsDeliversEvents(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"GET /v1/alerts/subscribe": func(w http.ResponseWriter, r *http.Request) {
			flusher, ok := w.(http.Flusher)
			if !ok {
				t.Fatal("response writer is not a flusher")
			}
			w.Header().Set("Content-Type", "text/event-stream")
			w.WriteHeader(http.StatusOK)

			alert, _ := json.Marshal(Alert{SubjectID: "ana", LastMessage: "me duele mucho"})
			// Keepalive comment first, then one alert event.
			w.Write([]byte(":keepalive\n\n"))
			w.Write([]byte("event: alert\ndata: " + string(alert) + "\n\n"))
			flusher.Flush()
		},
	})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := newTestClient(t, srv.URL)
	ch, err := client.SubscribeAlerts(ctx)
	if err != nil {
		t.Fatalf("SubscribeAlerts failed: %v", err)
	}

	select {
	case alert, ok := <-ch:
		if !ok {
			t.Fatal("channel closed before delivering an alert")
		}
		if alert.SubjectID != "ana" {
			t.Errorf("subject_id = %q, want ana", alert.SubjectID)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for alert")
	}
}

func TestHealthNeedsNoAuth(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"POST /auth/token": func(w http.ResponseWriter, r *http.Request) {
			t.Error("health check should not authenticate")
		},
		"GET /health": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"data": HealthResponse{Status: "healthy", Database: "healthy"},
			})
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	health, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("status = %q", health.Status)
	}
}

func TestErrorEnvelopeParsing(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"GET /v1/subjects/missing/mode": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": map[string]any{"code": "NOT_FOUND", "message": "no such subject"},
			})
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ModeStatus(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound = false for %v", err)
	}
	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("error string %q missing code", err)
	}
}
