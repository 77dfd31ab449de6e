package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fairyhunter13/order-notify-relay/internal/config"
	"github.com/fairyhunter13/order-notify-relay/internal/obs"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		WhatsAppToken:     "test-token",
		WhatsAppPhoneID:   "12345",
		NotifyDestination: "15550001111",
		NotifyTimeout:     2 * time.Second,
		GraphAPIBaseURL:   baseURL,
	}
}

func TestSend_SkippedWithoutCredentials(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.WhatsAppToken = ""
	n := NewNotifier(cfg, obs.InitLogger())
	out := n.Send(context.Background(), "hello")
	if out.Status != StatusSkipped || out.Reason != "not configured" {
		t.Fatalf("expected skipped outcome, got %+v", out)
	}
	if out.Delivered() {
		t.Fatalf("skipped outcome must not report delivered")
	}
	if hits.Load() != 0 {
		t.Fatalf("degraded mode must not perform network I/O")
	}
}

func TestSend_Delivered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/12345/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		var req sendRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			t.Errorf("request body: %v", err)
		}
		if req.MessagingProduct != "whatsapp" || req.Type != "text" {
			t.Errorf("unexpected request %+v", req)
		}
		if req.To != "15550001111" || req.Text.Body != "order text" {
			t.Errorf("unexpected destination/body %+v", req)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	n := NewNotifier(testConfig(srv.URL), obs.InitLogger())
	out := n.Send(context.Background(), "order text")
	if !out.Delivered() {
		t.Fatalf("expected delivered, got %+v", out)
	}
	if !strings.Contains(out.ProviderResponse, "wamid.1") {
		t.Fatalf("expected provider response captured, got %q", out.ProviderResponse)
	}
}

func TestSend_FailedOnProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad token"}}`))
	}))
	defer srv.Close()

	n := NewNotifier(testConfig(srv.URL), obs.InitLogger())
	out := n.Send(context.Background(), "order text")
	if out.Status != StatusFailed || out.Err == nil {
		t.Fatalf("expected failed outcome, got %+v", out)
	}
	if !strings.Contains(out.Err.Error(), "401") || !strings.Contains(out.Err.Error(), "bad token") {
		t.Fatalf("expected provider error surfaced, got %v", out.Err)
	}
}

func TestSend_FailedOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	n := NewNotifier(testConfig(srv.URL), obs.InitLogger())
	out := n.Send(context.Background(), "order text")
	if out.Status != StatusFailed || out.Err == nil {
		t.Fatalf("expected failed outcome on network error, got %+v", out)
	}
}

func TestSend_SingleAttempt(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(testConfig(srv.URL), obs.InitLogger())
	_ = n.Send(context.Background(), "order text")
	if hits.Load() != 1 {
		t.Fatalf("expected exactly one delivery attempt, got %d", hits.Load())
	}
}
