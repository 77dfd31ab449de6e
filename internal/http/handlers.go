package httpapi

import (
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fairyhunter13/order-notify-relay/internal/config"
	"github.com/fairyhunter13/order-notify-relay/internal/model"
	"github.com/fairyhunter13/order-notify-relay/internal/notify"
	"github.com/fairyhunter13/order-notify-relay/internal/obs"
	httpopenapi "github.com/fairyhunter13/order-notify-relay/internal/http/openapi"
	"github.com/fairyhunter13/order-notify-relay/internal/webhook"
	"github.com/google/uuid"
)

// HMACHeader is the signature header set by Shopify on webhook deliveries.
const HMACHeader = "X-Shopify-Hmac-Sha256"

const maxBodyBytes = 1 << 20

var endpoints = []string{
	"GET /",
	"GET /health",
	"POST /test",
	"POST /webhooks/orders/create",
	"GET /openapi.yaml",
	"GET /docs",
	"GET /debug/vars",
}

var (
	webhooksReceived  = expvar.NewInt("webhooks_received")
	webhooksRejected  = expvar.NewInt("webhooks_rejected")
	payloadErrors     = expvar.NewInt("payload_errors")
	messagesDelivered = expvar.NewInt("messages_delivered")
)

type App struct {
	Cfg      config.Config
	Verifier *webhook.Verifier
	Notifier *notify.Notifier
	Loc      *time.Location
	started  time.Time
}

// webhookAck is the response to a processed orders/create webhook. It is
// returned with HTTP 200 even when delivery failed; only signature failures
// produce a non-200 status, so the sender never retries application bugs.
type webhookAck struct {
	Status      string `json:"status"`
	OrderNumber int64  `json:"order_number"`
	TookMs      int64  `json:"took_ms"`
	Delivered   bool   `json:"delivered"`
	RequestID   string `json:"request_id"`
}

func NewApp(cfg config.Config, v *webhook.Verifier, n *notify.Notifier, loc *time.Location) *App {
	if loc == nil {
		loc = time.UTC
	}
	return &App{Cfg: cfg, Verifier: v, Notifier: n, Loc: loc, started: time.Now()}
}

// rootHandler serves the status summary on "/" and the JSON 404 with the
// endpoint list for every unmatched path.
func (a *App) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteJSON(w, http.StatusNotFound, map[string]any{
			"error":     "not_found",
			"endpoints": endpoints,
		})
		return
	}
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"service":             "order-notify-relay",
		"status":              "ok",
		"auth_mode":           a.Verifier.Mode().String(),
		"delivery_configured": a.Notifier.Configured(),
		"store":               a.Cfg.StoreName,
		"display_timezone":    a.Loc.String(),
		"endpoints":           endpoints,
	})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"uptime_sec": time.Since(a.started).Seconds(),
	})
}

// testHandler pushes a synthetic message through the notifier so operators
// can check credentials without waiting for a real order.
func (a *App) testHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	text := fmt.Sprintf("🧪 Test notification %s from %s", uuid.NewString(), a.Cfg.StoreName)
	out := a.Notifier.Send(r.Context(), text)
	resp := map[string]any{
		"status":    string(out.Status),
		"delivered": out.Delivered(),
	}
	if out.Reason != "" {
		resp["reason"] = out.Reason
	}
	if out.Err != nil {
		resp["error"] = out.Err.Error()
	}
	WriteJSON(w, http.StatusOK, resp)
}

// orderWebhookHandler runs the pipeline for one orders/create event:
// verify the raw bytes, decode the order, format the message, attempt
// delivery once, ack with the outcome.
func (a *App) orderWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	start := time.Now()
	reqID := RequestIDFromContext(r.Context())
	webhooksReceived.Add(1)

	// Processing bugs past this point must not surface as non-200: the
	// sender would retry them indefinitely.
	defer func() {
		if rec := recover(); rec != nil {
			obs.Logger.Error("webhook_processing_panic", "panic", rec, "request_id", reqID)
			payloadErrors.Add(1)
			WriteJSON(w, http.StatusOK, map[string]string{"status": "error_logged"})
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		obs.Logger.Error("webhook_body_read_failed", "error", err, "request_id", reqID)
		payloadErrors.Add(1)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "error_logged"})
		return
	}

	// Verification runs on the exact bytes received, before any decoding.
	if !a.Verifier.Verify(body, r.Header.Get(HMACHeader)) {
		webhooksRejected.Add(1)
		obs.Logger.Warn("webhook_rejected", "reason", "invalid_signature", "request_id", reqID)
		WriteJSONError(w, http.StatusUnauthorized, "invalid_signature", "")
		return
	}
	obs.Logger.Info("webhook_verified", "mode", a.Verifier.Mode().String(), "request_id", reqID)

	var order model.Order
	if err := json.Unmarshal(body, &order); err != nil {
		payloadErrors.Add(1)
		obs.Logger.Error("order_decode_failed", "error", err, "request_id", reqID)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "error_logged"})
		return
	}

	text := notify.FormatOrderMessage(order, a.Cfg.StoreName, a.Loc)
	out := a.Notifier.Send(r.Context(), text)
	if out.Delivered() {
		messagesDelivered.Add(1)
	}

	took := time.Since(start)
	ack := webhookAck{
		Status:      "processed",
		OrderNumber: order.OrderNumber,
		TookMs:      took.Milliseconds(),
		Delivered:   out.Delivered(),
		RequestID:   reqID,
	}
	WriteJSON(w, http.StatusOK, ack)
	obs.Logger.Info("webhook_processed",
		"order_number", order.OrderNumber,
		"delivery_status", string(out.Status),
		"delivered", out.Delivered(),
		"took_ms", took.Milliseconds(),
		"request_id", reqID,
	)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
