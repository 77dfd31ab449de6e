package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fairyhunter13/order-notify-relay/internal/config"
)

const userAgent = "order-notify-relay/0.1.0"

// Status tags a delivery Outcome.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome is the result of a single delivery attempt. It is created by the
// Notifier and consumed immediately by the caller; it is never persisted.
type Outcome struct {
	Status           Status
	ProviderResponse string // raw provider body, set when delivered
	Reason           string // set when skipped
	Err              error  // set when failed
}

// Delivered reports whether the message reached the provider.
func (o Outcome) Delivered() bool { return o.Status == StatusDelivered }

// Notifier sends notification texts to the WhatsApp Cloud API. Without
// credentials it runs in degraded mode: the message body is logged instead
// of sent, and no network I/O happens.
type Notifier struct {
	token       string
	phoneID     string
	destination string
	baseURL     string
	client      *http.Client
	logger      *slog.Logger
}

// NewNotifier builds a Notifier from the runtime configuration.
func NewNotifier(cfg config.Config, logger *slog.Logger) *Notifier {
	timeout := cfg.NotifyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		token:       cfg.WhatsAppToken,
		phoneID:     cfg.WhatsAppPhoneID,
		destination: cfg.NotifyDestination,
		baseURL:     strings.TrimRight(cfg.GraphAPIBaseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Configured reports whether credentials for real delivery are present.
func (n *Notifier) Configured() bool {
	return n.token != "" && n.phoneID != ""
}

type textBody struct {
	Body string `json:"body"`
}

type sendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

// Send makes exactly one delivery attempt for text and reports the outcome.
// Delivery is synchronous and bounded by the client timeout; there is no
// retry and no queue. Upstream retry behavior covers durability.
func (n *Notifier) Send(ctx context.Context, text string) Outcome {
	if !n.Configured() {
		n.logger.Info("delivery_skipped",
			"reason", "not configured",
			"message", text,
		)
		return Outcome{Status: StatusSkipped, Reason: "not configured"}
	}

	payload, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		To:               n.destination,
		Type:             "text",
		Text:             textBody{Body: text},
	})
	if err != nil {
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("encode send request: %w", err)}
	}

	url := n.baseURL + "/" + n.phoneID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("build send request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("delivery_failed", "error", err)
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("send whatsapp message: %w", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("whatsapp api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		n.logger.Error("delivery_failed", "status", resp.StatusCode, "error", err)
		return Outcome{Status: StatusFailed, Err: err}
	}

	n.logger.Info("delivery_ok", "status", resp.StatusCode, "to", n.destination)
	return Outcome{Status: StatusDelivered, ProviderResponse: string(body)}
}
