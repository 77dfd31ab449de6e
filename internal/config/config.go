// Package config provides runtime configuration values for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultDestinationPlaceholder is the recipient value used when no real
// destination has been configured. Delivery still requires credentials, so
// the placeholder never reaches the provider.
const DefaultDestinationPlaceholder = "REPLACE_WITH_RECIPIENT"

// Config holds configuration knobs for the HTTP server and the
// verification/notification pipeline. It is constructed once at startup and
// passed explicitly into each component; nothing reads it globally.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Shared secret for webhook signature verification. Empty selects
	// permissive mode: every payload is accepted unverified.
	WebhookSecret string

	// WhatsApp Cloud API credentials. Both must be set for delivery;
	// otherwise the notifier runs in degraded (log-only) mode.
	WhatsAppToken   string
	WhatsAppPhoneID string

	// Destination phone number for order notifications.
	NotifyDestination string
	NotifyTimeout     time.Duration

	// Base URL of the messaging API, overridable in tests.
	GraphAPIBaseURL string

	StoreName       string
	DisplayTimezone string
}

// fileValues mirrors Config for the optional TOML configuration file.
type fileValues struct {
	HTTPAddr          string `toml:"http_addr"`
	WebhookSecret     string `toml:"webhook_secret"`
	WhatsAppToken     string `toml:"whatsapp_token"`
	WhatsAppPhoneID   string `toml:"whatsapp_phone_id"`
	NotifyDestination string `toml:"notify_destination"`
	GraphAPIBaseURL   string `toml:"graph_api_base_url"`
	StoreName         string `toml:"store_name"`
	DisplayTimezone   string `toml:"display_timezone"`
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from the environment with defaults. When
// CONFIG_FILE points at a TOML file, its values act as the base and the
// environment overrides them, so a deployment can mix both.
func Load() (Config, error) {
	var fv fileValues
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(raw, &fv); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	addr := getenv("HTTP_ADDR", pick(fv.HTTPAddr, ":3000"))
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	return Config{
		HTTPAddr:          addr,
		ShutdownTimeout:   durenvs("SHUTDOWN_TIMEOUT", 15),
		WebhookSecret:     getenv("SHOPIFY_WEBHOOK_SECRET", fv.WebhookSecret),
		WhatsAppToken:     getenv("WHATSAPP_TOKEN", fv.WhatsAppToken),
		WhatsAppPhoneID:   getenv("WHATSAPP_PHONE_ID", fv.WhatsAppPhoneID),
		NotifyDestination: getenv("NOTIFY_DESTINATION", pick(fv.NotifyDestination, DefaultDestinationPlaceholder)),
		NotifyTimeout:     durenvs("NOTIFY_TIMEOUT", 10),
		GraphAPIBaseURL:   getenv("GRAPH_API_BASE_URL", pick(fv.GraphAPIBaseURL, "https://graph.facebook.com/v18.0")),
		StoreName:         getenv("STORE_NAME", pick(fv.StoreName, "Online Store")),
		DisplayTimezone:   getenv("DISPLAY_TIMEZONE", pick(fv.DisplayTimezone, "UTC")),
	}, nil
}

func pick(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// AuthEnforced reports whether webhook signatures will be verified.
func (c Config) AuthEnforced() bool { return c.WebhookSecret != "" }

// DeliveryConfigured reports whether the notifier has credentials to reach
// the messaging API.
func (c Config) DeliveryConfigured() bool {
	return c.WhatsAppToken != "" && c.WhatsAppPhoneID != ""
}

// Location resolves the configured display timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.DisplayTimezone)
}
