package integration

import (
	"bytes"
	"net/http"
	"testing"
)

func TestIntegration_WebhookEdgeCases(t *testing.T) {
	rl := startRelay(t, testSecret, http.StatusOK)

	cases := []struct {
		name, body, sig string
		want            int
	}{
		{"missing_signature", orderBody, "", http.StatusUnauthorized},
		{"whitespace_header", orderBody, "   ", http.StatusUnauthorized},
		{"garbage_header", orderBody, "!!!", http.StatusUnauthorized},
		{"signed_empty_body", "", sign(testSecret, nil), http.StatusOK},
		{"signed_empty_json", "{}", sign(testSecret, []byte("{}")), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postWebhook(t, rl.URL, tc.sig, []byte(tc.body))
			defer resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, resp.StatusCode)
			}
		})
	}
}

func TestIntegration_UnknownRoute(t *testing.T) {
	rl := startRelay(t, testSecret, http.StatusOK)
	resp, err := http.Get(rl.URL + "/webhooks/orders/delete")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestIntegration_WrongMethods(t *testing.T) {
	rl := startRelay(t, testSecret, http.StatusOK)

	resp, err := http.Get(rl.URL + "/webhooks/orders/create")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET webhook: expected 405, got %d", resp.StatusCode)
	}

	resp, err = http.Post(rl.URL+"/health", "application/json", bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health stays 200 for any method, got %d", resp.StatusCode)
	}
}
