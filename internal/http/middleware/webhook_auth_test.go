package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func callWebhookAuth(secret, key string) *httptest.ResponseRecorder {
	mw := WebhookAPIKey(secret)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/bot", nil)
	if key != "" {
		req.Header.Set("X-Api-Key", key)
	}
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)
	return rec
}

func TestWebhookAPIKeyMissingIsUnauthorized(t *testing.T) {
	rec := callWebhookAuth("sekret", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWebhookAPIKeyMismatchIsForbidden(t *testing.T) {
	rec := callWebhookAuth("sekret", "wrong")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestWebhookAPIKeyMatchPasses(t *testing.T) {
	rec := callWebhookAuth("sekret", "sekret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestWebhookAPIKeyDisabledWithoutSecret(t *testing.T) {
	rec := callWebhookAuth("", "anything")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when no secret configured, got %d", rec.Code)
	}
}
