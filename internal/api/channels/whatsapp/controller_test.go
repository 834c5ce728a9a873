package whatsapp

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/config"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/leads"
)

func newWebhookRouter(t *testing.T, cfg *config.Config, sender *fakeSender) (*gin.Engine, *Dispatcher, leads.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, store := newTestService(t, sender)
	router := gin.New()
	dispatcher := RegisterRoutes(router, cfg, svc)
	return router, dispatcher, store
}

func messagePayload(from, name, text string) []byte {
	return []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{"id": "1", "changes": [{"field": "messages", "value": {
			"messaging_product": "whatsapp",
			"contacts": [{"profile": {"name": "` + name + `"}, "wa_id": "` + from + `"}],
			"messages": [{"from": "` + from + `", "id": "wamid.x", "timestamp": "0", "type": "text", "text": {"body": "` + text + `"}}]
		}}]}]
	}`)
}

func TestVerifyWebhook(t *testing.T) {
	cfg := &config.Config{VerifyToken: "pmx-verify-123", WorkerCount: 1}
	router, dispatcher, _ := newWebhookRouter(t, cfg, &fakeSender{})
	defer dispatcher.Close()

	cases := []struct {
		name  string
		query string
		want  int
		body  string
	}{
		{"valid", "hub.mode=subscribe&hub.verify_token=pmx-verify-123&hub.challenge=12345", http.StatusOK, "12345"},
		{"wrong token", "hub.mode=subscribe&hub.verify_token=nope&hub.challenge=12345", http.StatusForbidden, ""},
		{"wrong mode", "hub.mode=unsubscribe&hub.verify_token=pmx-verify-123&hub.challenge=12345", http.StatusForbidden, ""},
		{"missing params", "", http.StatusForbidden, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/webhooks/meta?"+tc.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
			if w.Body.String() != tc.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tc.body)
			}
		})
	}
}

func TestWebhookDeliveryFirstContact(t *testing.T) {
	cfg := &config.Config{VerifyToken: "pmx-verify-123", WorkerCount: 1}
	sender := &fakeSender{}
	router, dispatcher, store := newWebhookRouter(t, cfg, sender)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/meta",
		bytes.NewReader(messagePayload("5511999990000", "Maria", "oi")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	// Close drains the queue so the worker finishes before we assert.
	dispatcher.Close()

	if len(sender.messages()) != 2 {
		t.Fatalf("sent %d messages, want greeting + menu", len(sender.messages()))
	}

	lead, err := store.GetOrCreate(context.Background(), "5511999990000", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Name != "Maria" || lead.Stage != leads.StageMenu {
		t.Errorf("lead = name %q stage %q", lead.Name, lead.Stage)
	}
}

func TestWebhookDeliveryStatusesOnly(t *testing.T) {
	cfg := &config.Config{VerifyToken: "pmx-verify-123", WorkerCount: 1}
	sender := &fakeSender{}
	router, dispatcher, _ := newWebhookRouter(t, cfg, sender)

	payload := []byte(`{"entry":[{"changes":[{"value":{"statuses":[{"id":"wamid.x","status":"read"}]}}]}]}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/meta", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	dispatcher.Close()
	if len(sender.messages()) != 0 {
		t.Error("status callback triggered a send")
	}
}

func TestWebhookDeliveryMalformedPayload(t *testing.T) {
	cfg := &config.Config{VerifyToken: "pmx-verify-123", WorkerCount: 1}
	router, dispatcher, _ := newWebhookRouter(t, cfg, &fakeSender{})
	defer dispatcher.Close()

	for _, body := range []string{`not json`, `{}`, `{"entry":[]}`, `{"entry":[{"changes":[{"value":{}}]}]}`} {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/meta", bytes.NewReader([]byte(body)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status for %q = %d, want 200", body, w.Code)
		}
	}
}

func TestWebhookSignatureCheck(t *testing.T) {
	cfg := &config.Config{VerifyToken: "pmx-verify-123", AppSecret: "app-secret", WorkerCount: 1}
	sender := &fakeSender{}
	router, dispatcher, _ := newWebhookRouter(t, cfg, sender)
	defer dispatcher.Close()

	payload := messagePayload("5511999990000", "Maria", "oi")

	mac := hmac.New(sha256.New, []byte("app-secret"))
	mac.Write(payload)
	goodSig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/meta", bytes.NewReader(payload))
	req.Header.Set("X-Hub-Signature-256", goodSig)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid signature status = %d, want 200", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/webhooks/meta", bytes.NewReader(payload))
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("bad signature status = %d, want 403", w.Code)
	}
}
