package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWebhookChannelSend(t *testing.T) {
	t.Parallel()

	var gotPayload webhookPayload
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(srv.URL, 5*time.Second)
	if err := ch.Send(context.Background(), Message{Text: "MacBook Air M4 spotted"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotPayload.Text != "MacBook Air M4 spotted" {
		t.Fatalf("expected text field in payload, got %+v", gotPayload)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotContentType)
	}
}

func TestWebhookChannelNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(srv.URL, 5*time.Second)
	if err := ch.Send(context.Background(), Message{Text: "x"}); err == nil {
		t.Fatal("expected error for non-2xx webhook response")
	}
}
