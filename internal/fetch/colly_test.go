package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/mizutanik/refurbwatch/internal/config"
)

func testHTTPConfig() config.HTTPConfig {
	return config.HTTPConfig{
		UserAgent:      "refurbwatch-test/1.0",
		AcceptLanguage: "ja-JP,ja;q=0.9",
		TimeoutSeconds: 5,
	}
}

func TestClientFetchSuccess(t *testing.T) {
	t.Parallel()

	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>refurb page</body></html>"))
	}))
	defer srv.Close()

	client, err := NewClient(testHTTPConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	page, err := client.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", page.StatusCode)
	}
	if string(page.Body) != "<html><body>refurb page</body></html>" {
		t.Fatalf("unexpected body %q", page.Body)
	}
	if gotUA != "refurbwatch-test/1.0" {
		t.Fatalf("expected configured user agent, server saw %q", gotUA)
	}
	if gotLang != "ja-JP,ja;q=0.9" {
		t.Fatalf("expected configured accept-language, server saw %q", gotLang)
	}
}

func TestClientFetchNon2xx(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
	}{
		{name: "not found", status: http.StatusNotFound},
		{name: "service unavailable", status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client, err := NewClient(testHTTPConfig(), zap.NewNop())
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}

			_, err = client.Fetch(context.Background(), srv.URL)
			if err == nil {
				t.Fatal("expected fetch error for non-2xx status")
			}
			var ferr *Error
			if !errors.As(err, &ferr) {
				t.Fatalf("expected *fetch.Error, got %T: %v", err, err)
			}
			if ferr.StatusCode != tt.status {
				t.Fatalf("expected status %d in error, got %d", tt.status, ferr.StatusCode)
			}
		})
	}
}

func TestClientFetchTransportFailure(t *testing.T) {
	t.Parallel()

	client, err := NewClient(testHTTPConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	// A just-closed listener refuses connections immediately.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL
	srv.Close()

	_, err = client.Fetch(context.Background(), target)
	if err == nil {
		t.Fatal("expected transport error")
	}
	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *fetch.Error, got %T: %v", err, err)
	}
}

func TestErrorMessageIncludesStatus(t *testing.T) {
	t.Parallel()

	err := &Error{URL: "https://example.com/x", StatusCode: 503}
	if got := err.Error(); got != "fetch https://example.com/x: status 503" {
		t.Fatalf("unexpected error text %q", got)
	}
}
