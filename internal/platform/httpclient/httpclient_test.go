package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewWithBaseURL_RequiereBase(t *testing.T) {
	if _, err := NewWithBaseURL("", time.Second); err == nil {
		t.Fatalf("expected error for empty base url")
	}
	if _, err := NewWithBaseURL("   ", time.Second); err == nil {
		t.Fatalf("expected error for blank base url")
	}
	if _, err := NewWithBaseURL("::not-a-url", time.Second); err == nil {
		t.Fatalf("expected error for malformed base url")
	}
}

func TestDoJSON_ResuelvePathContraBase(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/ping" {
			t.Errorf("path = %q, want /v1/ping", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "k123" {
			t.Errorf("X-Api-Key = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c, err := NewWithBaseURL(ts.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("NewWithBaseURL: %v", err)
	}

	var out struct {
		OK bool `json:"ok"`
	}
	// Path sin slash inicial: el cliente lo normaliza.
	err = c.DoJSON(context.Background(), "GET", "v1/ping", map[string]string{"X-Api-Key": "k123"}, nil, &out)
	if err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if !out.OK {
		t.Fatalf("out.OK = false")
	}
}

func TestDoJSON_MapeaNo2xxAHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	c, err := NewWithBaseURL(ts.URL, time.Second)
	if err != nil {
		t.Fatalf("NewWithBaseURL: %v", err)
	}

	err = c.DoJSON(context.Background(), "GET", "/x", nil, nil, nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusBadGateway || httpErr.Body != "boom" {
		t.Fatalf("HTTPError = %+v", httpErr)
	}
}
