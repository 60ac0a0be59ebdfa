package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/careview/internal/config"
)

type payload struct {
	Value *float64 `json:"value"`
}

func newTestClient(url string) *Client {
	return NewClient(config.UpstreamConfig{BaseURL: url + "/"}, nil)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c := newTestClient("https://api.example.com")
	if c.baseURL != "https://api.example.com" {
		t.Errorf("baseURL = %s, should not have trailing slash", c.baseURL)
	}
	if c.httpClient.Timeout != 0 {
		t.Errorf("expected no client timeout, got %v", c.httpClient.Timeout)
	}
}

func TestGetJSONForwardsAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/expected-effect" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("Authorization = %q, want Bearer abc", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value": 80.5}`)
	}))
	defer server.Close()

	var out payload
	if err := newTestClient(server.URL).GetJSON(context.Background(), "/api/expected-effect", "Bearer abc", &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out.Value == nil || *out.Value != 80.5 {
		t.Errorf("value = %v, want 80.5", out.Value)
	}
}

func TestGetJSONWithoutAuthorizationSendsNoHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Error("Authorization header must not be sent when empty")
		}
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	var out payload
	if err := newTestClient(server.URL).GetJSON(context.Background(), "/x", "", &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
}

func TestGetJSONNullLeavesOutNil(t *testing.T) {
	for _, body := range []string{"null", "", "  "} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))

		var out *payload
		err := newTestClient(server.URL).GetJSON(context.Background(), "/x", "", &out)
		server.Close()

		if err != nil {
			t.Fatalf("body %q: GetJSON() error = %v", body, err)
		}
		if out != nil {
			t.Errorf("body %q: expected nil result, got %+v", body, out)
		}
	}
}

func TestGetJSONStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"토큰이 유효하지 않습니다."}`)
	}))
	defer server.Close()

	var out payload
	err := newTestClient(server.URL).GetJSON(context.Background(), "/x", "Bearer bad", &out)
	if err == nil {
		t.Fatal("expected error")
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if se.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", se.StatusCode)
	}
	if !IsUnauthorized(err) {
		t.Error("IsUnauthorized should be true")
	}
	if got := ErrorMessage(err, "fallback"); got != "토큰이 유효하지 않습니다." {
		t.Errorf("ErrorMessage = %q", got)
	}
}

func TestGetJSONMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	}))
	defer server.Close()

	var out payload
	if err := newTestClient(server.URL).GetJSON(context.Background(), "/x", "", &out); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestGetJSONCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out payload
	err := newTestClient(server.URL).GetJSON(ctx, "/x", "", &out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
