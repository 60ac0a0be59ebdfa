package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultAPIBase = "http://localhost:8080"
)

var (
	apiBase  string
	token    string
	devAuth  bool
	client   = &http.Client{Timeout: 30 * time.Second, CheckRedirect: noRedirect}
	reportID string
)

func main() {
	fmt.Println("=== Care View Smoke Test ===")
	fmt.Println()

	apiBase = strings.TrimRight(getEnv("API_BASE_URL", defaultAPIBase), "/")
	token = getEnv("SMOKE_TOKEN", "")
	devAuth = getEnv("SMOKE_DEV_AUTH", "") == "1"

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("Token: %s\n", maskString(token))
	fmt.Println()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Dev Token", testDevToken},
		{"Dashboard", testDashboard},
		{"Expected Effect", testEffect},
		{"Create Report (CSV)", testCreateReport},
		{"List Reports", testListReports},
		{"Download Report", testDownloadReport},
		{"Delete Report", testDeleteReport},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	_, err := do(http.MethodGet, "/healthz", nil, http.StatusOK)
	return err
}

// testDevToken получает dev-токен, если SMOKE_TOKEN не задан и SMOKE_DEV_AUTH=1
func testDevToken() error {
	if token != "" || !devAuth {
		return nil
	}

	body, err := do(http.MethodPost, "/v1/auth/dev", map[string]string{"user_id": "smoke"}, http.StatusOK)
	if err != nil {
		return err
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("empty access_token")
	}
	token = resp.AccessToken
	return nil
}

func testDashboard() error {
	body, err := do(http.MethodGet, "/v1/dashboard", nil, http.StatusOK)
	if err != nil {
		return err
	}
	return expectState(body, "ready")
}

func testEffect() error {
	body, err := do(http.MethodGet, "/v1/effect", nil, http.StatusOK)
	if err != nil {
		return err
	}
	if token == "" {
		return expectState(body, "unauthenticated")
	}
	return expectState(body, "ready", "unavailable")
}

func testCreateReport() error {
	kind := "dashboard"
	if token != "" {
		kind = "all"
	}

	body, err := do(http.MethodPost, "/v1/reports", map[string]string{"kind": kind, "format": "csv"}, http.StatusCreated)
	if err != nil {
		return err
	}

	var resp struct {
		ID          string `json:"id"`
		DownloadURL string `json:"download_url"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if resp.ID == "" || resp.DownloadURL == "" {
		return fmt.Errorf("incomplete report: %s", string(body))
	}
	reportID = resp.ID
	return nil
}

func testListReports() error {
	body, err := do(http.MethodGet, "/v1/reports?limit=10", nil, http.StatusOK)
	if err != nil {
		return err
	}

	var resp struct {
		Reports []struct {
			ID string `json:"id"`
		} `json:"reports"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	for _, r := range resp.Reports {
		if r.ID == reportID {
			return nil
		}
	}
	return fmt.Errorf("report %s not listed", reportID)
}

// testDownloadReport accepts both a streamed file and a redirect to S3.
func testDownloadReport() error {
	req, err := newRequest(http.MethodGet, "/v1/reports/"+reportID+"/download", nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusFound:
		if resp.Header.Get("Location") == "" {
			return fmt.Errorf("redirect without Location")
		}
		return nil
	case http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if !bytes.HasPrefix(body, []byte("section,series,label,value")) {
			return fmt.Errorf("unexpected csv: %.80s", string(body))
		}
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}
}

func testDeleteReport() error {
	_, err := do(http.MethodDelete, "/v1/reports/"+reportID, nil, http.StatusNoContent)
	return err
}

// ---- helpers ----

func newRequest(method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func do(method, path string, payload any, wantStatus int) ([]byte, error) {
	req, err := newRequest(method, path, payload)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("status=%d body=%.4096s", resp.StatusCode, string(body))
	}
	return body, nil
}

func expectState(body []byte, allowed ...string) error {
	var view struct {
		State   string `json:"state"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &view); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	for _, s := range allowed {
		if view.State == s {
			return nil
		}
	}
	return fmt.Errorf("state=%s message=%q (want %v)", view.State, view.Message, allowed)
}

func noRedirect(req *http.Request, via []*http.Request) error {
	return http.ErrUseLastResponse
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
