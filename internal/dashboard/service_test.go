package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/careview/internal/upstream"
	"github.com/fdg312/careview/internal/viewstate"
)

// fakeGetter отдаёт заранее заданный JSON и запоминает вызовы
type fakeGetter struct {
	body  string
	err   error
	calls int
	auth  string
	path  string
}

func (g *fakeGetter) GetJSON(ctx context.Context, path, authorization string, out any) error {
	g.calls++
	g.auth = authorization
	g.path = path
	if g.err != nil {
		return g.err
	}
	return json.Unmarshal([]byte(g.body), out)
}

const pageBody = `{"weekly_records":{"daily_records":[
	{"date":"2024-01-02","metric":{"weight_kg":70,"sleep_duration_hours":6}},
	{"date":"2024-01-01","metric":{"weight_kg":69}}
]}}`

func TestServiceLoadReady(t *testing.T) {
	g := &fakeGetter{body: pageBody}
	svc := NewService(g, "/api/records/page", nil)

	view := svc.Load(context.Background(), "Bearer t")

	if view.State != viewstate.StatusReady {
		t.Fatalf("state = %s, want ready", view.State)
	}
	if g.path != "/api/records/page" || g.auth != "Bearer t" {
		t.Errorf("unexpected call path=%s auth=%s", g.path, g.auth)
	}
	if len(view.Summary.WeightSeries) != 2 || view.Summary.WeightSeries[0] != 69 {
		t.Errorf("unexpected weight series: %v", view.Summary.WeightSeries)
	}
	if view.Summary.LatestSleep == nil || *view.Summary.LatestSleep != 6 {
		t.Errorf("unexpected latest sleep: %v", view.Summary.LatestSleep)
	}
	if len(view.Cards) != 3 || view.Cards[0].Display != "70.0" {
		t.Errorf("unexpected cards: %+v", view.Cards)
	}
}

func TestServiceLoadWithoutCredentialStillFetches(t *testing.T) {
	g := &fakeGetter{body: `{"weekly_records":null}`}
	svc := NewService(g, "/p", nil)

	view := svc.Load(context.Background(), "")

	if g.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", g.calls)
	}
	if view.State != viewstate.StatusReady {
		t.Errorf("state = %s, want ready", view.State)
	}
	if view.Summary.WeightSeries == nil || len(view.Summary.WeightSeries) != 0 {
		t.Errorf("expected empty non-nil series, got %v", view.Summary.WeightSeries)
	}
}

func TestServiceLoadError(t *testing.T) {
	g := &fakeGetter{err: errors.New("connection refused")}
	svc := NewService(g, "/p", nil)

	view := svc.Load(context.Background(), "")

	if view.State != viewstate.StatusError {
		t.Fatalf("state = %s, want error", view.State)
	}
	if view.Message != FallbackMessage {
		t.Errorf("message = %q", view.Message)
	}
	if view.Summary.SleepSeries == nil {
		t.Error("series must be non-nil on error")
	}
}

func TestServiceLoadUnauthorized(t *testing.T) {
	g := &fakeGetter{err: &upstream.StatusError{StatusCode: http.StatusUnauthorized}}
	svc := NewService(g, "/p", nil)

	view := svc.Load(context.Background(), "Bearer expired")

	if view.State != viewstate.StatusError || !view.Unauthorized {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Message != upstream.MessageSessionExpired {
		t.Errorf("message = %q", view.Message)
	}
}

func TestHandleGetDashboard(t *testing.T) {
	g := &fakeGetter{body: pageBody}
	h := NewHandler(NewService(g, "/p", nil))

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rr := httptest.NewRecorder()

	h.HandleGetDashboard(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if g.auth != "Bearer abc" {
		t.Errorf("authorization not forwarded: %q", g.auth)
	}

	var resp View
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State != viewstate.StatusReady {
		t.Errorf("state = %s", resp.State)
	}
	if resp.Summary.LatestWeight == nil || *resp.Summary.LatestWeight != 70 {
		t.Errorf("latest weight = %v", resp.Summary.LatestWeight)
	}
}

func TestHandleGetDashboardUpstreamFailureIs200(t *testing.T) {
	g := &fakeGetter{err: &upstream.StatusError{StatusCode: 500, Body: []byte(`{"message":"점검 중"}`)}}
	h := NewHandler(NewService(g, "/p", nil))

	rr := httptest.NewRecorder()
	h.HandleGetDashboard(rr, httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp View
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State != viewstate.StatusError || resp.Message != "점검 중" {
		t.Errorf("unexpected view: %+v", resp)
	}
}
