package puapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pumon/internal/config"
	"pumon/pkg/logx"
)

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	cfg := &config.Config{}
	cfg.Auth.Token = "Bearer test-token"
	cfg.Auth.UserAgent = "test-agent"
	cfg.API.BaseURL = url
	cfg.API.Timeout = "2s"
	cfg.API.RetryMax = 2
	cfg.API.RatePerSec = 1000
	cfg.Filters.AllowYears = []int64{2024}

	c := New(cfg, logx.Nop())
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestRetryOnServerErrorThenSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"data":{"list":[{"id":1,"name":"活动A","statusName":"报名中"}]}}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	list, err := c.ListActivities(context.Background(), 30)
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(list) != 1 || list[0].Name != "活动A" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestAuthFailureShortCircuits(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.ListActivities(context.Background(), 30)
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("auth failures must not retry, got %d attempts", got)
	}
}

func TestExhaustedRetriesReturnError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.ListActivities(context.Background(), 30)
	if err == nil {
		t.Fatalf("expected failure after exhausting retries")
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected retry cap of 2 attempts, got %d", got)
	}
}

func TestMissingDataKeysYieldEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	list, err := c.ListActivities(context.Background(), 30)
	if err != nil {
		t.Fatalf("missing data keys must not be an error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}
}

func TestActivityInfoBaseInfoWrapper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"baseInfo":{"id":5,"name":"讲座","joinUserCount":12}}}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	d, err := c.ActivityInfo(context.Background(), 5)
	if err != nil {
		t.Fatalf("ActivityInfo: %v", err)
	}
	if d == nil || d.Name != "讲座" || d.JoinUserCount != 12 {
		t.Fatalf("unexpected detail: %+v", d)
	}
}

func TestActivityInfoDirectData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":6,"name":"比赛"}}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	d, err := c.ActivityInfo(context.Background(), 6)
	if err != nil {
		t.Fatalf("ActivityInfo: %v", err)
	}
	if d == nil || d.Name != "比赛" {
		t.Fatalf("unexpected detail: %+v", d)
	}
}

func TestActivityInfoEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	d, err := c.ActivityInfo(context.Background(), 7)
	if err != nil || d != nil {
		t.Fatalf("empty data should yield (nil, nil), got (%+v, %v)", d, err)
	}
}

func TestAuthHeaderAndPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q", got)
		}
		w.Write([]byte(`{"data":{"list":[]}}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	if _, err := c.MyTribes(context.Background(), 10); err != nil {
		t.Fatalf("MyTribes: %v", err)
	}
}
