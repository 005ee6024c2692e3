package network

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"market-breadth/src/helpers"
	"market-breadth/src/logger"
	"market-breadth/src/models"
)

func newManager(retries int) *AsyncNetworkManager {
	cfg := &models.MConfig{Network: models.MNetworkConfig{MaxRetries: retries}}
	nm := NewAsyncNetworkManager(cfg, logger.NewNopLogger("net"))
	nm.BackoffUnit = time.Millisecond
	return nm
}

func TestGetReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent")
		}
		w.Write([]byte(`v_sh600000="1~x";`))
	}))
	defer srv.Close()

	body, err := newManager(0).Get(context.Background(), srv.URL+"/q=sh600000", time.Second)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != `v_sh600000="1~x";` {
		t.Errorf("body = %q", body)
	}
}

func TestGetRetriesOnBadStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newManager(2).Get(context.Background(), srv.URL, time.Second)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "ok" || calls.Load() != 3 {
		t.Errorf("body=%q calls=%d", body, calls.Load())
	}
}

func TestGetFailsWithNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newManager(1).Get(context.Background(), srv.URL, time.Second)
	var ne *helpers.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
}

func TestGetHonorsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := newManager(0).Get(context.Background(), srv.URL, 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("timeout not enforced, took %v", time.Since(start))
	}
}

func TestGetDoesNotRetryMalformedURL(t *testing.T) {
	nm := newManager(3)
	nm.BackoffUnit = time.Hour

	done := make(chan error, 1)
	go func() {
		_, err := nm.Get(context.Background(), "http://[::1", time.Second)
		done <- err
	}()

	select {
	case err := <-done:
		var ne *helpers.NetworkError
		if !errors.As(err, &ne) {
			t.Errorf("err = %v, want *NetworkError", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("malformed URL was retried")
	}
}

func TestGetCancelledDuringBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	nm := newManager(3)
	nm.BackoffUnit = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := nm.Get(ctx, srv.URL, time.Second)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded in chain", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
