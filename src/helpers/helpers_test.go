package helpers

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryWithBackoffSucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := RetryWithBackoff(context.Background(), nil, "op", 3, time.Millisecond, func(attempt int) (string, error) {
		calls++
		if attempt < 2 {
			return "", errors.New("boom")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Errorf("got %q after %d calls, want ok after 3", got, calls)
	}
}

func TestRetryWithBackoffZeroRetries(t *testing.T) {
	calls := 0
	_, err := RetryWithBackoff(context.Background(), nil, "op", 0, time.Millisecond, func(int) (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	if err == nil || calls != 1 {
		t.Errorf("err=%v calls=%d, want error after exactly 1 call", err, calls)
	}
}

func TestRetryWithBackoffHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RetryWithBackoff(ctx, nil, "op", 5, time.Hour, func(int) (int, error) {
		return 0, errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled in chain", err)
	}
}

func TestRetryWithBackoffStopsOnPermanent(t *testing.T) {
	cause := errors.New("bad request")
	calls := 0
	_, err := RetryWithBackoff(context.Background(), nil, "op", 5, time.Millisecond, func(int) (int, error) {
		calls++
		return 0, Permanent(cause)
	})
	if err != cause || calls != 1 {
		t.Errorf("err=%v calls=%d, want the bare cause after 1 call", err, calls)
	}
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}

func TestErrorHandlerCounts(t *testing.T) {
	h := NewErrorHandler(nil)
	h.Handle(nil, "noop")
	h.Handle(errors.New("a"), "cycle")
	h.Handle(errors.New("b"), "cycle")
	if h.ErrorCount() != 2 || h.LastError().Error() != "b" {
		t.Errorf("count=%d last=%v", h.ErrorCount(), h.LastError())
	}
	h.ResetErrorCount()
	if h.ErrorCount() != 0 || h.LastError() != nil {
		t.Error("reset did not clear state")
	}
}

func TestTypedErrorsUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := error(NewNetworkError("fetch batch", cause))
	if !errors.Is(err, cause) {
		t.Error("NetworkError should unwrap to its cause")
	}
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Error("errors.As should find *NetworkError")
	}
	if err.Error() != "fetch batch: timeout" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestProxyManager(t *testing.T) {
	pm := NewProxyManager([]string{"1.2.3.4:8080", "", "socks5://5.6.7.8:1080"}, "", nil)
	if !pm.HasProxies() {
		t.Fatal("expected proxies")
	}
	first, _ := pm.GetCurrentProxy()
	if first != "http://1.2.3.4:8080" {
		t.Errorf("first proxy = %q", first)
	}
	pm.RotateProxy()
	second, _ := pm.GetCurrentProxy()
	if second != "socks5://5.6.7.8:1080" {
		t.Errorf("second proxy = %q", second)
	}
	if pm.GetUserAgent() == "" {
		t.Error("empty user agent")
	}

	fixed := NewProxyManager(nil, "breadth-test/1.0", nil)
	if fixed.GetUserAgent() != "breadth-test/1.0" {
		t.Error("fixed agent not used")
	}
}
