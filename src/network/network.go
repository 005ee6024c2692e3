package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"market-breadth/src/helpers"
	"market-breadth/src/interfaces"
	"market-breadth/src/logger"
	"market-breadth/src/models"
)

// maxBodyBytes caps a single upstream response.
const maxBodyBytes = 16 << 20

type AsyncNetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Client       *http.Client
	Logger       *logger.Logger

	// BackoffUnit is the first retry delay; later ones double.
	BackoffUnit time.Duration
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	nm := &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.Network.UserAgent, log),
		Logger:       log,
		BackoffUnit:  time.Second,
	}
	nm.Client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

// createClient builds a pooled client whose proxy follows the ProxyManager's
// current selection, so rotation needs no client rebuild.
func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 32

	if nm.ProxyManager.HasProxies() {
		transport.Proxy = func(*http.Request) (*url.URL, error) {
			proxyStr, err := nm.ProxyManager.GetCurrentProxy()
			if err != nil || proxyStr == "" {
				return nil, err
			}
			return url.Parse(proxyStr)
		}
	}

	return &http.Client{Transport: transport}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and proxy rotation. Each attempt is
// bounded by timeout; ctx cancels the whole call.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, timeout time.Duration) ([]byte, error) {
	maxRetries := nm.Config.Network.MaxRetries

	body, err := helpers.RetryWithBackoff(ctx, nil, urlStr, maxRetries, nm.BackoffUnit, func(attempt int) ([]byte, error) {
		if attempt > 0 {
			nm.ProxyManager.RotateProxy()
		}
		body, retry, err := nm.doOnce(ctx, urlStr, timeout)
		if err == nil {
			return body, nil
		}
		nm.Logger.Debug("Request failed (attempt %d/%d): %v", attempt+1, maxRetries+1, err)
		if !retry {
			return nil, helpers.Permanent(err)
		}
		return nil, err
	})
	if err != nil {
		return nil, helpers.NewNetworkError(fmt.Sprintf("GET failed after up to %d attempt(s)", maxRetries+1), err)
	}
	return body, nil
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) doOnce(ctx context.Context, urlStr string, timeout time.Duration) ([]byte, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	req.Header.Set("Referer", "https://gu.qq.com/")

	resp, err := nm.Client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("blocked (status %d)", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, err
	}
	return body, false, nil
}
