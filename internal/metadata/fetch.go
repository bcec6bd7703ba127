package metadata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/http/httpproxy"

	"git.home.luguber.info/inful/odata4gen/internal/config"
	"git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
	"git.home.luguber.info/inful/odata4gen/internal/version"
)

const (
	retryWaitMin = 500 * time.Millisecond
	retryWaitMax = 5 * time.Second
)

// httpClient builds the retrying client for one fetch. The proxy is applied
// on a clone of the base transport.
func (r *Resolver) httpClient(cfg *config.Generation) (*retryablehttp.Client, error) {
	transport := r.baseClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	if cfg.Proxy != nil {
		proxyURL, err := cfg.Proxy.URL()
		if err != nil {
			return nil, err
		}
		t, ok := transport.(*http.Transport)
		if !ok {
			return nil, errors.ConfigurationError("proxy requires an *http.Transport").Build()
		}
		t = t.Clone()
		t.Proxy = proxyFunc(proxyURL)
		transport = t
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{
		Transport:     transport,
		Timeout:       r.baseClient.Timeout,
		CheckRedirect: r.baseClient.CheckRedirect,
		Jar:           r.baseClient.Jar,
	}
	rc.RetryMax = cfg.Fetch.RetryMax
	rc.RetryWaitMin = retryWaitMin
	rc.RetryWaitMax = retryWaitMax
	rc.Logger = retryablehttp.LeveledLogger(r.logger)
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return rc, nil
}

// proxyFunc routes every request through proxyURL, loopback targets included.
func proxyFunc(proxyURL *url.URL) func(*http.Request) (*url.URL, error) {
	pc := &httpproxy.Config{
		HTTPProxy:  proxyURL.String(),
		HTTPSProxy: proxyURL.String(),
	}
	fn := pc.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		if u, err := fn(req.URL); u != nil || err != nil {
			return u, err
		}
		// httpproxy never proxies localhost; an explicit proxy should.
		return proxyURL, nil
	}
}

// openRemote performs the GET and returns the response body.
func (r *Resolver) openRemote(ctx context.Context, cfg *config.Generation) (io.ReadCloser, error) {
	location := cfg.MetadataLocation

	client, err := r.httpClient(cfg)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.MetadataFetchError(location, err).Build()
	}

	userAgent := cfg.Fetch.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/xml")
	for _, h := range cfg.CustomHTTPHeaders {
		if name, value, ok := config.SplitHeader(h); ok {
			req.Header.Set(name, value)
		}
	}

	r.logger.Debug("Fetching metadata", slog.String("location", location), slog.Bool("proxy", cfg.Proxy != nil))

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.MetadataFetchError(location, err).Build()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, errors.MetadataFetchError(location, fmt.Errorf("unexpected status %s", resp.Status)).
			WithContext("status", resp.StatusCode).
			Build()
	}
	return resp.Body, nil
}
