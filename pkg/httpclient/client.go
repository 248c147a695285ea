// Package httpclient provides the HTTP clients bridgerun uses to talk to the artifact repository.
// Both clients share one transport so proxy and header handling stay identical between the
// version listing fetch and the archive download.
package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"resty.dev/v3"
)

// UserAgent is sent with every request unless the caller overrides it.
const UserAgent = "bridgerun"

// ignoreProxy controls whether the HTTP_PROXY environment variable should be ignored.
var ignoreProxy atomic.Bool

// SetIgnoreProxy sets whether to ignore the HTTP_PROXY environment variable.
func SetIgnoreProxy(ignore bool) {
	ignoreProxy.Store(ignore)
}

// HeaderRoundTripper is an http.RoundTripper that adds default headers to requests.
// Headers are only added if they're not already present in the request.
type HeaderRoundTripper struct {
	Headers map[string]string
	Next    http.RoundTripper
}

// RoundTrip adds default headers when they're not present on the request
// and delegates to the next RoundTripper.
func (hrt *HeaderRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if hrt.Next == nil {
		return nil, http.ErrNotSupported
	}

	for k, v := range hrt.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	return hrt.Next.RoundTrip(req)
}

// NewTransport builds the shared transport: default headers plus optional HTTP_PROXY support.
func NewTransport(defaultHeaders map[string]string) http.RoundTripper {
	headers := map[string]string{"User-Agent": UserAgent}
	for k, v := range defaultHeaders {
		headers[k] = v
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()

	if !ignoreProxy.Load() {
		proxyServer, useHttpProxy := os.LookupEnv("HTTP_PROXY")
		if useHttpProxy && proxyServer != "" {
			proxyUrl, err := url.Parse(proxyServer)
			if err != nil {
				log.Fatal().Err(err).Str("HTTP_PROXY", proxyServer).Msg("Invalid Proxy URL in HTTP_PROXY environment variable")
			}
			log.Info().Str("proxy", proxyUrl.String()).Msg("Using HTTP_PROXY")
			tr.Proxy = http.ProxyURL(proxyUrl)
		}
	}

	return &HeaderRoundTripper{Headers: headers, Next: tr}
}

// CheckRetry retries transport errors, 429 and 5xx (except 501). Everything else, 404 included,
// is handed back to the caller untouched.
func CheckRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx != nil && ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		log.Warn().Err(err).Msg("Retrying HTTP request, error occurred")
		return true, nil
	}

	if resp == nil {
		return false, nil
	}

	if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented) {
		reqUrl := ""
		if resp.Request != nil && resp.Request.URL != nil {
			reqUrl = resp.Request.URL.String()
		}
		log.Debug().Str("url", reqUrl).Int("statusCode", resp.StatusCode).Msg("Retrying HTTP request")
		return true, nil
	}

	return false, nil
}

// GetDownloadClient creates the retryable client used for streaming bridge archives.
// A retries value of 0 sends every request exactly once.
func GetDownloadClient(defaultHeaders map[string]string, retries int) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = retries
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.CheckRetry = CheckRetry
	client.HTTPClient.Transport = NewTransport(defaultHeaders)
	return client
}

// GetListingClient creates the resty client used for the artifact repository directory listing.
func GetListingClient(defaultHeaders map[string]string, retries int) *resty.Client {
	client := resty.New().
		SetTransport(NewTransport(defaultHeaders)).
		SetHeader("User-Agent", UserAgent).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	client.AddRetryHooks(
		func(res *resty.Response, err error) {
			if res != nil && res.StatusCode() == http.StatusTooManyRequests {
				log.Info().Int("status", res.StatusCode()).Msg("Retrying listing request, we are rate limited")
			} else {
				log.Info().Err(err).Msg("Retrying listing request")
			}
		},
	)
	return client
}
