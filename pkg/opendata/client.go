// Package opendata provides the shared HTTP plumbing for the open-data
// provider clients: a pooled client, User-Agent management, courtesy rate
// limiting and the common error taxonomy.
package opendata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/openatlas/opendata/pkg/tracing"
)

const (
	// DefaultUserAgent is the default User-Agent string. Overpass and the
	// Wikimedia APIs both require a descriptive agent per their usage
	// policies.
	DefaultUserAgent = "opendata-mcp/0.1.0"

	// API endpoints
	OverpassBaseURL      = "https://overpass-api.de/api/interpreter"
	WikidataSPARQLURL    = "https://query.wikidata.org/bigdata/namespace/wdq/sparql"
	CommonsBaseURL       = "https://commons.wikimedia.org/w/api.php"
	wikipediaHostPattern = "%s.wikipedia.org"
)

// Service names used for rate limiting, metrics and tracing labels.
const (
	ServiceOverpass  = "overpass"
	ServiceWikipedia = "wikipedia"
	ServiceWikidata  = "wikidata"
	ServiceCommons   = "commons"
)

var (
	// Global HTTP client with connection pooling
	httpClient *http.Client

	// Courtesy rate limiters, one per provider
	limiters     map[string]*rate.Limiter
	limitersLock sync.RWMutex

	// User agent string
	userAgent     string
	userAgentLock sync.RWMutex
)

func init() {
	httpClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: 30 * time.Second,
	}

	// Default to 1 request per second with burst of 1 for every provider
	limiters = map[string]*rate.Limiter{
		ServiceOverpass:  rate.NewLimiter(rate.Limit(1), 1),
		ServiceWikipedia: rate.NewLimiter(rate.Limit(1), 1),
		ServiceWikidata:  rate.NewLimiter(rate.Limit(1), 1),
		ServiceCommons:   rate.NewLimiter(rate.Limit(1), 1),
	}

	SetUserAgent(DefaultUserAgent)
}

// WikipediaBaseURL returns the api.php endpoint for a language-specific
// Wikipedia, e.g. https://en.wikipedia.org/w/api.php.
func WikipediaBaseURL(language string) string {
	return "https://" + fmt.Sprintf(wikipediaHostPattern, language) + "/w/api.php"
}

// WikipediaArticleURL returns the canonical article URL for a title in the
// given language Wikipedia.
func WikipediaArticleURL(language, title string) string {
	return "https://" + fmt.Sprintf(wikipediaHostPattern, language) + "/wiki/" + url.PathEscape(title)
}

// UpdateRateLimits replaces the rate limiter for a service.
func UpdateRateLimits(service string, rps float64, burst int) {
	limitersLock.Lock()
	defer limitersLock.Unlock()
	limiters[service] = rate.NewLimiter(rate.Limit(rps), burst)
}

// SetUserAgent sets the User-Agent string.
func SetUserAgent(ua string) {
	userAgentLock.Lock()
	defer userAgentLock.Unlock()
	userAgent = ua
}

// GetUserAgent returns the current User-Agent string.
func GetUserAgent() string {
	userAgentLock.RLock()
	defer userAgentLock.RUnlock()
	return userAgent
}

// GetClient returns the global HTTP client.
func GetClient() *http.Client {
	return httpClient
}

// ServiceForHost classifies a request host into one of the provider service
// names, or "" for unknown hosts (test servers, overridden endpoints).
func ServiceForHost(host string) string {
	switch {
	case host == hostFromURL(OverpassBaseURL):
		return ServiceOverpass
	case host == hostFromURL(WikidataSPARQLURL):
		return ServiceWikidata
	case host == hostFromURL(CommonsBaseURL):
		return ServiceCommons
	case strings.HasSuffix(host, ".wikipedia.org"):
		return ServiceWikipedia
	default:
		return ""
	}
}

// hostFromURL extracts the host from a URL string
func hostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}

// limiterForService returns the limiter for a service, or nil when the
// service is unknown.
func limiterForService(service string) *rate.Limiter {
	limitersLock.RLock()
	defer limitersLock.RUnlock()
	return limiters[service]
}

// waitForRateLimit waits for the appropriate rate limiter based on the
// request host. Unknown hosts are not limited.
func waitForRateLimit(ctx context.Context, req *http.Request) error {
	service := ServiceForHost(req.URL.Host)
	if service == "" {
		return nil
	}

	limiter := limiterForService(service)
	if limiter == nil {
		return nil
	}

	if !limiter.Allow() {
		startWait := time.Now()

		tracing.AddEvent(ctx, "rate_limit_wait",
			trace.WithAttributes(
				attribute.String(tracing.AttrRateLimitService, service),
			),
		)

		err := limiter.Wait(ctx)

		waitDuration := time.Since(startWait)
		tracing.SetAttributes(ctx,
			attribute.String(tracing.AttrRateLimitService, service),
			attribute.Int64(tracing.AttrRateLimitWaitMs, waitDuration.Milliseconds()),
		)

		if err != nil {
			return err
		}
	}

	return nil
}

// DoRequest performs an HTTP request with the configured User-Agent and
// courtesy rate limiting. The limiter only delays the send; responses are
// never cached, altered or retried.
func DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", GetUserAgent())

	if err := waitForRateLimit(ctx, req); err != nil {
		return nil, err
	}

	return httpClient.Do(req)
}

// NewRequest creates an HTTP request bound to ctx with the User-Agent header
// already set.
func NewRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", GetUserAgent())
	return req, nil
}
