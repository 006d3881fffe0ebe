// Package wikipedia provides a client for Wikipedia's geosearch API.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/openatlas/opendata/pkg/opendata"
)

// Geosearch defaults, applied when the corresponding option is zero.
const (
	DefaultLatitude  = 37.0
	DefaultLongitude = -122.0
	DefaultLanguage  = "en"
	DefaultRadius    = 10000 // meters
	DefaultLimit     = 100
)

// Article is a Wikipedia geosearch result augmented with the canonical
// article URL.
type Article struct {
	PageID    int     `json:"pageid"`
	Namespace int     `json:"ns"`
	Title     string  `json:"title"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Distance  float64 `json:"dist"`
	Primary   string  `json:"primary,omitempty"`
	URL       string  `json:"url"`
}

// GeosearchOptions scope a geosearch call. Zero fields fall back to the
// package defaults.
type GeosearchOptions struct {
	Latitude  float64
	Longitude float64
	Language  string
	Radius    int // meters
	Limit     int
}

// Client queries a language-specific Wikipedia API. BaseURL, when set,
// overrides the derived endpoint (used by tests).
type Client struct {
	BaseURL string
	logger  *slog.Logger
}

// NewClient creates a Wikipedia client.
func NewClient() *Client {
	return &Client{logger: slog.Default()}
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Geosearch returns articles near a coordinate, each augmented with its
// constructed article URL.
func (c *Client) Geosearch(ctx context.Context, opts GeosearchOptions) ([]Article, error) {
	if opts.Latitude == 0 && opts.Longitude == 0 {
		opts.Latitude = DefaultLatitude
		opts.Longitude = DefaultLongitude
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Radius == 0 {
		opts.Radius = DefaultRadius
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultLimit
	}

	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = opendata.WikipediaBaseURL(opts.Language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("action", "query")
	q.Set("list", "geosearch")
	q.Set("gscoord", fmt.Sprintf("%g|%g", opts.Latitude, opts.Longitude))
	q.Set("gsradius", strconv.Itoa(opts.Radius))
	q.Set("gslimit", strconv.Itoa(opts.Limit))
	q.Set("format", "json")
	req.URL.RawQuery = q.Encode()

	resp, err := opendata.MonitoredDoRequest(ctx, req, "geosearch")
	if err != nil {
		return nil, opendata.NetworkError(opendata.ServiceWikipedia, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, opendata.ProviderError(opendata.ServiceWikipedia, resp.StatusCode,
			fmt.Sprintf("geosearch returned status %d", resp.StatusCode))
	}

	var geosearchResp struct {
		Query struct {
			Geosearch []Article `json:"geosearch"`
		} `json:"query"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&geosearchResp); err != nil {
		return nil, opendata.ParseError(opendata.ServiceWikipedia, err)
	}

	articles := geosearchResp.Query.Geosearch
	for i := range articles {
		articles[i].URL = opendata.WikipediaArticleURL(opts.Language, articles[i].Title)
	}

	c.logger.Debug("wikipedia geosearch complete",
		"language", opts.Language,
		"results", len(articles))

	return articles, nil
}
