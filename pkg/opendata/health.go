package opendata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Health check functions for the external providers. Each issues one cheap
// request and reports reachability only.

// CheckOverpassHealth checks if the Overpass API is available.
func CheckOverpassHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, OverpassBaseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create overpass health check request: %w", err)
	}
	req.URL.RawQuery = "data=" + url.QueryEscape("[out:json];out meta;")

	resp, err := DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("overpass health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("overpass health check returned status %d", resp.StatusCode)
	}
	return nil
}

// CheckWikipediaHealth checks if the English Wikipedia API is available.
func CheckWikipediaHealth() error {
	return checkMediaWikiHealth("wikipedia", WikipediaBaseURL("en"))
}

// CheckCommonsHealth checks if the Wikimedia Commons API is available.
func CheckCommonsHealth() error {
	return checkMediaWikiHealth("commons", CommonsBaseURL)
}

// checkMediaWikiHealth issues a siteinfo request against a MediaWiki api.php
// endpoint.
func checkMediaWikiHealth(name, baseURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s health check request: %w", name, err)
	}
	q := req.URL.Query()
	q.Set("action", "query")
	q.Set("meta", "siteinfo")
	q.Set("format", "json")
	req.URL.RawQuery = q.Encode()

	resp, err := DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("%s health check failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s health check returned status %d", name, resp.StatusCode)
	}
	return nil
}

// CheckWikidataHealth checks if the Wikidata SPARQL endpoint is available.
func CheckWikidataHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, WikidataSPARQLURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create wikidata health check request: %w", err)
	}
	q := req.URL.Query()
	q.Set("format", "json")
	q.Set("query", "ASK {}")
	req.URL.RawQuery = q.Encode()

	resp, err := DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("wikidata health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("wikidata health check returned status %d", resp.StatusCode)
	}
	return nil
}
