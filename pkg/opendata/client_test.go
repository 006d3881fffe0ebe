package opendata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServiceForHost(t *testing.T) {
	testCases := []struct {
		host     string
		expected string
	}{
		{"overpass-api.de", ServiceOverpass},
		{"query.wikidata.org", ServiceWikidata},
		{"commons.wikimedia.org", ServiceCommons},
		{"en.wikipedia.org", ServiceWikipedia},
		{"de.wikipedia.org", ServiceWikipedia},
		{"127.0.0.1:8080", ""},
		{"example.com", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.host, func(t *testing.T) {
			if got := ServiceForHost(tc.host); got != tc.expected {
				t.Errorf("ServiceForHost(%q) = %q, want %q", tc.host, got, tc.expected)
			}
		})
	}
}

func TestWikipediaURLs(t *testing.T) {
	if got := WikipediaBaseURL("en"); got != "https://en.wikipedia.org/w/api.php" {
		t.Errorf("WikipediaBaseURL = %q", got)
	}
	if got := WikipediaBaseURL("de"); got != "https://de.wikipedia.org/w/api.php" {
		t.Errorf("WikipediaBaseURL = %q", got)
	}

	if got := WikipediaArticleURL("en", "Golden Gate Bridge"); got != "https://en.wikipedia.org/wiki/Golden%20Gate%20Bridge" {
		t.Errorf("WikipediaArticleURL = %q", got)
	}
	if got := WikipediaArticleURL("de", "Brandenburger Tor"); got != "https://de.wikipedia.org/wiki/Brandenburger%20Tor" {
		t.Errorf("WikipediaArticleURL = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	original := GetUserAgent()
	defer SetUserAgent(original)

	SetUserAgent("custom-agent/1.0")
	if got := GetUserAgent(); got != "custom-agent/1.0" {
		t.Errorf("GetUserAgent() = %q", got)
	}
}

func TestDoRequestSetsUserAgent(t *testing.T) {
	original := GetUserAgent()
	defer SetUserAgent(original)
	SetUserAgent("test-agent/0.0")

	var receivedUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	resp, err := DoRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("DoRequest() error = %v", err)
	}
	resp.Body.Close()

	if receivedUA != "test-agent/0.0" {
		t.Errorf("User-Agent = %q, want test-agent/0.0", receivedUA)
	}
}

func TestMonitoredDoRequestReportsHooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var requested, responded, gotSuccess bool
	SetMonitoringHooks(&MonitoringHooks{
		OnRequest: func(service, operation string) {
			requested = true
		},
		OnResponse: func(service, operation string, duration time.Duration, success bool) {
			responded = true
			gotSuccess = success
		},
	})
	defer SetMonitoringHooks(nil)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	resp, err := MonitoredDoRequest(context.Background(), req, "test_op")
	if err != nil {
		t.Fatalf("MonitoredDoRequest() error = %v", err)
	}
	resp.Body.Close()

	if !requested {
		t.Error("OnRequest hook was not called")
	}
	if !responded {
		t.Error("OnResponse hook was not called")
	}
	if !gotSuccess {
		t.Error("OnResponse should report success for a 200 response")
	}
}
