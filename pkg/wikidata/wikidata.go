// Package wikidata provides a client for the Wikidata SPARQL endpoint,
// querying entities by geographic bounding box.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/openatlas/opendata/pkg/geo"
	"github.com/openatlas/opendata/pkg/opendata"
)

// DefaultLimit is the default result limit for box queries.
const DefaultLimit = 3000

// Value is a single SPARQL result value.
type Value struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	XMLLang  string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// Binding is one SPARQL result row, keyed by variable name.
type Binding map[string]Value

// Client queries the Wikidata SPARQL endpoint. BaseURL is overridable for
// tests.
type Client struct {
	BaseURL string
	logger  *slog.Logger
}

// NewClient creates a Wikidata client against the public SPARQL endpoint.
func NewClient() *Client {
	return &Client{
		BaseURL: opendata.WikidataSPARQLURL,
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// BuildBoxQuery returns the SPARQL query selecting entities whose coordinate
// (P625) falls within the corner points, with optional image (P18) and
// Commons category (P373), labels resolved via the auto-language service.
func BuildBoxQuery(ne, sw geo.Location, limit int) string {
	return fmt.Sprintf(`SELECT ?place ?location ?image ?commonsCategory ?placeLabel ?placeDescription WHERE {
  SERVICE wikibase:box {
    ?place wdt:P625 ?location .
    bd:serviceParam wikibase:cornerSouthWest "Point(%g %g)"^^geo:wktLiteral .
    bd:serviceParam wikibase:cornerNorthEast "Point(%g %g)"^^geo:wktLiteral .
  }
  OPTIONAL { ?place wdt:P18 ?image . }
  OPTIONAL { ?place wdt:P373 ?commonsCategory . }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "[AUTO_LANGUAGE],en" . }
} LIMIT %d`, sw.Longitude, sw.Latitude, ne.Longitude, ne.Latitude, limit)
}

// QueryBox returns the raw result bindings for entities within the box.
// The returned slice is empty (never nil) when the provider has no matches.
func (c *Client) QueryBox(ctx context.Context, ne, sw geo.Location, limit int) ([]Binding, error) {
	if err := ne.Validate(); err != nil {
		return nil, fmt.Errorf("northeast corner: %w", err)
	}
	if err := sw.Validate(); err != nil {
		return nil, fmt.Errorf("southwest corner: %w", err)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := BuildBoxQuery(ne, sw, limit)
	c.logger.Debug("generated SPARQL query", "query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("format", "json")
	q.Set("query", query)
	req.URL.RawQuery = q.Encode()

	resp, err := opendata.MonitoredDoRequest(ctx, req, "box_query")
	if err != nil {
		return nil, opendata.NetworkError(opendata.ServiceWikidata, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, opendata.ProviderError(opendata.ServiceWikidata, resp.StatusCode,
			fmt.Sprintf("sparql endpoint returned status %d", resp.StatusCode))
	}

	var sparqlResp struct {
		Results struct {
			Bindings []Binding `json:"bindings"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sparqlResp); err != nil {
		return nil, opendata.ParseError(opendata.ServiceWikidata, err)
	}

	bindings := sparqlResp.Results.Bindings
	if bindings == nil {
		bindings = []Binding{}
	}

	c.logger.Debug("wikidata box query complete", "results", len(bindings))

	return bindings, nil
}
