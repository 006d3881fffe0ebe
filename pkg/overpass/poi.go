package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/openatlas/opendata/pkg/geo"
	"github.com/openatlas/opendata/pkg/opendata"
)

// RestaurantDemoBBox is the fixed demo bounding box used by
// QueryRestaurants, covering central Berlin.
var RestaurantDemoBBox = geo.NewBoundingBox(52.51, 13.37, 52.53, 13.41)

// FoodShopCategories is the fixed filter set used by QueryFoodShops.
var FoodShopCategories = []Category{
	{Key: "amenity", Value: "cafe"},
	{Key: "amenity", Value: "restaurant"},
	{Key: "shop", Value: "deli"},
	{Key: "amenity", Value: "ice_cream"},
	{Key: "amenity", Value: "fast_food"},
}

// Client queries the Overpass API. The zero value is not usable; construct
// with NewClient. BaseURL is overridable for tests.
type Client struct {
	BaseURL string
	logger  *slog.Logger
}

// NewClient creates an Overpass client against the public interpreter.
func NewClient() *Client {
	return &Client{
		BaseURL: opendata.OverpassBaseURL,
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// QueryPOIs runs one Overpass query for the bounding box and category filter
// set and returns the normalized POIs. Elements without tags are dropped as
// geometry-only helper nodes.
func (c *Client) QueryPOIs(ctx context.Context, bbox geo.BoundingBox, categories []Category) ([]POI, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("at least one category is required")
	}
	if err := bbox.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	query := BuildPOIQuery(bbox, categories)
	c.logger.Debug("generated Overpass query", "query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL,
		strings.NewReader("data="+url.QueryEscape(query)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := opendata.MonitoredDoRequest(ctx, req, "query_pois")
	if err != nil {
		return nil, opendata.NetworkError(opendata.ServiceOverpass, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, opendata.ProviderError(opendata.ServiceOverpass, resp.StatusCode,
			fmt.Sprintf("interpreter returned status %d", resp.StatusCode))
	}

	var overpassResp struct {
		Elements []Element `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&overpassResp); err != nil {
		return nil, opendata.ParseError(opendata.ServiceOverpass, err)
	}

	pois := make([]POI, 0, len(overpassResp.Elements))
	for _, element := range overpassResp.Elements {
		// Elements without tags are geometry-only helpers from the
		// skeleton recursion
		if len(element.Tags) == 0 {
			continue
		}
		pois = append(pois, normalizeElement(element))
	}

	c.logger.Debug("normalized Overpass elements",
		"received", len(overpassResp.Elements),
		"kept", len(pois))

	return pois, nil
}

// QueryRestaurants fetches restaurants within the fixed demo bounding box.
func (c *Client) QueryRestaurants(ctx context.Context) ([]POI, error) {
	return c.QueryPOIs(ctx, RestaurantDemoBBox, []Category{{Key: "amenity", Value: "restaurant"}})
}

// QueryFoodShops fetches the five food-shop categories within a bounding
// box, typically extracted from a map viewport.
func (c *Client) QueryFoodShops(ctx context.Context, bbox geo.BoundingBox) ([]POI, error) {
	return c.QueryPOIs(ctx, bbox, FoodShopCategories)
}

// normalizeElement flattens a raw Overpass element into a POI.
func normalizeElement(element Element) POI {
	typ := element.Type
	// Some Overpass replies omit the type field on relations; the members
	// list identifies them
	if len(element.Members) > 0 {
		typ = "relation"
	}

	website := element.Tags["website"]
	if website == "" {
		website = element.Tags["contact:website"]
	}

	return POI{
		ID:         element.ID,
		Type:       typ,
		Lat:        element.Lat,
		Lon:        element.Lon,
		Tags:       element.Tags,
		Website:    website,
		OSMURL:     fmt.Sprintf("https://www.openstreetmap.org/%s/%d", typ, element.ID),
		OSMEditURL: fmt.Sprintf("https://www.openstreetmap.org/edit?%s=%d", typ, element.ID),
	}
}
