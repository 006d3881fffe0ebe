package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/openatlas/opendata/pkg/geo"
	"github.com/openatlas/opendata/pkg/opendata"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient()
	client.BaseURL = server.URL
	return client, server
}

func TestQueryPOIs(t *testing.T) {
	var receivedBody string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"elements": [
				{"id": 101, "type": "node", "lat": 52.52, "lon": 13.38,
				 "tags": {"amenity": "restaurant", "name": "Zur Letzten Instanz", "cuisine": "german"}},
				{"id": 102, "type": "node", "lat": 52.521, "lon": 13.39},
				{"id": 201, "type": "way", "nodes": [1, 2, 3],
				 "tags": {"amenity": "restaurant", "name": "Hofbräu", "contact:website": "https://example.org"}},
				{"id": 301, "members": [{"type": "way", "ref": 201, "role": "outer"}],
				 "tags": {"amenity": "restaurant", "name": "Markthalle"}}
			]
		}`))
	})

	bbox := geo.NewBoundingBox(52.51, 13.37, 52.53, 13.41)
	pois, err := client.QueryPOIs(context.Background(), bbox, []Category{{Key: "amenity", Value: "restaurant"}})
	if err != nil {
		t.Fatalf("QueryPOIs() error = %v", err)
	}

	// The request body carries the escaped query in the data parameter
	if !strings.HasPrefix(receivedBody, "data=") {
		t.Errorf("request body should start with data=, got %q", receivedBody)
	}
	decoded, err := url.QueryUnescape(strings.TrimPrefix(receivedBody, "data="))
	if err != nil {
		t.Fatalf("failed to unescape request body: %v", err)
	}
	if !strings.HasPrefix(decoded, "[out:json];") {
		t.Errorf("decoded query should start with [out:json];, got %q", decoded)
	}

	// The tagless node is dropped
	if len(pois) != 3 {
		t.Fatalf("got %d POIs, want 3", len(pois))
	}

	node := pois[0]
	if node.ID != 101 || node.Type != "node" {
		t.Errorf("unexpected first POI: %+v", node)
	}
	if node.OSMURL != "https://www.openstreetmap.org/node/101" {
		t.Errorf("OSMURL = %q", node.OSMURL)
	}
	if node.OSMEditURL != "https://www.openstreetmap.org/edit?node=101" {
		t.Errorf("OSMEditURL = %q", node.OSMEditURL)
	}

	// Website falls back to contact:website
	way := pois[1]
	if way.Website != "https://example.org" {
		t.Errorf("Website = %q, want contact:website fallback", way.Website)
	}

	// Relations are identified by their members even without a type field
	rel := pois[2]
	if rel.Type != "relation" {
		t.Errorf("Type = %q, want relation", rel.Type)
	}
	if rel.OSMURL != "https://www.openstreetmap.org/relation/301" {
		t.Errorf("OSMURL = %q", rel.OSMURL)
	}
}

func TestQueryPOIsValidation(t *testing.T) {
	client := NewClient()
	bbox := geo.NewBoundingBox(52.51, 13.37, 52.53, 13.41)

	if _, err := client.QueryPOIs(context.Background(), bbox, nil); err == nil {
		t.Error("expected error for empty categories")
	}

	inverted := geo.BoundingBox{MinLat: 53, MinLon: 13, MaxLat: 52, MaxLon: 14}
	if _, err := client.QueryPOIs(context.Background(), inverted, []Category{{Key: "amenity", Value: "cafe"}}); err == nil {
		t.Error("expected error for inverted bounding box")
	}
}

func TestQueryPOIsProviderError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	bbox := geo.NewBoundingBox(52.51, 13.37, 52.53, 13.41)
	_, err := client.QueryPOIs(context.Background(), bbox, []Category{{Key: "amenity", Value: "restaurant"}})
	if !errors.Is(err, opendata.ErrProvider) {
		t.Errorf("error = %v, want ErrProvider", err)
	}
}

func TestQueryPOIsParseError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	bbox := geo.NewBoundingBox(52.51, 13.37, 52.53, 13.41)
	_, err := client.QueryPOIs(context.Background(), bbox, []Category{{Key: "amenity", Value: "restaurant"}})
	if !errors.Is(err, opendata.ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}

func TestQueryPOIsNetworkError(t *testing.T) {
	client := NewClient()
	client.BaseURL = "http://127.0.0.1:1/interpreter"

	bbox := geo.NewBoundingBox(52.51, 13.37, 52.53, 13.41)
	_, err := client.QueryPOIs(context.Background(), bbox, []Category{{Key: "amenity", Value: "restaurant"}})
	if !errors.Is(err, opendata.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestQueryFoodShops(t *testing.T) {
	var decoded string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		decoded, _ = url.QueryUnescape(strings.TrimPrefix(string(body), "data="))
		_, _ = w.Write([]byte(`{"elements": []}`))
	})

	bbox := geo.NewBoundingBox(52.51, 13.37, 52.53, 13.41)
	pois, err := client.QueryFoodShops(context.Background(), bbox)
	if err != nil {
		t.Fatalf("QueryFoodShops() error = %v", err)
	}
	if len(pois) != 0 {
		t.Errorf("got %d POIs, want 0", len(pois))
	}

	for _, want := range []string{"[amenity=cafe]", "[amenity=restaurant]", "[shop=deli]", "[amenity=ice_cream]", "[amenity=fast_food]"} {
		if !strings.Contains(decoded, want) {
			t.Errorf("query missing filter %s, got %q", want, decoded)
		}
	}
}

func TestPOIMarshalJSON(t *testing.T) {
	poi := POI{
		ID:   101,
		Type: "node",
		Lat:  52.52,
		Lon:  13.38,
		Tags: map[string]string{
			"amenity": "restaurant",
			"name":    "Zur Letzten Instanz",
			"website": "https://example.org",
		},
		Website:    "https://example.org",
		OSMURL:     "https://www.openstreetmap.org/node/101",
		OSMEditURL: "https://www.openstreetmap.org/edit?node=101",
	}

	data, err := json.Marshal(poi)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	// Tags must be flattened to the top level, not nested
	if _, nested := flat["tags"]; nested {
		t.Error("serialized POI should not contain a nested tags object")
	}
	if flat["name"] != "Zur Letzten Instanz" {
		t.Errorf("name = %v", flat["name"])
	}
	if flat["amenity"] != "restaurant" {
		t.Errorf("amenity = %v", flat["amenity"])
	}
	if flat["id"] != float64(101) {
		t.Errorf("id = %v", flat["id"])
	}
	if flat["osm_url"] != "https://www.openstreetmap.org/node/101" {
		t.Errorf("osm_url = %v", flat["osm_url"])
	}
	if flat["osm_url_edit"] != "https://www.openstreetmap.org/edit?node=101" {
		t.Errorf("osm_url_edit = %v", flat["osm_url_edit"])
	}
	if flat["lat"] != 52.52 || flat["lon"] != 13.38 {
		t.Errorf("lat/lon = %v/%v", flat["lat"], flat["lon"])
	}
}

func TestPOIMarshalJSONWay(t *testing.T) {
	poi := POI{
		ID:         201,
		Type:       "way",
		Tags:       map[string]string{"amenity": "restaurant"},
		OSMURL:     "https://www.openstreetmap.org/way/201",
		OSMEditURL: "https://www.openstreetmap.org/edit?way=201",
	}

	data, err := json.Marshal(poi)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	// Ways carry no point coordinates
	if _, ok := flat["lat"]; ok {
		t.Error("way POI should not serialize lat")
	}
	if _, ok := flat["lon"]; ok {
		t.Error("way POI should not serialize lon")
	}
	if _, ok := flat["website"]; ok {
		t.Error("empty website should be omitted")
	}
}
