// Package overpass provides a client for the Overpass API, OpenStreetMap's
// read-only query service, and the POI normalization built on top of it.
package overpass

import (
	"encoding/json"
	"fmt"
)

// Category identifies a tag filter as a (key, value) pair, e.g. amenity=cafe.
// An ordered list of categories forms a query's filter set.
type Category struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// String renders the category as an Overpass tag filter.
func (c Category) String() string {
	if c.Value == "" {
		return fmt.Sprintf("[%s]", c.Key)
	}
	return fmt.Sprintf("[%s=%s]", c.Key, c.Value)
}

// Member is a member entry of an Overpass relation element.
type Member struct {
	Type string `json:"type"`
	Ref  int64  `json:"ref"`
	Role string `json:"role"`
}

// Element represents a raw element returned from the Overpass API.
type Element struct {
	ID      int64             `json:"id"`
	Type    string            `json:"type"`
	Lat     float64           `json:"lat,omitempty"`
	Lon     float64           `json:"lon,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
	Nodes   []int64           `json:"nodes,omitempty"`   // For ways, list of node IDs
	Members []Member          `json:"members,omitempty"` // For relations
}

// POI is a normalized point of interest derived from an Overpass element.
// Tags are flattened to the top level when marshalled to JSON; the nested
// tag container of the raw element does not survive normalization.
type POI struct {
	ID   int64  `json:"id"`
	Type string `json:"type"` // node, way or relation
	Lat  float64
	Lon  float64
	Tags map[string]string

	// Derived fields
	Website    string // from website, falling back to contact:website
	OSMURL     string // https://www.openstreetmap.org/{type}/{id}
	OSMEditURL string // https://www.openstreetmap.org/edit?{type}={id}
}

// Tag returns the value of a tag, or "" when absent.
func (p *POI) Tag(key string) string {
	return p.Tags[key]
}

// MarshalJSON flattens the tag set into the top-level object. Identity and
// derived fields win over a tag of the same name.
func (p POI) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Tags)+8)
	for k, v := range p.Tags {
		out[k] = v
	}

	out["id"] = p.ID
	out["type"] = p.Type
	if p.Type == "node" {
		out["lat"] = p.Lat
		out["lon"] = p.Lon
	}
	if p.Website != "" {
		out["website"] = p.Website
	}
	out["osm_url"] = p.OSMURL
	out["osm_url_edit"] = p.OSMEditURL

	return json.Marshal(out)
}
