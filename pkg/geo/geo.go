// Package geo provides the geographic primitives shared by the open-data
// clients: locations, bounding boxes and their validation.
package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// Location represents a geographic coordinate pair in decimal degrees (WGS84).
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that the location is within valid coordinate ranges.
func (l Location) Validate() error {
	return ValidateCoords(l.Latitude, l.Longitude)
}

// ValidateCoords validates latitude and longitude values.
// Returns an error if the coordinates are invalid.
func ValidateCoords(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("invalid latitude: %f (must be between -90 and 90)", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("invalid longitude: %f (must be between -180 and 180)", lon)
	}
	return nil
}

// BoundingBox represents a rectangular geographic region. The field order
// matches the Overpass convention: south, west, north, east.
type BoundingBox struct {
	MinLat float64 `json:"minLat"` // south
	MinLon float64 `json:"minLon"` // west
	MaxLat float64 `json:"maxLat"` // north
	MaxLon float64 `json:"maxLon"` // east
}

// NewBoundingBox creates a bounding box from four coordinates in
// south, west, north, east order.
func NewBoundingBox(south, west, north, east float64) BoundingBox {
	return BoundingBox{MinLat: south, MinLon: west, MaxLat: north, MaxLon: east}
}

// BoundingBoxFromCorners creates a bounding box from its northeast and
// southwest corner points.
func BoundingBoxFromCorners(ne, sw Location) BoundingBox {
	return BoundingBox{
		MinLat: sw.Latitude,
		MinLon: sw.Longitude,
		MaxLat: ne.Latitude,
		MaxLon: ne.Longitude,
	}
}

// ParseBoundingBox parses a comma-separated "south,west,north,east" string,
// the format Overpass accepts as a global bbox.
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("bounding box must have 4 comma-separated values, got %d", len(parts))
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("invalid bounding box coordinate %q: %w", p, err)
		}
		vals[i] = v
	}

	bbox := NewBoundingBox(vals[0], vals[1], vals[2], vals[3])
	if err := bbox.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return bbox, nil
}

// Validate checks that all corners are in range and that the box is not
// inverted on the latitude axis.
func (b BoundingBox) Validate() error {
	if err := ValidateCoords(b.MinLat, b.MinLon); err != nil {
		return fmt.Errorf("southwest corner: %w", err)
	}
	if err := ValidateCoords(b.MaxLat, b.MaxLon); err != nil {
		return fmt.Errorf("northeast corner: %w", err)
	}
	if b.MinLat > b.MaxLat {
		return fmt.Errorf("south latitude %f exceeds north latitude %f", b.MinLat, b.MaxLat)
	}
	return nil
}

// NorthEast returns the northeast corner of the box.
func (b BoundingBox) NorthEast() Location {
	return Location{Latitude: b.MaxLat, Longitude: b.MaxLon}
}

// SouthWest returns the southwest corner of the box.
func (b BoundingBox) SouthWest() Location {
	return Location{Latitude: b.MinLat, Longitude: b.MinLon}
}

// String renders the box in Overpass order: south,west,north,east.
func (b BoundingBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}
