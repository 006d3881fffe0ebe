package overpass

import (
	"fmt"
	"strings"

	"github.com/openatlas/opendata/pkg/geo"
)

// Builder provides a fluent interface for composing Overpass QL queries.
// All queries start with [out:json] to request JSON output.
type Builder struct {
	buf        strings.Builder
	hasElement bool
}

// NewBuilder creates an Overpass query builder with initial settings.
func NewBuilder() *Builder {
	b := &Builder{}
	b.buf.WriteString("[out:json];")
	return b
}

// WithNodeInBBox adds a node query within a bounding box with the category filter.
func (b *Builder) WithNodeInBBox(bbox geo.BoundingBox, cat Category) *Builder {
	b.addElement("node", bbox, cat)
	return b
}

// WithWayInBBox adds a way query within a bounding box with the category filter.
func (b *Builder) WithWayInBBox(bbox geo.BoundingBox, cat Category) *Builder {
	b.addElement("way", bbox, cat)
	return b
}

// WithRelationInBBox adds a relation query within a bounding box with the category filter.
func (b *Builder) WithRelationInBBox(bbox geo.BoundingBox, cat Category) *Builder {
	b.addElement("relation", bbox, cat)
	return b
}

// WithCategory adds the node/way/relation triple for one category so that
// every element kind carrying the tag is matched.
func (b *Builder) WithCategory(bbox geo.BoundingBox, cat Category) *Builder {
	return b.WithNodeInBBox(bbox, cat).
		WithWayInBBox(bbox, cat).
		WithRelationInBBox(bbox, cat)
}

// Build closes the element group and appends the output statements. The
// skeleton recursion (">;out skel qt;") pulls in member geometry for ways
// and relations.
func (b *Builder) Build() string {
	if b.hasElement {
		b.buf.WriteString(");out body;>;out skel qt;")
		b.hasElement = false
	}
	return b.buf.String()
}

// addElement appends one element query with its bbox and tag filter.
func (b *Builder) addElement(kind string, bbox geo.BoundingBox, cat Category) {
	if !b.hasElement {
		b.buf.WriteString("(")
		b.hasElement = true
	}
	b.buf.WriteString(fmt.Sprintf("%s%s(%s);", kind, cat, bbox))
}

// BuildPOIQuery returns the complete Overpass QL query matching nodes, ways
// and relations for every category within the bounding box.
func BuildPOIQuery(bbox geo.BoundingBox, categories []Category) string {
	b := NewBuilder()
	for _, cat := range categories {
		b.WithCategory(bbox, cat)
	}
	return b.Build()
}
