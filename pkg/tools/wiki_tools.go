package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openatlas/opendata/pkg/commons"
	"github.com/openatlas/opendata/pkg/geo"
	"github.com/openatlas/opendata/pkg/wikidata"
	"github.com/openatlas/opendata/pkg/wikipedia"
)

// WikipediaGeosearchInput defines the input for the Wikipedia geosearch
type WikipediaGeosearchInput struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Language  string  `json:"language,omitempty"`
	Radius    int     `json:"radius,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}

// WikipediaGeosearchOutput wraps the geosearch result
type WikipediaGeosearchOutput struct {
	Articles []wikipedia.Article `json:"articles"`
}

// WikipediaGeosearchTool returns a tool definition for finding Wikipedia articles near a point
func WikipediaGeosearchTool() mcp.Tool {
	return mcp.NewTool("wikipedia_geosearch",
		mcp.WithDescription("Find Wikipedia articles with coordinates near a point. Each result includes the canonical article URL"),
		mcp.WithNumber("latitude",
			mcp.Description("Latitude of the search center (default 37)"),
		),
		mcp.WithNumber("longitude",
			mcp.Description("Longitude of the search center (default -122)"),
		),
		mcp.WithString("language",
			mcp.Description("Wikipedia language edition, e.g. 'en' or 'de' (default en)"),
		),
		mcp.WithNumber("radius",
			mcp.Description("Search radius in meters (default 10000)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of articles to return (default 100)"),
		),
	)
}

// HandleWikipediaGeosearch implements the Wikipedia geosearch
func (r *Registry) HandleWikipediaGeosearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "wikipedia_geosearch")

	input, errResult, err := InputParser[WikipediaGeosearchInput](req)
	if err != nil {
		logger.Error("failed to parse input", "error", err)
		return errResult, nil
	}

	articles, err := r.Wikipedia.Geosearch(ctx, wikipedia.GeosearchOptions{
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Language:  input.Language,
		Radius:    input.Radius,
		Limit:     input.Limit,
	})
	if err != nil {
		logger.Error("geosearch failed", "error", err)
		return ErrorResponse(fmt.Sprintf("Failed to search Wikipedia: %v", err)), nil
	}

	logger.Info("geosearch complete", "count", len(articles))
	return JSONResult(WikipediaGeosearchOutput{Articles: articles})
}

// WikidataBoxQueryInput defines the input for the Wikidata box query
type WikidataBoxQueryInput struct {
	NorthEast geo.Location `json:"northEast"`
	SouthWest geo.Location `json:"southWest"`
	Limit     int          `json:"limit,omitempty"`
}

// WikidataBoxQueryOutput wraps the SPARQL result bindings
type WikidataBoxQueryOutput struct {
	Items []map[string]wikidata.Value `json:"items"`
}

// WikidataBoxQueryTool returns a tool definition for querying Wikidata places inside a box
func WikidataBoxQueryTool() mcp.Tool {
	return mcp.NewTool("wikidata_box_query",
		mcp.WithDescription("Query Wikidata for places inside a geographic box via SPARQL. Returns raw result bindings including place, location, label and optional image and Commons category"),
		mcp.WithObject("northEast",
			mcp.Required(),
			mcp.Description("North-east corner as an object with latitude and longitude fields"),
		),
		mcp.WithObject("southWest",
			mcp.Required(),
			mcp.Description("South-west corner as an object with latitude and longitude fields"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default 3000)"),
		),
	)
}

// HandleWikidataBoxQuery implements the Wikidata box query
func (r *Registry) HandleWikidataBoxQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "wikidata_box_query")

	input, errResult, err := InputParser[WikidataBoxQueryInput](req)
	if err != nil {
		logger.Error("failed to parse input", "error", err)
		return errResult, nil
	}

	bindings, err := r.Wikidata.QueryBox(ctx, input.NorthEast, input.SouthWest, input.Limit)
	if err != nil {
		logger.Error("box query failed", "error", err)
		return ErrorResponse(fmt.Sprintf("Failed to query Wikidata: %v", err)), nil
	}

	items := make([]map[string]wikidata.Value, len(bindings))
	for i, b := range bindings {
		items[i] = b
	}

	logger.Info("box query complete", "count", len(items))
	return JSONResult(WikidataBoxQueryOutput{Items: items})
}

// CommonsGeosearchInput defines the input for the Commons geosearch
type CommonsGeosearchInput struct {
	NorthEast geo.Location `json:"northEast"`
	SouthWest geo.Location `json:"southWest"`
	Limit     int          `json:"limit,omitempty"`
}

// CommonsGeosearchOutput wraps the Commons geosearch result
type CommonsGeosearchOutput struct {
	Files []commons.GeosearchResult `json:"files"`
}

// CommonsGeosearchTool returns a tool definition for finding Commons media inside a box
func CommonsGeosearchTool() mcp.Tool {
	return mcp.NewTool("commons_geosearch",
		mcp.WithDescription("Find geotagged Wikimedia Commons files inside a geographic box"),
		mcp.WithObject("northEast",
			mcp.Required(),
			mcp.Description("North-east corner as an object with latitude and longitude fields"),
		),
		mcp.WithObject("southWest",
			mcp.Required(),
			mcp.Description("South-west corner as an object with latitude and longitude fields"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of files (default 100)"),
		),
	)
}

// HandleCommonsGeosearch implements the Commons geosearch
func (r *Registry) HandleCommonsGeosearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "commons_geosearch")

	input, errResult, err := InputParser[CommonsGeosearchInput](req)
	if err != nil {
		logger.Error("failed to parse input", "error", err)
		return errResult, nil
	}

	files, err := r.Commons.Geosearch(ctx, input.NorthEast, input.SouthWest, input.Limit)
	if err != nil {
		logger.Error("geosearch failed", "error", err)
		return ErrorResponse(fmt.Sprintf("Failed to search Commons: %v", err)), nil
	}

	logger.Info("geosearch complete", "count", len(files))
	return JSONResult(CommonsGeosearchOutput{Files: files})
}

// CommonsImageInfoInput defines the input for the single-page image info lookup
type CommonsImageInfoInput struct {
	PageID     int `json:"pageId"`
	ThumbWidth int `json:"thumbWidth,omitempty"`
}

// CommonsImageInfoTool returns a tool definition for fetching image details for one Commons page
func CommonsImageInfoTool() mcp.Tool {
	return mcp.NewTool("commons_image_info",
		mcp.WithDescription("Fetch image URLs, dimensions and metadata (name, date, categories, description, artist) for a single Wikimedia Commons page"),
		mcp.WithNumber("pageId",
			mcp.Required(),
			mcp.Description("Commons page ID"),
		),
		mcp.WithNumber("thumbWidth",
			mcp.Description("Requested thumbnail width in pixels (default 600)"),
		),
	)
}

// HandleCommonsImageInfo implements the single-page image info lookup
func (r *Registry) HandleCommonsImageInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "commons_image_info")

	input, errResult, err := InputParser[CommonsImageInfoInput](req)
	if err != nil {
		logger.Error("failed to parse input", "error", err)
		return errResult, nil
	}

	if input.PageID <= 0 {
		return ErrorResponse("pageId is required"), nil
	}

	details, err := r.Commons.ImageInfoSingle(ctx, input.PageID, input.ThumbWidth)
	if err != nil {
		logger.Error("image info lookup failed", "page_id", input.PageID, "error", err)
		return ErrorResponse(fmt.Sprintf("Failed to fetch image info: %v", err)), nil
	}

	logger.Info("image info lookup complete", "page_id", input.PageID)
	return JSONResult(details)
}

// CommonsImageInfoBatchInput defines the input for the batched image info lookup
type CommonsImageInfoBatchInput struct {
	PageIDs    []int `json:"pageIds"`
	ThumbWidth int   `json:"thumbWidth,omitempty"`
}

// CommonsImageInfoBatchOutput wraps the batched lookup result keyed by page ID
type CommonsImageInfoBatchOutput struct {
	Pages map[string]commons.ImagePage `json:"pages"`
}

// CommonsImageInfoBatchTool returns a tool definition for fetching image info for many pages at once
func CommonsImageInfoBatchTool() mcp.Tool {
	return mcp.NewTool("commons_image_info_batch",
		mcp.WithDescription("Fetch image URLs, dimensions and metadata for multiple Wikimedia Commons pages in one request, keyed by page ID"),
		mcp.WithArray("pageIds",
			mcp.Required(),
			mcp.Description("Commons page IDs as numbers"),
		),
		mcp.WithNumber("thumbWidth",
			mcp.Description("Requested thumbnail width in pixels (default 600)"),
		),
	)
}

// HandleCommonsImageInfoBatch implements the batched image info lookup
func (r *Registry) HandleCommonsImageInfoBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "commons_image_info_batch")

	input, errResult, err := InputParser[CommonsImageInfoBatchInput](req)
	if err != nil {
		logger.Error("failed to parse input", "error", err)
		return errResult, nil
	}

	if len(input.PageIDs) == 0 {
		return ErrorResponse("At least one page ID is required"), nil
	}

	pages, err := r.Commons.ImageInfoBatch(ctx, input.PageIDs, input.ThumbWidth)
	if err != nil {
		logger.Error("batch image info lookup failed", "error", err)
		return ErrorResponse(fmt.Sprintf("Failed to fetch image info: %v", err)), nil
	}

	logger.Info("batch image info lookup complete", "requested", len(input.PageIDs), "returned", len(pages))
	return JSONResult(CommonsImageInfoBatchOutput{Pages: pages})
}
