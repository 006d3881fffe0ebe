package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/openatlas/opendata/pkg/commons"
	"github.com/openatlas/opendata/pkg/monitoring"
	"github.com/openatlas/opendata/pkg/overpass"
	"github.com/openatlas/opendata/pkg/tracing"
	"github.com/openatlas/opendata/pkg/wikidata"
	"github.com/openatlas/opendata/pkg/wikipedia"
)

// Registry contains all tool definitions and the provider clients they use
type Registry struct {
	logger *slog.Logger

	Overpass  *overpass.Client
	Wikipedia *wikipedia.Client
	Wikidata  *wikidata.Client
	Commons   *commons.Client
}

// NewRegistry creates a new tool registry with default provider clients
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{
		logger:    logger,
		Overpass:  overpass.NewClient(),
		Wikipedia: wikipedia.NewClient(),
		Wikidata:  wikidata.NewClient(),
		Commons:   commons.NewClient(),
	}
	r.Overpass.SetLogger(logger)
	r.Wikipedia.SetLogger(logger)
	r.Wikidata.SetLogger(logger)
	r.Commons.SetLogger(logger)
	return r
}

// ToolDefinition represents an open-data MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// GetToolDefinitions returns the list of all available tools.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	defs := []ToolDefinition{
		// Version and capability tools
		{
			Name:        "get_version",
			Description: "Get the version information for this open-data MCP",
			Tool:        GetVersionTool(),
			Handler:     HandleGetVersion,
		},

		// OpenStreetMap POI tools
		{
			Name:        "query_pois",
			Description: "Query OSM points of interest within a bounding box filtered by tag categories. Parameters: bbox (object with minLat, minLon, maxLat, maxLon), categories (array of key/value objects)",
			Tool:        QueryPOIsTool(),
			Handler:     r.HandleQueryPOIs,
		},
		{
			Name:        "find_restaurants",
			Description: "Find restaurants in the fixed demo bounding box. No parameters",
			Tool:        FindRestaurantsTool(),
			Handler:     r.HandleFindRestaurants,
		},
		{
			Name:        "find_food_shops",
			Description: "Find cafes, restaurants, delis, ice cream parlors and fast food in a bounding box. Parameters: bbox (object with minLat, minLon, maxLat, maxLon)",
			Tool:        FindFoodShopsTool(),
			Handler:     r.HandleFindFoodShops,
		},
		{
			Name:        "diet_census",
			Description: "Aggregate cuisine and diet:*=yes tags across restaurants in a bounding box. Parameters: bbox (optional object with minLat, minLon, maxLat, maxLon)",
			Tool:        DietCensusTool(),
			Handler:     r.HandleDietCensus,
		},

		// Wikipedia and Wikidata tools
		{
			Name:        "wikipedia_geosearch",
			Description: "Find Wikipedia articles near a point. Parameters: latitude (number), longitude (number), language (string), radius (number in meters), limit (number)",
			Tool:        WikipediaGeosearchTool(),
			Handler:     r.HandleWikipediaGeosearch,
		},
		{
			Name:        "wikidata_box_query",
			Description: "Query Wikidata for places inside a geographic box. Parameters: northEast (latitude/longitude object), southWest (latitude/longitude object), limit (number)",
			Tool:        WikidataBoxQueryTool(),
			Handler:     r.HandleWikidataBoxQuery,
		},

		// Wikimedia Commons tools
		{
			Name:        "commons_geosearch",
			Description: "Find geotagged Commons files inside a geographic box. Parameters: northEast (latitude/longitude object), southWest (latitude/longitude object), limit (number)",
			Tool:        CommonsGeosearchTool(),
			Handler:     r.HandleCommonsGeosearch,
		},
		{
			Name:        "commons_image_info",
			Description: "Fetch image URLs and metadata for one Commons page. Parameters: pageId (number), thumbWidth (number)",
			Tool:        CommonsImageInfoTool(),
			Handler:     r.HandleCommonsImageInfo,
		},
		{
			Name:        "commons_image_info_batch",
			Description: "Fetch image URLs and metadata for multiple Commons pages. Parameters: pageIds (array of numbers), thumbWidth (number)",
			Tool:        CommonsImageInfoBatchTool(),
			Handler:     r.HandleCommonsImageInfoBatch,
		},
	}

	return defs
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		tracedHandler := r.wrapWithTracing(def.Name, def.Handler)
		mcpServer.AddTool(def.Tool, tracedHandler)
	}
}

// wrapWithTracing wraps a tool handler with OpenTelemetry tracing and metrics
func (r *Registry) wrapWithTracing(toolName string, handler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spanName := fmt.Sprintf("mcp.tool.%s", toolName)
		ctx, span := tracing.StartSpan(ctx, spanName,
			trace.WithAttributes(
				attribute.String(tracing.AttrMCPToolName, toolName),
			),
		)
		defer span.End()

		startTime := time.Now()

		result, err := handler(ctx, req)

		duration := time.Since(startTime)
		durationMs := duration.Milliseconds()

		status := tracing.StatusSuccess
		success := err == nil && !IsErrorResult(result)
		if err != nil {
			status = tracing.StatusError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			if !success {
				status = tracing.StatusError
			}
			span.SetStatus(codes.Ok, "")
		}

		resultSize := 0
		if result != nil && result.Content != nil {
			if data, marshalErr := json.Marshal(result.Content); marshalErr == nil {
				resultSize = len(data)
			}
		}

		span.SetAttributes(
			attribute.String(tracing.AttrMCPToolStatus, status),
			attribute.Int64(tracing.AttrMCPToolDuration, durationMs),
			attribute.Int(tracing.AttrMCPResultSize, resultSize),
		)

		monitoring.RecordMCPRequest(toolName, duration, success)

		r.logger.Debug("tool execution traced",
			"tool", toolName,
			"duration_ms", durationMs,
			"status", status,
			"result_size", resultSize,
		)

		return result, err
	}
}

// GetToolNames returns a list of all tool names.
func (r *Registry) GetToolNames() []string {
	defs := r.GetToolDefinitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

// RegisterAll registers all tools with the MCP server.
func (r *Registry) RegisterAll(mcpServer *server.MCPServer) {
	r.RegisterTools(mcpServer)
}
