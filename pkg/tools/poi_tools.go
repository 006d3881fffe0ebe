package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openatlas/opendata/pkg/geo"
	"github.com/openatlas/opendata/pkg/overpass"
)

// QueryPOIsInput defines the input parameters for the generic POI query
type QueryPOIsInput struct {
	BBox       geo.BoundingBox     `json:"bbox"`
	Categories []overpass.Category `json:"categories"`
}

// POIOutput wraps a normalized POI list
type POIOutput struct {
	POIs []overpass.POI `json:"pois"`
}

// QueryPOIsTool returns a tool definition for querying POIs by bounding box and categories
func QueryPOIsTool() mcp.Tool {
	return mcp.NewTool("query_pois",
		mcp.WithDescription("Query OpenStreetMap points of interest within a bounding box, filtered by tag categories. Field names are case-sensitive. Example: bbox: {\"minLat\": 52.51, \"minLon\": 13.37, \"maxLat\": 52.53, \"maxLon\": 13.41}, categories: [{\"key\": \"amenity\", \"value\": \"cafe\"}]"),
		mcp.WithObject("bbox",
			mcp.Required(),
			mcp.Description("Bounding box object with fields minLat, minLon, maxLat, maxLon (numbers)"),
		),
		mcp.WithArray("categories",
			mcp.Required(),
			mcp.Description("Tag filters as objects with key and value fields, e.g. [{\"key\": \"amenity\", \"value\": \"restaurant\"}]"),
		),
	)
}

// HandleQueryPOIs implements the generic POI query
func (r *Registry) HandleQueryPOIs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "query_pois")

	input, errResult, err := InputParser[QueryPOIsInput](req)
	if err != nil {
		logger.Error("failed to parse input", "error", err)
		return errResult, nil
	}

	if err := input.BBox.Validate(); err != nil {
		return ErrorResponse(fmt.Sprintf("Invalid bounding box: %v", err)), nil
	}
	if len(input.Categories) == 0 {
		return ErrorResponse("At least one category is required"), nil
	}

	pois, err := r.Overpass.QueryPOIs(ctx, input.BBox, input.Categories)
	if err != nil {
		logger.Error("POI query failed", "error", err)
		return ErrorResponse(fmt.Sprintf("Failed to query places: %v", err)), nil
	}

	logger.Info("POI query complete", "count", len(pois))
	return JSONResult(POIOutput{POIs: pois})
}

// FindRestaurantsTool returns a tool definition for the fixed restaurant demo query
func FindRestaurantsTool() mcp.Tool {
	return mcp.NewTool("find_restaurants",
		mcp.WithDescription("Find restaurants within the fixed demo bounding box in central Berlin"),
	)
}

// HandleFindRestaurants implements the restaurant demo query
func (r *Registry) HandleFindRestaurants(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "find_restaurants")

	pois, err := r.Overpass.QueryRestaurants(ctx)
	if err != nil {
		logger.Error("restaurant query failed", "error", err)
		return ErrorResponse(fmt.Sprintf("Failed to query restaurants: %v", err)), nil
	}

	logger.Info("restaurant query complete", "count", len(pois))
	return JSONResult(POIOutput{POIs: pois})
}

// FindFoodShopsInput defines the input for the food shop query
type FindFoodShopsInput struct {
	BBox geo.BoundingBox `json:"bbox"`
}

// FindFoodShopsTool returns a tool definition for the five-category food shop query
func FindFoodShopsTool() mcp.Tool {
	return mcp.NewTool("find_food_shops",
		mcp.WithDescription("Find cafes, restaurants, delis, ice cream parlors and fast food within a bounding box, typically a map viewport"),
		mcp.WithObject("bbox",
			mcp.Required(),
			mcp.Description("Bounding box object with fields minLat, minLon, maxLat, maxLon (numbers)"),
		),
	)
}

// HandleFindFoodShops implements the food shop query
func (r *Registry) HandleFindFoodShops(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "find_food_shops")

	input, errResult, err := InputParser[FindFoodShopsInput](req)
	if err != nil {
		logger.Error("failed to parse input", "error", err)
		return errResult, nil
	}

	if err := input.BBox.Validate(); err != nil {
		return ErrorResponse(fmt.Sprintf("Invalid bounding box: %v", err)), nil
	}

	pois, err := r.Overpass.QueryFoodShops(ctx, input.BBox)
	if err != nil {
		logger.Error("food shop query failed", "error", err)
		return ErrorResponse(fmt.Sprintf("Failed to query food shops: %v", err)), nil
	}

	logger.Info("food shop query complete", "count", len(pois))
	return JSONResult(POIOutput{POIs: pois})
}

// DietCensusInput defines the input for the diet census
type DietCensusInput struct {
	BBox *geo.BoundingBox `json:"bbox,omitempty"`
}

// DietCensusOutput wraps the aggregated diet counts
type DietCensusOutput struct {
	Diets []overpass.DietCount `json:"diets"`
}

// DietCensusTool returns a tool definition for aggregating restaurant diets
func DietCensusTool() mcp.Tool {
	return mcp.NewTool("diet_census",
		mcp.WithDescription("Count dietary offerings (cuisine and diet:*=yes tags) across restaurants in a bounding box. Without a bbox the demo box is used"),
		mcp.WithObject("bbox",
			mcp.Description("Optional bounding box object with fields minLat, minLon, maxLat, maxLon (numbers)"),
		),
	)
}

// HandleDietCensus fetches restaurants and aggregates their diet labels
func (r *Registry) HandleDietCensus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "diet_census")

	input, errResult, err := InputParser[DietCensusInput](req)
	if err != nil {
		logger.Error("failed to parse input", "error", err)
		return errResult, nil
	}

	bbox := overpass.RestaurantDemoBBox
	if input.BBox != nil {
		if err := input.BBox.Validate(); err != nil {
			return ErrorResponse(fmt.Sprintf("Invalid bounding box: %v", err)), nil
		}
		bbox = *input.BBox
	}

	pois, err := r.Overpass.QueryPOIs(ctx, bbox, []overpass.Category{{Key: "amenity", Value: "restaurant"}})
	if err != nil {
		logger.Error("restaurant query failed", "error", err)
		return ErrorResponse(fmt.Sprintf("Failed to query restaurants: %v", err)), nil
	}

	diets := overpass.ExtractDiets(pois)
	logger.Info("diet census complete", "restaurants", len(pois), "diets", len(diets))
	return JSONResult(DietCensusOutput{Diets: diets})
}
