// Package commons provides a client for the Wikimedia Commons API:
// geosearch over the file namespace and image info lookups.
package commons

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/openatlas/opendata/pkg/geo"
	"github.com/openatlas/opendata/pkg/opendata"
)

const (
	// DefaultGeosearchLimit is the default result limit for geosearch.
	DefaultGeosearchLimit = 100

	// DefaultThumbWidth is the default thumbnail width for image info.
	DefaultThumbWidth = 600

	// FileNamespace is the MediaWiki namespace for files.
	FileNamespace = 6
)

// GeosearchResult is one hit of a Commons geosearch.
type GeosearchResult struct {
	PageID    int     `json:"pageid"`
	Namespace int     `json:"ns"`
	Title     string  `json:"title"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Distance  float64 `json:"dist"`
	Primary   string  `json:"primary,omitempty"`
}

// ExtMetadataField is one entry of an image's extended metadata block.
type ExtMetadataField struct {
	Value  string `json:"value"`
	Source string `json:"source,omitempty"`
}

// ImageInfo is the raw per-revision info block of a file page.
type ImageInfo struct {
	URL            string                      `json:"url"`
	DescriptionURL string                      `json:"descriptionurl"`
	ThumbURL       string                      `json:"thumburl,omitempty"`
	ThumbWidth     int                         `json:"thumbwidth,omitempty"`
	ThumbHeight    int                         `json:"thumbheight,omitempty"`
	Width          int                         `json:"width,omitempty"`
	Height         int                         `json:"height,omitempty"`
	ExtMetadata    map[string]ExtMetadataField `json:"extmetadata,omitempty"`
}

// ImagePage is one page entry of an image info response.
type ImagePage struct {
	PageID    int         `json:"pageid"`
	Namespace int         `json:"ns"`
	Title     string      `json:"title"`
	ImageInfo []ImageInfo `json:"imageinfo"`
}

// ImageDetails flattens the first image-info entry's extended metadata
// alongside the raw info block.
type ImageDetails struct {
	Name        string    `json:"name,omitempty"`        // ObjectName
	Date        string    `json:"date,omitempty"`        // DateTimeOriginal
	Categories  string    `json:"categories,omitempty"`  // Categories
	Description string    `json:"description,omitempty"` // ImageDescription
	Artist      string    `json:"artist,omitempty"`      // Artist
	Info        ImageInfo `json:"info"`
}

// apiError is the explicit error object a MediaWiki response may carry.
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Client queries the Wikimedia Commons API. BaseURL is overridable for tests.
type Client struct {
	BaseURL string
	logger  *slog.Logger
}

// NewClient creates a Commons client against the public API.
func NewClient() *Client {
	return &Client{
		BaseURL: opendata.CommonsBaseURL,
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Geosearch returns file-namespace hits within the box described by its
// northeast and southwest corners. A response carrying an error object fails
// the whole call; no partial data is returned.
func (c *Client) Geosearch(ctx context.Context, ne, sw geo.Location, limit int) ([]GeosearchResult, error) {
	if err := ne.Validate(); err != nil {
		return nil, fmt.Errorf("northeast corner: %w", err)
	}
	if err := sw.Validate(); err != nil {
		return nil, fmt.Errorf("southwest corner: %w", err)
	}
	if limit <= 0 {
		limit = DefaultGeosearchLimit
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("action", "query")
	q.Set("list", "geosearch")
	// gsbbox order is top|left|bottom|right
	q.Set("gsbbox", fmt.Sprintf("%g|%g|%g|%g", ne.Latitude, sw.Longitude, sw.Latitude, ne.Longitude))
	q.Set("gsnamespace", strconv.Itoa(FileNamespace))
	q.Set("gslimit", strconv.Itoa(limit))
	q.Set("format", "json")
	req.URL.RawQuery = q.Encode()

	resp, err := opendata.MonitoredDoRequest(ctx, req, "geosearch")
	if err != nil {
		return nil, opendata.NetworkError(opendata.ServiceCommons, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, opendata.ProviderError(opendata.ServiceCommons, resp.StatusCode,
			fmt.Sprintf("geosearch returned status %d", resp.StatusCode))
	}

	var geosearchResp struct {
		Error *apiError `json:"error"`
		Query struct {
			Geosearch []GeosearchResult `json:"geosearch"`
		} `json:"query"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&geosearchResp); err != nil {
		return nil, opendata.ParseError(opendata.ServiceCommons, err)
	}
	if geosearchResp.Error != nil {
		return nil, opendata.ProviderError(opendata.ServiceCommons, resp.StatusCode,
			fmt.Sprintf("%s: %s", geosearchResp.Error.Code, geosearchResp.Error.Info))
	}

	return geosearchResp.Query.Geosearch, nil
}

// ImageInfoBatch requests image info and URL metadata for all page ids in
// one call, at the given thumbnail width. The result maps page id (as the
// provider's decimal string key) to its page entry.
func (c *Client) ImageInfoBatch(ctx context.Context, pageIDs []int, thumbWidth int) (map[string]ImagePage, error) {
	if len(pageIDs) == 0 {
		return nil, fmt.Errorf("at least one page id is required")
	}
	if thumbWidth <= 0 {
		thumbWidth = DefaultThumbWidth
	}

	ids := make([]string, len(pageIDs))
	for i, id := range pageIDs {
		ids[i] = strconv.Itoa(id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("action", "query")
	q.Set("pageids", strings.Join(ids, "|"))
	q.Set("prop", "imageinfo")
	q.Set("iiprop", "url|size|extmetadata")
	q.Set("iiurlwidth", strconv.Itoa(thumbWidth))
	q.Set("format", "json")
	req.URL.RawQuery = q.Encode()

	resp, err := opendata.MonitoredDoRequest(ctx, req, "image_info")
	if err != nil {
		return nil, opendata.NetworkError(opendata.ServiceCommons, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, opendata.ProviderError(opendata.ServiceCommons, resp.StatusCode,
			fmt.Sprintf("imageinfo returned status %d", resp.StatusCode))
	}

	var infoResp struct {
		Error *apiError `json:"error"`
		Query struct {
			Pages map[string]ImagePage `json:"pages"`
		} `json:"query"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&infoResp); err != nil {
		return nil, opendata.ParseError(opendata.ServiceCommons, err)
	}
	if infoResp.Error != nil {
		return nil, opendata.ProviderError(opendata.ServiceCommons, resp.StatusCode,
			fmt.Sprintf("%s: %s", infoResp.Error.Code, infoResp.Error.Info))
	}

	return infoResp.Query.Pages, nil
}

// ImageInfoSingle requests image info for one page and flattens the first
// info entry's extended metadata. A page id absent from the response (for
// example a deleted file) is a lookup error, not an empty result.
func (c *Client) ImageInfoSingle(ctx context.Context, pageID, thumbWidth int) (*ImageDetails, error) {
	pages, err := c.ImageInfoBatch(ctx, []int{pageID}, thumbWidth)
	if err != nil {
		return nil, err
	}

	key := strconv.Itoa(pageID)
	page, ok := pages[key]
	if !ok || len(page.ImageInfo) == 0 {
		return nil, opendata.LookupError(opendata.ServiceCommons, key)
	}

	info := page.ImageInfo[0]
	details := &ImageDetails{
		Name:        extValue(info, "ObjectName"),
		Date:        extValue(info, "DateTimeOriginal"),
		Categories:  extValue(info, "Categories"),
		Description: extValue(info, "ImageDescription"),
		Artist:      extValue(info, "Artist"),
		Info:        info,
	}
	return details, nil
}

// extValue reads one extended metadata field value, or "".
func extValue(info ImageInfo, key string) string {
	if field, ok := info.ExtMetadata[key]; ok {
		return field.Value
	}
	return ""
}
