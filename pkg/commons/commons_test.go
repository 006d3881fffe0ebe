package commons

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/openatlas/opendata/pkg/geo"
	"github.com/openatlas/opendata/pkg/opendata"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient()
	client.BaseURL = server.URL
	return client
}

func TestGeosearch(t *testing.T) {
	var receivedQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		receivedQuery = r.URL.Query()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": {
				"geosearch": [
					{"pageid": 12345, "ns": 6, "title": "File:Brandenburger Tor abends.jpg",
					 "lat": 52.5163, "lon": 13.3777, "dist": 0, "primary": ""}
				]
			}
		}`))
	})

	ne := geo.Location{Latitude: 52.53, Longitude: 13.41}
	sw := geo.Location{Latitude: 52.51, Longitude: 13.37}

	results, err := client.Geosearch(context.Background(), ne, sw, 50)
	if err != nil {
		t.Fatalf("Geosearch() error = %v", err)
	}

	// gsbbox order is top|left|bottom|right
	if receivedQuery.Get("gsbbox") != "52.53|13.37|52.51|13.41" {
		t.Errorf("gsbbox = %q", receivedQuery.Get("gsbbox"))
	}
	if receivedQuery.Get("gsnamespace") != "6" {
		t.Errorf("gsnamespace = %q", receivedQuery.Get("gsnamespace"))
	}
	if receivedQuery.Get("gslimit") != "50" {
		t.Errorf("gslimit = %q", receivedQuery.Get("gslimit"))
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].PageID != 12345 || results[0].Title != "File:Brandenburger Tor abends.jpg" {
		t.Errorf("unexpected result: %+v", results[0])
	}
}

func TestGeosearchAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// MediaWiki reports errors with status 200 and an error object
		_, _ = w.Write([]byte(`{"error": {"code": "invalidbbox", "info": "Invalid bounding box."}}`))
	})

	ne := geo.Location{Latitude: 52.53, Longitude: 13.41}
	sw := geo.Location{Latitude: 52.51, Longitude: 13.37}

	_, err := client.Geosearch(context.Background(), ne, sw, 0)
	if !errors.Is(err, opendata.ErrProvider) {
		t.Errorf("error = %v, want ErrProvider", err)
	}
}

func TestImageInfoBatch(t *testing.T) {
	var receivedQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		receivedQuery = r.URL.Query()

		_, _ = w.Write([]byte(`{
			"query": {
				"pages": {
					"12345": {
						"pageid": 12345, "ns": 6, "title": "File:A.jpg",
						"imageinfo": [{
							"url": "https://upload.wikimedia.org/a.jpg",
							"descriptionurl": "https://commons.wikimedia.org/wiki/File:A.jpg",
							"thumburl": "https://upload.wikimedia.org/thumb/a.jpg",
							"thumbwidth": 600, "thumbheight": 400,
							"width": 4000, "height": 2600
						}]
					},
					"67890": {
						"pageid": 67890, "ns": 6, "title": "File:B.jpg",
						"imageinfo": [{
							"url": "https://upload.wikimedia.org/b.jpg",
							"descriptionurl": "https://commons.wikimedia.org/wiki/File:B.jpg"
						}]
					}
				}
			}
		}`))
	})

	pages, err := client.ImageInfoBatch(context.Background(), []int{12345, 67890}, 0)
	if err != nil {
		t.Fatalf("ImageInfoBatch() error = %v", err)
	}

	if receivedQuery.Get("pageids") != "12345|67890" {
		t.Errorf("pageids = %q", receivedQuery.Get("pageids"))
	}
	if receivedQuery.Get("prop") != "imageinfo" {
		t.Errorf("prop = %q", receivedQuery.Get("prop"))
	}
	if receivedQuery.Get("iiprop") != "url|size|extmetadata" {
		t.Errorf("iiprop = %q", receivedQuery.Get("iiprop"))
	}
	if receivedQuery.Get("iiurlwidth") != "600" {
		t.Errorf("default iiurlwidth = %q", receivedQuery.Get("iiurlwidth"))
	}

	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	page := pages["12345"]
	if page.Title != "File:A.jpg" || len(page.ImageInfo) != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
	if page.ImageInfo[0].ThumbURL != "https://upload.wikimedia.org/thumb/a.jpg" {
		t.Errorf("ThumbURL = %q", page.ImageInfo[0].ThumbURL)
	}
}

func TestImageInfoBatchEmptyInput(t *testing.T) {
	client := NewClient()
	if _, err := client.ImageInfoBatch(context.Background(), nil, 0); err == nil {
		t.Error("expected error for empty page id list")
	}
}

func TestImageInfoSingle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"query": {
				"pages": {
					"12345": {
						"pageid": 12345, "ns": 6, "title": "File:A.jpg",
						"imageinfo": [{
							"url": "https://upload.wikimedia.org/a.jpg",
							"descriptionurl": "https://commons.wikimedia.org/wiki/File:A.jpg",
							"extmetadata": {
								"ObjectName": {"value": "Brandenburg Gate", "source": "commons-desc-page"},
								"DateTimeOriginal": {"value": "2019-06-01", "source": "commons-desc-page"},
								"Categories": {"value": "Brandenburg Gate|Night", "source": "commons-categories"},
								"ImageDescription": {"value": "The gate at night", "source": "commons-desc-page"},
								"Artist": {"value": "Jane Doe", "source": "commons-desc-page"}
							}
						}]
					}
				}
			}
		}`))
	})

	details, err := client.ImageInfoSingle(context.Background(), 12345, 0)
	if err != nil {
		t.Fatalf("ImageInfoSingle() error = %v", err)
	}

	if details.Name != "Brandenburg Gate" {
		t.Errorf("Name = %q", details.Name)
	}
	if details.Date != "2019-06-01" {
		t.Errorf("Date = %q", details.Date)
	}
	if details.Categories != "Brandenburg Gate|Night" {
		t.Errorf("Categories = %q", details.Categories)
	}
	if details.Description != "The gate at night" {
		t.Errorf("Description = %q", details.Description)
	}
	if details.Artist != "Jane Doe" {
		t.Errorf("Artist = %q", details.Artist)
	}
	if details.Info.URL != "https://upload.wikimedia.org/a.jpg" {
		t.Errorf("Info.URL = %q", details.Info.URL)
	}
}

func TestImageInfoSingleMissingPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query": {"pages": {}}}`))
	})

	_, err := client.ImageInfoSingle(context.Background(), 99999, 0)
	if !errors.Is(err, opendata.ErrLookup) {
		t.Errorf("error = %v, want ErrLookup", err)
	}
}

func TestImageInfoSingleNoImageInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"query": {
				"pages": {
					"12345": {"pageid": 12345, "ns": 6, "title": "File:A.jpg"}
				}
			}
		}`))
	})

	_, err := client.ImageInfoSingle(context.Background(), 12345, 0)
	if !errors.Is(err, opendata.ErrLookup) {
		t.Errorf("error = %v, want ErrLookup", err)
	}
}
