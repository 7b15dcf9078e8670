// Package noaa talks to the NOAA CO-OPS web services: the metadata API for
// station harmonic constants and the data API for published predictions.
package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/ngmaloney/tidecast/internal/stations"
)

const (
	DefaultDataURL     = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"
	DefaultMetadataURL = "https://api.tidesandcurrents.noaa.gov/mdapi/prod/webapi"
)

// StationClient fetches station definitions from the CO-OPS metadata API
type StationClient interface {
	// GetStation retrieves a station's harmonic constants or, for a
	// subordinate station, its reference and prediction offsets
	GetStation(ctx context.Context, stationID string) (*stations.Definition, error)
}

// PredictionClient fetches NOAA's own published predictions
type PredictionClient interface {
	// GetHighLows retrieves high and low water between start and end
	GetHighLows(ctx context.Context, stationID string, start, end time.Time, metric bool) ([]models.Event, error)
}

// Client implements StationClient and PredictionClient
type Client struct {
	dataURL     string
	metadataURL string
	httpClient  *http.Client
}

// NewClient creates a CO-OPS client. Empty URLs select the public endpoints.
func NewClient(dataURL, metadataURL string) *Client {
	if dataURL == "" {
		dataURL = DefaultDataURL
	}
	if metadataURL == "" {
		metadataURL = DefaultMetadataURL
	}
	return &Client{
		dataURL:     dataURL,
		metadataURL: metadataURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// getJSON fetches url and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d for %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
