package noaa

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ngmaloney/tidecast/internal/models"
)

// GetHighLows retrieves NOAA's published high and low water for a date
// range. Levels are above MLLW in feet, or meters when metric is set.
func (c *Client) GetHighLows(ctx context.Context, stationID string, start, end time.Time, metric bool) ([]models.Event, error) {
	units := "english"
	if metric {
		units = "metric"
	}

	// Build query parameters
	params := url.Values{}
	params.Add("begin_date", start.UTC().Format("20060102 15:04"))
	params.Add("end_date", end.UTC().Format("20060102 15:04"))
	params.Add("station", stationID)
	params.Add("product", "predictions")
	params.Add("datum", "MLLW")
	params.Add("time_zone", "gmt")
	params.Add("interval", "hilo")
	params.Add("units", units)
	params.Add("format", "json")
	params.Add("application", "tidecast")

	var tideResp tideResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s?%s", c.dataURL, params.Encode()), &tideResp); err != nil {
		return nil, fmt.Errorf("fetching predictions for %s: %w", stationID, err)
	}
	if tideResp.Error.Message != "" {
		return nil, fmt.Errorf("predictions for %s: %s", stationID, tideResp.Error.Message)
	}

	events := make([]models.Event, 0, len(tideResp.Predictions))
	for _, pred := range tideResp.Predictions {
		eventTime, err := time.Parse("2006-01-02 15:04", pred.Time)
		if err != nil {
			continue // Skip invalid times
		}
		if eventTime.Before(start) || !eventTime.Before(end) {
			continue
		}

		typ := models.EventMin
		if pred.Type == "H" || pred.Type == "HH" {
			typ = models.EventMax
		}

		height, err := strconv.ParseFloat(pred.Height, 64)
		if err != nil {
			continue
		}

		events = append(events, models.Event{
			Time:  eventTime,
			Type:  typ,
			Level: models.Float(height),
		})
	}
	return events, nil
}

// Internal types for NOAA CO-OPS API responses

type tideResponse struct {
	Predictions []struct {
		Time   string `json:"t"`
		Height string `json:"v"`    // NOAA returns this as string
		Type   string `json:"type"` // "H", "L", or "HH"/"LL" for mixed tides
	} `json:"predictions"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
