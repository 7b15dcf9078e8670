package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ngmaloney/tidecast/internal/config"
	"github.com/ngmaloney/tidecast/internal/events"
	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/ngmaloney/tidecast/internal/predict"
	"github.com/ngmaloney/tidecast/internal/stations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var metadataRoutes = map[string]string{
	"/stations/8443970.json": `{"stations": [{"id": "8443970", "name": "Boston", "state": "MA",
		"lat": 42.3539, "lng": -71.0503, "timezone": "EST", "timezonecorr": -5, "type": "R"}]}`,
	"/stations/8443970/harcon.json": `{"units": "feet", "HarmonicConstituents": [
		{"number": 1, "name": "M2", "amplitude": 4.5, "phase_GMT": 110.2, "speed": 28.984104},
		{"number": 2, "name": "S2", "amplitude": 0.7, "phase_GMT": 150.1, "speed": 30.0}]}`,
	"/stations/8443970/datums.json": `{"datums": [{"name": "MLLW", "value": 4.9}, {"name": "MSL", "value": 9.7}]}`,
	"/stations/8444162.json": `{"stations": [{"id": "8444162", "name": "Weymouth Fore River", "state": "MA",
		"lat": 42.2333, "lng": -70.9667, "timezone": "EST", "timezonecorr": -5, "type": "S"}]}`,
	"/stations/8444162/tidepredoffsets.json": `{"refStationId": "8443970",
		"heightOffsetHighTide": 1.05, "heightOffsetLowTide": 1.0,
		"timeOffsetHighTide": 10, "timeOffsetLowTide": 25, "heightAdjustedType": "R"}`,
}

func TestFetch(t *testing.T) {
	setup(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := metadataRoutes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	defer server.Close()
	t.Setenv("TIDECAST_NOAA_METADATA_URL", server.URL)

	out, stderr, err := run(t, "fetch", "8444162")
	require.NoError(t, err)
	assert.Contains(t, out, "Fetched 8444162 Weymouth Fore River, MA")
	assert.Contains(t, out, "Fetched 8443970 Boston, MA")
	assert.Contains(t, stderr, "Successfully imported 2 stations")

	out, _, err = run(t, "predict", "8444162", "--from", "2025-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Weymouth Fore River, MA (8444162)")
	assert.Contains(t, out, "High Tide")
	assert.Contains(t, out, "Sunrise")

	_, _, err = run(t, "fetch", "1234567")
	assert.Error(t, err)
}

// publishedHighLows renders predictions as the CO-OPS data API would,
// rounded to the minute.
func publishedHighLows(t *testing.T, stationID string, start, end time.Time) []byte {
	t.Helper()
	st, err := stations.Load("", stationID)
	require.NoError(t, err)
	p, err := predict.New(st, config.Default(), zap.NewNop())
	require.NoError(t, err)

	type row struct {
		T    string `json:"t"`
		V    string `json:"v"`
		Type string `json:"type"`
	}
	var rows []row
	for _, e := range p.Predict(start, end, events.MaxMinOnly).Events {
		at := e.Time.UTC().Round(time.Minute)
		if at.Before(start) || !at.Before(end) {
			continue
		}
		typ := "L"
		if e.Type == models.EventMax {
			typ = "H"
		}
		rows = append(rows, row{
			T:    at.Format("2006-01-02 15:04"),
			V:    fmt.Sprintf("%.3f", *e.Level),
			Type: typ,
		})
	}
	body, err := json.Marshal(map[string]any{"predictions": rows})
	require.NoError(t, err)
	return body
}

func TestCompare(t *testing.T) {
	setup(t)
	importFixture(t)

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)
	body := publishedHighLows(t, "8443970", start, end)
	n := strings.Count(string(body), `"type"`)
	require.Greater(t, n, 4)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "8443970", r.URL.Query().Get("station"))
		assert.Equal(t, "english", r.URL.Query().Get("units"))
		w.Write(body)
	}))
	defer server.Close()
	t.Setenv("TIDECAST_NOAA_DATA_URL", server.URL)

	out, _, err := run(t, "compare", "8443970", "--from", "2025-03-10", "--tz", "UTC")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("Matched %d of %d", n, n))
	assert.NotContains(t, out, "no prediction")
	assert.Contains(t, out, "High Tide")

	_, _, err = run(t, "compare", "0000000")
	assert.ErrorIs(t, err, stations.ErrNotFound)
}

func TestPort(t *testing.T) {
	setup(t)
	importFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Long Wharf, Boston" {
			w.Write([]byte(`[{"lat": "42.3601", "lon": "-71.0498", "display_name": "Long Wharf"}]`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()
	t.Setenv("TIDECAST_GEOCODER_URL", server.URL)

	out, _, err := run(t, "port", "add", "wharf", "Long Wharf, Boston")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved wharf: station 8443970")

	out, _, err = run(t, "port", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "wharf")
	assert.Contains(t, out, "Long Wharf, Boston")

	out, _, err = run(t, "predict", "wharf", "--from", "2025-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Boston (8443970)")

	_, _, err = run(t, "port", "add", "lost", "Atlantis")
	assert.Error(t, err)

	_, _, err = run(t, "port", "rm", "wharf")
	require.NoError(t, err)
	out, _, err = run(t, "port", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No ports")

	_, _, err = run(t, "predict", "wharf")
	assert.ErrorIs(t, err, stations.ErrNotFound)
}
