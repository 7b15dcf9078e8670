package noaa

import (
	"testing"
	"time"

	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	published := []models.Event{
		{Time: at(3, 0), Type: models.EventMax, Level: models.Float(9.5)},
		{Time: at(9, 10), Type: models.EventMin, Level: models.Float(0.5)},
		{Time: at(15, 30), Type: models.EventMax, Level: models.Float(9.8)},
	}
	predicted := []models.Event{
		{Time: at(3, 4), Type: models.EventMax, Level: models.Float(9.6)},
		{Time: at(6, 0), Type: models.EventSunrise},
		{Time: at(9, 7), Type: models.EventMin, Level: models.Float(0.3)},
		{Time: at(22, 0), Type: models.EventMax, Level: models.Float(9.7)},
	}

	matches := Compare(published, predicted)
	require.Len(t, matches, 3)

	require.NotNil(t, matches[0].Predicted)
	assert.Equal(t, 4*time.Minute, matches[0].TimeDiff)
	assert.InDelta(t, 0.1, matches[0].LevelDiff, 1e-9)

	require.NotNil(t, matches[1].Predicted)
	assert.Equal(t, -3*time.Minute, matches[1].TimeDiff)
	assert.InDelta(t, -0.2, matches[1].LevelDiff, 1e-9)

	assert.Nil(t, matches[2].Predicted, "nearest max is beyond the match window")

	s := Summarize(matches)
	assert.Equal(t, 2, s.Matched)
	assert.Equal(t, 1, s.Unmatched)
	assert.Equal(t, 4*time.Minute, s.MaxTimeDiff)
	assert.Equal(t, 3*time.Minute+30*time.Second, s.MeanTimeDiff)
	assert.InDelta(t, 0.2, s.MaxLevelDiff, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}
