package stations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsProvisioning(t *testing.T) {
	// Case 1: schema exists but holds no stations
	memDB(t)
	needs, err := NeedsProvisioning(":memory:")
	if err != nil || !needs {
		t.Errorf("Case 1: Expected needs=true, err=nil; got needs=%v, err=%v", needs, err)
	}

	// Case 2: stations imported
	require.NoError(t, Save(":memory:", boston()))
	needs, err = NeedsProvisioning(":memory:")
	if err != nil || needs {
		t.Errorf("Case 2: Expected needs=false, err=nil; got needs=%v, err=%v", needs, err)
	}

	assert.ErrorIs(t, ErrNoStations, ErrNotFound)
}

func TestProvisionStationsDatabase_Progress(t *testing.T) {
	memDB(t)

	progress := make(chan string, 10)
	require.NoError(t, ProvisionStationsDatabase(":memory:", []Definition{boston(), weymouth()}, progress))
	close(progress)

	var msgs []string
	for m := range progress {
		msgs = append(msgs, m)
	}
	require.Len(t, msgs, 2)
	assert.True(t, strings.HasPrefix(msgs[0], "Importing 2 stations"))
	assert.Equal(t, "Successfully imported 2 stations", msgs[1])
}

func TestProvisionStationsDatabase_RollsBack(t *testing.T) {
	db := memDB(t)
	bad := boston()
	bad.ID = "dup"
	bad.Constituents = append(bad.Constituents, bad.Constituents[0])
	// force a failure in the middle of the transaction
	_, err := db.Exec("CREATE UNIQUE INDEX uniq_name ON constituents(station_id, name)")
	require.NoError(t, err)

	err = ProvisionStationsDatabase(":memory:", []Definition{boston(), bad}, nil)
	require.Error(t, err)

	all, err := List(":memory:")
	require.NoError(t, err)
	assert.Empty(t, all)
}
