package planner

import (
	"testing"

	"github.com/cancun/autodj/internal/model"
	"github.com/stretchr/testify/require"
)

func TestOrderTracksStartsLowEnergyAndCoversPool(t *testing.T) {
	pool := []*model.TrackAnalysis{
		track("a", 124, "8A", 0.8),
		track("b", 124, "8A", 0.2),
		track("c", 124, "8A", 0.5),
	}

	order, err := OrderTracks(pool, OrderOptions{})
	require.NoError(t, err)
	require.Len(t, order, 3)
	require.Equal(t, "b", order[0].TrackID)

	seen := map[string]bool{}
	for _, a := range order {
		seen[a.TrackID] = true
	}
	for _, a := range pool {
		require.True(t, seen[a.TrackID])
	}
}

func TestOrderTracksRespectsMustPlayFirstAndBan(t *testing.T) {
	pool := []*model.TrackAnalysis{
		track("a", 124, "8A", 0.8),
		track("b", 124, "8A", 0.2),
		track("c", 124, "8A", 0.5),
	}

	order, err := OrderTracks(pool, OrderOptions{MustPlayFirst: []string{"c"}, Ban: []string{"a"}})
	require.NoError(t, err)
	require.Len(t, order, 2)
	require.Equal(t, "c", order[0].TrackID)
	require.Equal(t, "b", order[1].TrackID)
}

func TestOrderTracksEmptyPoolAfterBan(t *testing.T) {
	pool := []*model.TrackAnalysis{track("a", 124, "8A", 0.8)}
	order, err := OrderTracks(pool, OrderOptions{Ban: []string{"a"}})
	require.NoError(t, err)
	require.Nil(t, order)
}
