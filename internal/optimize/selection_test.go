package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asa-cli/internal/appleads"
)

func TestSelectableCampaigns(t *testing.T) {
	t.Parallel()

	campaigns := []appleads.Campaign{
		{ID: 1, Name: "Zeta - US - Generic - EM"},
		{ID: 2, Name: "Alpha - US - Generic - EM"},
		{ID: 3, Name: "Alpha - AU - Generic - EM"},
		{ID: 4, Name: "Alpha - AU - Brand - EM"},
		{ID: 5, Name: "Alpha - US - Generic - BM"},
		{ID: 6, Name: "free form name"},
	}

	got := SelectableCampaigns(campaigns, "", "")
	ids := make([]int64, 0, len(got))
	for i, c := range got {
		assert.Equal(t, i+1, c.Number)
		ids = append(ids, c.Campaign.ID)
	}
	assert.Equal(t, []int64{4, 3, 2, 5, 1}, ids)

	filtered := SelectableCampaigns(campaigns, "generic", "em")
	require.Len(t, filtered, 3)
	assert.Equal(t, int64(3), filtered[0].Campaign.ID)

	picked := Pick(filtered, []int{1, 3}, false)
	require.Len(t, picked, 2)
	assert.Equal(t, int64(1), picked[1].ID)
	assert.Len(t, Pick(filtered, nil, true), 3)
}
