package appleads

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumDecodesThreeVariants(t *testing.T) {
	t.Parallel()

	var ag struct {
		Status      CampaignStatus `json:"status"`
		Serving     ServingStatus  `json:"servingStatus"`
		SearchMatch SearchMatch    `json:"automatedKeywordsOptIn"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"ENABLED","servingStatus":"ON_HOLD","automatedKeywordsOptIn":true}`), &ag))

	assert.Equal(t, EnumKnown, ag.Status.Kind())
	assert.Equal(t, StatusEnabled, ag.Status)
	assert.Equal(t, EnumUnknown, ag.Serving.Kind())
	assert.Equal(t, "ON_HOLD", ag.Serving.String())
	assert.Equal(t, SearchMatchOn, ag.SearchMatch)

	require.NoError(t, json.Unmarshal([]byte(`{"status":null,"automatedKeywordsOptIn":false}`), &ag))
	assert.Equal(t, EnumUnset, ag.Status.Kind())
	assert.Equal(t, "", ag.Status.String())
	assert.Equal(t, SearchMatchOff, ag.SearchMatch)
}

func TestEnumEncoding(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(CampaignUpdate{Status: StatusPaused})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"PAUSED"}`, string(data))

	data, err = json.Marshal(CampaignUpdate{Name: "renamed"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"renamed"}`, string(data))
}

func TestParseKnownValues(t *testing.T) {
	t.Parallel()

	status, err := ParseCampaignStatus(" paused ")
	require.NoError(t, err)
	assert.Equal(t, StatusPaused, status)

	_, err = ParseCampaignStatus("archived")
	require.Error(t, err)

	match, err := ParseMatchType("broad")
	require.NoError(t, err)
	assert.Equal(t, MatchBroad, match)

	kw, err := ParseKeywordStatus("ACTIVE")
	require.NoError(t, err)
	assert.Equal(t, KeywordActive, kw)
}
