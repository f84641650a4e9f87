package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingSummary_Label(t *testing.T) {
	assert.Equal(t, "Novo", RatingSummary{}.Label())
	assert.Equal(t, "4.7", RatingSummary{Average: 14.0 / 3.0, Count: 3}.Label())
}

func TestRatingSummary_JSONIncludesLabel(t *testing.T) {
	raw, err := json.Marshal(RatingSummary{Average: 5, Count: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"average":5,"count":2,"label":"5.0"}`, string(raw))
}
