package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSummaryJSON_Since(t *testing.T) {
	raw, err := json.Marshal(UserSummary{ID: 4, Name: "dana"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "since")

	since := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	raw, err = json.Marshal(UserSummary{ID: 4, Name: "dana", Since: since})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"since":"2024-03-01T12:00:00Z"`)
}
