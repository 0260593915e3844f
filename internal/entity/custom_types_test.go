package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventTimeNormalizesToUTC(t *testing.T) {
	want := time.Date(2025, 5, 1, 5, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{name: "datetime-local", input: "2025-05-01T05:00"},
		{name: "with seconds", input: "2025-05-01T05:00:42"},
		{name: "rfc3339 utc", input: "2025-05-01T05:00:00Z"},
		{name: "rfc3339 offset", input: "2025-05-01T10:00:00+05:00"},
		{name: "rfc3339 nano", input: "2025-05-01T05:00:30.5Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventTime(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), got.String())
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	_, err := ParseEventTime("01.05.2025")
	assert.Error(t, err)
}

func TestEventTimeJSONKeepsInstant(t *testing.T) {
	var in struct {
		Date EventTime `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-05-01T10:00:00+05:00"}`), &in))

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-05-01T05:00"}`, string(raw))

	var out struct {
		Date EventTime `json:"date"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, in.Date.Equal(out.Date.Time))
}

func TestNewEventTime(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*60*60)
	et := NewEventTime(time.Date(2025, 5, 1, 12, 30, 59, 0, zone))

	assert.Equal(t, time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC), et.Time)

	var scanned EventTime
	require.NoError(t, scanned.Scan(time.Date(2025, 5, 1, 9, 30, 0, 0, zone)))
	assert.Equal(t, time.UTC, scanned.Location())
}
