package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidence_Order(t *testing.T) {
	assert.True(t, ConfidenceLow < ConfidenceMedium)
	assert.True(t, ConfidenceMedium < ConfidenceHigh)
	assert.Equal(t, ConfidenceHigh, MaxConfidence(ConfidenceLow, ConfidenceHigh))
	assert.Equal(t, ConfidenceMedium, MaxConfidence(ConfidenceMedium, ConfidenceUnknown))
}

func TestMinConfidence_IgnoresUnknown(t *testing.T) {
	assert.Equal(t, ConfidenceMedium, MinConfidence(ConfidenceHigh, ConfidenceUnknown, ConfidenceMedium))
	assert.Equal(t, ConfidenceUnknown, MinConfidence())
	assert.Equal(t, ConfidenceUnknown, MinConfidence(ConfidenceUnknown))
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		in   string
		want Confidence
		ok   bool
	}{
		{"high", ConfidenceHigh, true},
		{" Medium ", ConfidenceMedium, true},
		{"LOW", ConfidenceLow, true},
		{"certain", ConfidenceUnknown, false},
		{"", ConfidenceUnknown, false},
	}
	for _, tt := range tests {
		got, ok := ParseConfidence(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestConfidenceFromScore(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ConfidenceFromScore(0.92))
	assert.Equal(t, ConfidenceMedium, ConfidenceFromScore(0.5))
	assert.Equal(t, ConfidenceLow, ConfidenceFromScore(0.1))
}

func TestConfidence_JSON(t *testing.T) {
	b, err := json.Marshal(map[string]Confidence{"year": ConfidenceHigh})
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":"high"}`, string(b))

	var c Confidence
	require.NoError(t, json.Unmarshal([]byte(`"medium"`), &c))
	assert.Equal(t, ConfidenceMedium, c)
	assert.Error(t, json.Unmarshal([]byte(`"sure"`), &c))
}

func TestWarnings_OrderedSet(t *testing.T) {
	var ws Warnings
	ws.Add(WarnYearAmbiguous)
	ws.Add(WarnParallelInvalid)
	ws.Add(WarnYearAmbiguous)

	assert.Equal(t, 2, ws.Len())
	assert.Equal(t, []Warning{WarnYearAmbiguous, WarnParallelInvalid}, ws.List())
	assert.True(t, ws.Has(WarnParallelInvalid))
	assert.False(t, ws.Has(WarnCatalogMismatch))

	b, err := json.Marshal(ws)
	require.NoError(t, err)
	assert.JSONEq(t, `["year_ambiguous","parallel_invalid"]`, string(b))

	var empty Warnings
	b, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}
