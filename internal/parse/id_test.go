package parse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt(t *testing.T) {
	testCases := []struct {
		name        string
		raw         string
		want        int64
		wantPresent bool
		wantErr     bool
	}{
		{name: "number", raw: `7`, want: 7, wantPresent: true},
		{name: "numeric string", raw: `"42"`, want: 42, wantPresent: true},
		{name: "padded string", raw: `" 5 "`, want: 5, wantPresent: true},
		{name: "whole float", raw: `3.0`, want: 3, wantPresent: true},
		{name: "negative", raw: `-2`, want: -2, wantPresent: true},
		{name: "null", raw: `null`},
		{name: "empty", raw: ``},
		{name: "empty string", raw: `""`},
		{name: "fraction", raw: `3.5`, wantErr: true},
		{name: "word", raw: `"abc"`, wantErr: true},
		{name: "bool", raw: `true`, wantErr: true},
		{name: "object", raw: `{}`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, present, err := Int(json.RawMessage(tc.raw))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantPresent, present)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	var body struct {
		Progress Number `json:"progress"`
		Other    Number `json:"other"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"progress":"12"}`), &body))

	assert.True(t, body.Progress.Set)
	assert.Equal(t, int64(12), body.Progress.Value)
	assert.False(t, body.Other.Set)

	assert.Error(t, json.Unmarshal([]byte(`{"progress":"x"}`), &body))
}
