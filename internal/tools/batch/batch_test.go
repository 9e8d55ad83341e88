package batch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    []string
		wantErr string
	}{
		{name: "single id", input: "evt1", want: []string{"evt1"}},
		{name: "array", input: []any{"evt1", "evt2"}, want: []string{"evt1", "evt2"}},
		{name: "string slice", input: []string{"evt1"}, want: []string{"evt1"}},
		{name: "JSON array string", input: `["evt1", "evt2"]`, want: []string{"evt1", "evt2"}},
		{name: "duplicates collapse", input: []any{"evt1", "evt2", "evt1"}, want: []string{"evt1", "evt2"}},
		{name: "nil", input: nil, wantErr: "eventId is required"},
		{name: "empty string", input: "", wantErr: "cannot be empty"},
		{name: "empty array", input: []any{}, wantErr: "cannot be empty"},
		{name: "empty element", input: []any{"evt1", ""}, wantErr: "eventId[1] cannot be empty"},
		{name: "non-string element", input: []any{"evt1", 2.0}, wantErr: "eventId[1] must be a string"},
		{name: "bad JSON", input: `["evt1"`, wantErr: "not a valid JSON array"},
		{name: "wrong type", input: 42, wantErr: "string or array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDs(tt.input, "eventId")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun(t *testing.T) {
	var seen []string
	results := Run(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, id string) (string, error) {
		seen = append(seen, id)
		if id == "b" {
			return "", errors.New("not found")
		}
		return "deleted", nil
	})

	assert.Equal(t, []string{"a", "b", "c"}, seen)
	assert.Equal(t, []Result{
		{ID: "a", Status: StatusSuccess, Result: "deleted"},
		{ID: "b", Status: StatusError, Error: "not found"},
		{ID: "c", Status: StatusSuccess, Result: "deleted"},
	}, results)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	results := Run(ctx, []string{"a"}, func(context.Context, string) (string, error) {
		called = true
		return "", nil
	})

	assert.False(t, called)
	require.Len(t, results, 1)
	assert.Equal(t, StatusError, results[0].Status)
}

func TestFormat(t *testing.T) {
	out := Format([]Result{
		{ID: "a", Status: StatusSuccess},
		{ID: "b", Status: StatusError, Error: "boom"},
	})

	var summary Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
}
