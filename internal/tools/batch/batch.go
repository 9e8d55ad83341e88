package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome for a single ID.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Summary aggregates the results of a batch.
type Summary struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseIDs accepts a single ID, an array of IDs, or a JSON-encoded array
// string as sent by clients that stringify arguments.
func ParseIDs(value any, name string) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, fmt.Errorf("%s is required", name)
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", name)
		}
		if strings.HasPrefix(strings.TrimSpace(v), "[") {
			var ids []any
			if err := json.Unmarshal([]byte(v), &ids); err != nil {
				return nil, fmt.Errorf("%s is not a valid JSON array: %w", name, err)
			}
			return ParseIDs(ids, name)
		}
		return []string{v}, nil
	case []string:
		return ParseIDs(lo.ToAnySlice(v), name)
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", name)
		}
		ids := make([]string, 0, len(v))
		for i, item := range v {
			id, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", name, i)
			}
			if id == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", name, i)
			}
			ids = append(ids, id)
		}
		return lo.Uniq(ids), nil
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", name)
	}
}

// Run calls fn for each ID in order. It stops early only when ctx is done;
// the remaining IDs are reported with the context error.
func Run(ctx context.Context, ids []string, fn func(ctx context.Context, id string) (string, error)) []Result {
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{ID: id, Status: StatusError, Error: err.Error()})
			continue
		}
		msg, err := fn(ctx, id)
		if err != nil {
			results = append(results, Result{ID: id, Status: StatusError, Error: err.Error()})
			continue
		}
		results = append(results, Result{ID: id, Status: StatusSuccess, Result: msg})
	}
	return results
}

// Summarize counts successes and failures.
func Summarize(results []Result) Summary {
	ok := lo.CountBy(results, func(r Result) bool { return r.Status == StatusSuccess })
	return Summary{
		Total:      len(results),
		Successful: ok,
		Failed:     len(results) - ok,
		Results:    results,
	}
}

// Format renders the summary as indented JSON.
func Format(results []Result) string {
	data, _ := json.MarshalIndent(Summarize(results), "", "  ")
	return string(data)
}
