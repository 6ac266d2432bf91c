package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteJSONLines writes one JSON object per line to path, creating parent
// directories.
func WriteJSONLines(t testing.TB, path string, records []map[string]any) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Posts returns a small two-theme corpus spread over ten days starting at
// 2021-01-01.
func Posts() []map[string]any {
	texts := []string{
		"vaccine trial results show strong dose response",
		"clinic reports vaccine dose shortages",
		"second vaccine trial enrolls volunteers",
		"stock market rallies as prices climb",
		"traders expect market volatility and price swings",
		"vaccine rollout reaches rural clinics",
		"market analysts revise stock forecasts",
		"vaccine booster dose approved",
		"stock prices fall after market open",
		"clinic volunteers join vaccine study",
	}
	days := []string{"01", "01", "02", "03", "04", "05", "06", "07", "09", "10"}
	out := make([]map[string]any, len(texts))
	for i, text := range texts {
		out[i] = map[string]any{
			"id":         i + 1,
			"text":       text,
			"created_at": "2021-01-" + days[i] + "T12:00:00Z",
			"subreddit":  []string{"health", "finance"}[i%2],
		}
	}
	return out
}
