package experiment_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicsweep/internal/experiment"
	"topicsweep/internal/services"
	"topicsweep/internal/testsupport"
)

const jsonDefinition = `{
  "name": "covid",
  "plot_name": "COVID posts",
  "data_path": "posts.jsonl",
  "text_key": "text",
  "id_key": "id",
  "min_topics": 2,
  "max_topics": 4,
  "n_trials": 3,
  "time_filter": {
    "time_key": "created_at",
    "start": "2021-01-01",
    "end": "2021-01-10",
    "arg_format": "%Y-%m-%d",
    "data_format": "%Y-%m-%dT%H:%M:%SZ"
  },
  "attribute_filters": [{"filter_key": "subreddit", "filter_vals": ["health"]}],
  "remove_after_stemming": ["vaccin"]
}`

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covid.json")
	testsupport.WriteFile(t, path, jsonDefinition)

	cfg, err := experiment.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "covid", cfg.Name)
	assert.Equal(t, experiment.ModelLDA, cfg.Model)
	assert.Equal(t, "COVID posts", cfg.Label())
	assert.False(t, cfg.Sequential())
	assert.Equal(t, "%Y-%m-%dT%H:%M:%SZ", cfg.LabelFormat())

	r, err := cfg.TimeRange(time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC), r.End)

	opts := cfg.CorpusOptions(r)
	assert.Equal(t, "created_at", opts.TimeKey)
	require.Len(t, opts.Filters, 1)
	assert.Equal(t, []string{"health"}, opts.Filters[0].Values)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad.json": `{"name": "x", "data_path": "d", "text_key": "t", "min_topics": 1, "max_topics": 1, "n_trials": 1, "typo_key": 1}`,
		"bad.toml": "name = \"x\"\ndata_path = \"d\"\ntext_key = \"t\"\nmin_topics = 1\nmax_topics = 1\nn_trials = 1\ntypo_key = 1\n",
		"bad.yaml": "name: x\ndata_path: d\ntext_key: t\nmin_topics: 1\nmax_topics: 1\nn_trials: 1\ntypo_key: 1\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		testsupport.WriteFile(t, path, content)
		_, err := experiment.Load(path)
		assert.Truef(t, errors.Is(err, services.ErrConfiguration), "%s: %v", name, err)
	}
}

func TestLoadTOMLAndYAML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "seq.toml")
	testsupport.WriteFile(t, tomlPath, `
name = "seq"
model = "ldaseq"
data_path = "posts.jsonl"
text_key = "text"
min_topics = 3
max_topics = 3
days_in_interval = 5

[time_filter]
time_key = "created_at"
start = "2021-01-01"
arg_format = "%Y-%m-%d"
`)
	cfg, err := experiment.Load(tomlPath)
	require.NoError(t, err)
	assert.True(t, cfg.Sequential())
	assert.Equal(t, 1, cfg.Trials)
	assert.Equal(t, "%Y-%m-%d", cfg.LabelFormat(), "falls back to arg_format")

	now := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	r, err := cfg.TimeRange(now)
	require.NoError(t, err)
	assert.Equal(t, now, r.End, "missing end resolves to now")
	spec := cfg.BucketSpec(r, 0)
	assert.Equal(t, 5, spec.WidthDays)

	yamlPath := filepath.Join(dir, "plain.yml")
	testsupport.WriteFile(t, yamlPath, "name: plain\ndata_path: posts.jsonl\ntext_key: text\nmin_topics: 2\nmax_topics: 5\nn_trials: 2\nstem: false\n")
	cfg, err = experiment.Load(yamlPath)
	require.NoError(t, err)
	assert.False(t, cfg.PipelineOptions(true).Stem)
	assert.True(t, cfg.PipelineOptions(true).StopWords)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := &experiment.Config{Name: "x", Model: "lda", MinTopics: 5, MaxTopics: 2}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrConfiguration))
	for _, want := range []string{"data_path is required", "text_key is required", "max_topics (2) is below min_topics (5)", "n_trials must be positive"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateSequentialNeedsTimeFilter(t *testing.T) {
	cfg := &experiment.Config{Name: "x", Model: "ldaseq", DataPath: "d", TextKey: "t", MinTopics: 2, MaxTopics: 2}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time_filter")
	assert.Contains(t, err.Error(), "days_in_interval")
}

func TestValidateRejectsBadNamesAndTimes(t *testing.T) {
	cfg := &experiment.Config{Name: "../x", DataPath: "d", TextKey: "t", MinTopics: 1, MaxTopics: 1, Trials: 1}
	assert.True(t, errors.Is(cfg.Validate(), services.ErrConfiguration))

	cfg = &experiment.Config{Name: "x", DataPath: "d", TextKey: "t", MinTopics: 1, MaxTopics: 1, Trials: 1,
		TimeFilter: &experiment.TimeFilter{TimeKey: "ts", Start: "2021-02-01", End: "2021-01-01", ArgFormat: "%Y-%m-%d"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is after end")

	cfg.TimeFilter = &experiment.TimeFilter{TimeKey: "ts", Start: "01/02/2021", ArgFormat: "%Y-%m-%d"}
	assert.Error(t, cfg.Validate())
}

func TestResolveDataPath(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "here.jsonl")
	testsupport.WriteFile(t, existing, "")

	cfg := &experiment.Config{DataPath: existing}
	assert.Equal(t, existing, cfg.ResolveDataPath("/data"))

	cfg = &experiment.Config{DataPath: "elsewhere.jsonl"}
	assert.Equal(t, filepath.Join("/data", "elsewhere.jsonl"), cfg.ResolveDataPath("/data"))
}

func TestLoadDataset(t *testing.T) {
	dataDir := t.TempDir()
	testsupport.WriteJSONLines(t, filepath.Join(dataDir, "posts.jsonl"), testsupport.Posts())

	cfg := &experiment.Config{
		Name: "covid", DataPath: "posts.jsonl", TextKey: "text", IDKey: "id",
		MinTopics: 2, MaxTopics: 2, Trials: 1,
		TimeFilter: &experiment.TimeFilter{
			TimeKey: "created_at", Start: "2021-01-01", End: "2021-01-05",
			ArgFormat: "%Y-%m-%d", DataFormat: "%Y-%m-%dT%H:%M:%SZ",
		},
		AttributeFilters: []experiment.AttributeFilter{{Key: "subreddit", Values: []string{"health"}}},
	}
	require.NoError(t, cfg.Validate())

	ds, err := cfg.LoadDataset(experiment.LoadOptions{DataDir: dataDir, StopWords: true})
	require.NoError(t, err)
	assert.Equal(t, 10, ds.Stats.Read)
	assert.Equal(t, 5, ds.Stats.AttributeKept)
	// health posts are ids 1, 3, 5, 7, 9 on days 01, 02, 04, 06, 09.
	assert.Len(t, ds.Documents, 3)
	assert.Equal(t, "1", ds.Documents[0].ID)
	assert.NotEmpty(t, ds.Documents[0].Tokens)
}

func TestLoadDatasetEmptyAfterFilter(t *testing.T) {
	dataDir := t.TempDir()
	testsupport.WriteJSONLines(t, filepath.Join(dataDir, "posts.jsonl"), testsupport.Posts())
	cfg := &experiment.Config{
		Name: "none", DataPath: "posts.jsonl", TextKey: "text", MinTopics: 1, MaxTopics: 1, Trials: 1,
		AttributeFilters: []experiment.AttributeFilter{{Key: "subreddit", Values: []string{"sports"}}},
	}
	_, err := cfg.LoadDataset(experiment.LoadOptions{DataDir: dataDir})
	assert.True(t, errors.Is(err, services.ErrConfiguration))
}
