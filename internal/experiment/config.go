package experiment

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"topicsweep/internal/corpus"
	"topicsweep/internal/fileutil"
	"topicsweep/internal/services"
	"topicsweep/internal/store"
	"topicsweep/internal/textprep"
	"topicsweep/internal/timebucket"
)

// Model kinds.
const (
	ModelLDA    = "lda"
	ModelLDASeq = "ldaseq"
)

// TimeFilter restricts documents to a time range. Start and End are parsed
// with ArgFormat; document timestamps with DataFormat.
type TimeFilter struct {
	TimeKey    string `json:"time_key" toml:"time_key" yaml:"time_key"`
	Start      string `json:"start" toml:"start" yaml:"start"`
	End        string `json:"end" toml:"end" yaml:"end"`
	ArgFormat  string `json:"arg_format" toml:"arg_format" yaml:"arg_format"`
	DataFormat string `json:"data_format" toml:"data_format" yaml:"data_format"`
}

// AttributeFilter keeps documents whose Key field equals one of Values.
type AttributeFilter struct {
	Key    string   `json:"filter_key" toml:"filter_key" yaml:"filter_key"`
	Values []string `json:"filter_vals" toml:"filter_vals" yaml:"filter_vals"`
}

// Config is one experiment definition.
type Config struct {
	Name     string `json:"name" toml:"name" yaml:"name"`
	PlotName string `json:"plot_name" toml:"plot_name" yaml:"plot_name"`
	Model    string `json:"model" toml:"model" yaml:"model"`

	DataPath string `json:"data_path" toml:"data_path" yaml:"data_path"`
	TextKey  string `json:"text_key" toml:"text_key" yaml:"text_key"`
	IDKey    string `json:"id_key" toml:"id_key" yaml:"id_key"`

	MinTopics      int `json:"min_topics" toml:"min_topics" yaml:"min_topics"`
	MaxTopics      int `json:"max_topics" toml:"max_topics" yaml:"max_topics"`
	Trials         int `json:"n_trials" toml:"n_trials" yaml:"n_trials"`
	DaysInInterval int `json:"days_in_interval" toml:"days_in_interval" yaml:"days_in_interval"`

	TimeFilter       *TimeFilter       `json:"time_filter" toml:"time_filter" yaml:"time_filter"`
	AttributeFilters []AttributeFilter `json:"attribute_filters" toml:"attribute_filters" yaml:"attribute_filters"`

	ReplaceBeforeStemming map[string]string `json:"replace_before_stemming" toml:"replace_before_stemming" yaml:"replace_before_stemming"`
	RemoveBeforeStemming  []string          `json:"remove_before_stemming" toml:"remove_before_stemming" yaml:"remove_before_stemming"`
	ReplaceAfterStemming  map[string]string `json:"replace_after_stemming" toml:"replace_after_stemming" yaml:"replace_after_stemming"`
	RemoveAfterStemming   []string          `json:"remove_after_stemming" toml:"remove_after_stemming" yaml:"remove_after_stemming"`
	// Stem defaults to true.
	Stem     *bool  `json:"stem" toml:"stem" yaml:"stem"`
	Language string `json:"language" toml:"language" yaml:"language"`

	LDANoSave       bool `json:"lda_nosave" toml:"lda_nosave" yaml:"lda_nosave"`
	CoherenceNoSave bool `json:"coherence_nosave" toml:"coherence_nosave" yaml:"coherence_nosave"`
}

func (c *Config) applyDefaults() {
	c.Model = strings.ToLower(strings.TrimSpace(c.Model))
	if c.Model == "" {
		c.Model = ModelLDA
	}
	if c.Model == ModelLDASeq && c.Trials == 0 {
		c.Trials = 1
	}
}

// Sequential reports whether the experiment trains time-sliced models.
func (c *Config) Sequential() bool { return c.Model == ModelLDASeq }

// Label is the display name used when comparing experiments.
func (c *Config) Label() string {
	if strings.TrimSpace(c.PlotName) != "" {
		return c.PlotName
	}
	return c.Name
}

// Validate checks the definition eagerly. Every failure wraps
// services.ErrConfiguration.
func (c *Config) Validate() error {
	c.applyDefaults()
	if err := store.ValidateName(c.Name); err != nil {
		return err
	}
	var problems []string
	if strings.TrimSpace(c.DataPath) == "" {
		problems = append(problems, "data_path is required")
	}
	if strings.TrimSpace(c.TextKey) == "" {
		problems = append(problems, "text_key is required")
	}
	switch c.Model {
	case ModelLDA, ModelLDASeq:
	default:
		problems = append(problems, fmt.Sprintf("model must be %q or %q, got %q", ModelLDA, ModelLDASeq, c.Model))
	}
	if c.MinTopics < 1 {
		problems = append(problems, fmt.Sprintf("min_topics must be positive, got %d", c.MinTopics))
	}
	if c.MaxTopics < c.MinTopics {
		problems = append(problems, fmt.Sprintf("max_topics (%d) is below min_topics (%d)", c.MaxTopics, c.MinTopics))
	}
	if c.Trials < 1 {
		problems = append(problems, fmt.Sprintf("n_trials must be positive, got %d", c.Trials))
	}
	for i, f := range c.AttributeFilters {
		if strings.TrimSpace(f.Key) == "" {
			problems = append(problems, fmt.Sprintf("attribute_filters[%d].filter_key is required", i))
		}
	}
	if c.Sequential() {
		if c.TimeFilter == nil || strings.TrimSpace(c.TimeFilter.Start) == "" {
			problems = append(problems, "a time_filter with a start is required for sequential models")
		}
		if c.DaysInInterval <= 0 {
			problems = append(problems, fmt.Sprintf("days_in_interval must be positive, got %d", c.DaysInInterval))
		}
	}
	if c.TimeFilter != nil {
		problems = append(problems, c.TimeFilter.problems()...)
	}
	if c.Stem == nil || *c.Stem {
		if _, err := textprep.New(c.pipelineOptions(false)); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return services.Wrap(services.ErrConfiguration, "experiment", "validate",
			fmt.Sprintf("%s: %s", c.Name, strings.Join(problems, "; ")), nil)
	}
	return nil
}

func (f *TimeFilter) problems() []string {
	var out []string
	if strings.TrimSpace(f.TimeKey) == "" {
		out = append(out, "time_filter.time_key is required")
	}
	if strings.TrimSpace(f.ArgFormat) == "" && (f.Start != "" || f.End != "") {
		out = append(out, "time_filter.arg_format is required when start or end is set")
	}
	for _, format := range []string{f.ArgFormat, f.DataFormat} {
		if err := corpus.ValidateFormat(format); err != nil {
			out = append(out, err.Error())
		}
	}
	if len(out) > 0 {
		return out
	}
	start, end, err := f.bounds()
	if err != nil {
		return append(out, err.Error())
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		out = append(out, fmt.Sprintf("time_filter.start %s is after end %s", f.Start, f.End))
	}
	return out
}

func (f *TimeFilter) bounds() (start, end time.Time, err error) {
	if f.Start != "" {
		if start, err = corpus.ParseTime(f.Start, f.ArgFormat); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("time_filter.start: %w", err)
		}
	}
	if f.End != "" {
		if end, err = corpus.ParseTime(f.End, f.ArgFormat); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("time_filter.end: %w", err)
		}
	}
	return start, end, nil
}

// TimeRange resolves the time filter. A missing end becomes now.
func (c *Config) TimeRange(now time.Time) (corpus.TimeRange, error) {
	if c.TimeFilter == nil {
		return corpus.TimeRange{}, nil
	}
	start, end, err := c.TimeFilter.bounds()
	if err != nil {
		return corpus.TimeRange{}, services.Wrap(services.ErrConfiguration, "experiment", "time range", c.Name, err)
	}
	if end.IsZero() {
		end = now
	}
	return corpus.TimeRange{Start: start, End: end}, nil
}

// LabelFormat is the strftime format for window labels: the data format when
// set, otherwise the argument format.
func (c *Config) LabelFormat() string {
	if c.TimeFilter == nil {
		return ""
	}
	if c.TimeFilter.DataFormat != "" {
		return c.TimeFilter.DataFormat
	}
	return c.TimeFilter.ArgFormat
}

// BucketSpec describes the time windows of a sequential experiment.
func (c *Config) BucketSpec(r corpus.TimeRange, widthDays int) timebucket.Spec {
	if widthDays <= 0 {
		widthDays = c.DaysInInterval
	}
	return timebucket.Spec{Start: r.Start, End: r.End, WidthDays: widthDays, LabelFormat: c.LabelFormat()}
}

// CorpusOptions maps the definition onto corpus.Build options.
func (c *Config) CorpusOptions(r corpus.TimeRange) corpus.Options {
	opts := corpus.Options{
		TextKey: c.TextKey,
		IDKey:   c.IDKey,
		Range:   r,
	}
	if c.TimeFilter != nil {
		opts.TimeKey = c.TimeFilter.TimeKey
		opts.TimeFormat = c.TimeFilter.DataFormat
	}
	for _, f := range c.AttributeFilters {
		opts.Filters = append(opts.Filters, corpus.AttributeFilter{Key: f.Key, Values: f.Values})
	}
	return opts
}

// PipelineOptions maps the definition onto textprep options.
func (c *Config) PipelineOptions(stopWords bool) textprep.Options {
	return c.pipelineOptions(stopWords)
}

func (c *Config) pipelineOptions(stopWords bool) textprep.Options {
	stem := c.Stem == nil || *c.Stem
	return textprep.Options{
		ReplaceBefore: c.ReplaceBeforeStemming,
		RemoveBefore:  c.RemoveBeforeStemming,
		ReplaceAfter:  c.ReplaceAfterStemming,
		RemoveAfter:   c.RemoveAfterStemming,
		StopWords:     stopWords,
		Stem:          stem,
		Language:      c.Language,
	}
}

// ResolveDataPath returns DataPath when it names an existing file, otherwise
// DataPath joined onto dataDir.
func (c *Config) ResolveDataPath(dataDir string) string {
	if fileutil.FileExists(c.DataPath) || filepath.IsAbs(c.DataPath) || dataDir == "" {
		return c.DataPath
	}
	return filepath.Join(dataDir, c.DataPath)
}
