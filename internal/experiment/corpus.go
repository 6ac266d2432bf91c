package experiment

import (
	"fmt"
	"time"

	"topicsweep/internal/corpus"
	"topicsweep/internal/services"
	"topicsweep/internal/textprep"
)

// Dataset is the preprocessed corpus of an experiment.
type Dataset struct {
	Path      string
	Documents []corpus.Document
	Stats     corpus.Stats
	Range     corpus.TimeRange
}

// LoadOptions control LoadDataset.
type LoadOptions struct {
	DataDir   string
	StopWords bool
	// Now resolves a missing time_filter end; time.Now when zero.
	Now time.Time
}

// LoadDataset reads the experiment's data file, applies its filters, and
// preprocesses the text.
func (c *Config) LoadDataset(opts LoadOptions) (*Dataset, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	r, err := c.TimeRange(now)
	if err != nil {
		return nil, err
	}
	prep, err := textprep.New(c.PipelineOptions(opts.StopWords))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "experiment", "preprocess", c.Name, err)
	}
	path := c.ResolveDataPath(opts.DataDir)
	records, err := corpus.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "experiment", "read data", path, err)
	}
	docs, stats, err := corpus.Build(records, c.CorpusOptions(r), prep)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "experiment", "read data",
			fmt.Sprintf("no documents left in %s after filtering (%d read)", path, stats.Read), nil)
	}
	return &Dataset{Path: path, Documents: docs, Stats: stats, Range: r}, nil
}
