package corpus

import (
	"fmt"
	"strings"
	"time"

	"topicsweep/internal/services"
)

// Preprocessor turns raw text into tokens.
type Preprocessor interface {
	Tokens(text string) []string
}

// Options controls how records become documents.
type Options struct {
	TextKey string
	// IDKey names the field used as Document.ID; the record index is used
	// when empty or absent.
	IDKey string
	// TimeKey enables timestamp parsing and the time-range filter.
	TimeKey    string
	TimeFormat string
	Range      TimeRange
	Filters    []AttributeFilter
}

// Stats summarizes what Build dropped.
type Stats struct {
	Read          int
	AttributeKept int
	OutsideRange  int
	Documents     int
}

// Build filters records and preprocesses the survivors. Unparsable
// timestamps and missing text fields fail with services.ErrConfiguration.
func Build(records []Record, opts Options, prep Preprocessor) ([]Document, Stats, error) {
	stats := Stats{Read: len(records)}
	if strings.TrimSpace(opts.TextKey) == "" {
		return nil, stats, services.Wrap(services.ErrConfiguration, "corpus", "build", "text key is required", nil)
	}
	records = FilterAttributes(records, opts.Filters)
	stats.AttributeKept = len(records)

	docs := make([]Document, 0, len(records))
	for i, rec := range records {
		var ts time.Time
		if opts.TimeKey != "" {
			parsed, err := recordTime(rec, opts.TimeKey, opts.TimeFormat)
			if err != nil {
				return nil, stats, services.Wrap(services.ErrConfiguration, "corpus", "parse time",
					fmt.Sprintf("record %d", i), err)
			}
			if !opts.Range.Contains(parsed) {
				stats.OutsideRange++
				continue
			}
			ts = parsed
		}
		text, ok := rec.String(opts.TextKey)
		if !ok {
			return nil, stats, services.Wrap(services.ErrConfiguration, "corpus", "read text",
				fmt.Sprintf("record %d has no %q field", i, opts.TextKey), nil)
		}
		id := fmt.Sprintf("%d", i)
		if opts.IDKey != "" {
			if v, ok := rec.String(opts.IDKey); ok {
				id = v
			}
		}
		var tokens []string
		if prep != nil {
			tokens = prep.Tokens(text)
		} else {
			tokens = strings.Fields(text)
		}
		docs = append(docs, Document{
			Index:  len(docs),
			ID:     id,
			Time:   ts,
			Text:   text,
			Tokens: tokens,
			Fields: rec,
		})
	}
	stats.Documents = len(docs)
	return docs, stats, nil
}
