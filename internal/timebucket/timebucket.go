// Package timebucket partitions timestamped documents into contiguous,
// fixed-width windows of whole days.
//
// Windows are half-open [start, start+width) except the final one, which runs
// to the configured end inclusive. The per-window counts must reconstruct the
// corpus size exactly; Verify enforces that before any model is trained.
package timebucket

import (
	"fmt"
	"sort"
	"time"

	"topicsweep/internal/corpus"
	"topicsweep/internal/services"
)

const day = 24 * time.Hour

// Spec describes the partition.
type Spec struct {
	// Start of the first window. A zero Start uses the earliest timestamp.
	Start time.Time
	// End of the last window, inclusive. A zero End means now.
	End       time.Time
	WidthDays int
	// LabelFormat is a strftime format for window labels; ISO dates when empty.
	LabelFormat string
}

// Window is one bucket of the partition.
type Window struct {
	Index int       `json:"index"`
	Start time.Time `json:"start"`
	// End is exclusive for every window but the last, where it is inclusive.
	End   time.Time `json:"end"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

// Buckets is an ordered, contiguous partition of [start, end].
type Buckets struct {
	Windows []Window
	// assignment[i] is the window of the i-th input time, or -1.
	assignment []int
	times      []time.Time
}

// Partition assigns each timestamp to its window.
func Partition(times []time.Time, spec Spec) (Buckets, error) {
	if spec.WidthDays <= 0 {
		return Buckets{}, services.Wrap(services.ErrConfiguration, "timebucket", "partition",
			fmt.Sprintf("days_in_interval must be positive, got %d", spec.WidthDays), nil)
	}
	start, end := spec.Start, spec.End
	if start.IsZero() {
		start = earliest(times)
		if start.IsZero() {
			return Buckets{}, services.Wrap(services.ErrConfiguration, "timebucket", "partition",
				"no start given and no timestamps to derive one from", nil)
		}
	}
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.After(end) {
		return Buckets{}, services.Wrap(services.ErrConfiguration, "timebucket", "partition",
			fmt.Sprintf("start %s is after end %s", start.Format(time.RFC3339), end.Format(time.RFC3339)), nil)
	}

	width := time.Duration(spec.WidthDays) * day
	n := int((end.Sub(start) + width - 1) / width)
	if n < 1 {
		n = 1
	}
	windows := make([]Window, n)
	for i := range windows {
		ws := start.Add(time.Duration(i) * width)
		we := ws.Add(width)
		if i == n-1 {
			we = end
		}
		windows[i] = Window{
			Index: i,
			Start: ws,
			End:   we,
			Label: corpus.FormatTime(ws, spec.LabelFormat),
		}
	}

	b := Buckets{Windows: windows, assignment: make([]int, len(times)), times: times}
	for i, t := range times {
		idx := b.locate(t, start, end, width)
		b.assignment[i] = idx
		if idx >= 0 {
			b.Windows[idx].Count++
		}
	}
	return b, nil
}

// PartitionDocuments partitions docs by their timestamps.
func PartitionDocuments(docs []corpus.Document, spec Spec) (Buckets, error) {
	return Partition(corpus.Times(docs), spec)
}

func (b Buckets) locate(t, start, end time.Time, width time.Duration) int {
	if t.IsZero() || t.Before(start) || t.After(end) {
		return -1
	}
	idx := int(t.Sub(start) / width)
	if idx >= len(b.Windows) {
		idx = len(b.Windows) - 1
	}
	return idx
}

// Counts returns the per-window document counts in window order.
func (b Buckets) Counts() []int {
	out := make([]int, len(b.Windows))
	for i, w := range b.Windows {
		out[i] = w.Count
	}
	return out
}

// Labels returns the window labels in window order.
func (b Buckets) Labels() []string {
	out := make([]string, len(b.Windows))
	for i, w := range b.Windows {
		out[i] = w.Label
	}
	return out
}

// Total is the number of documents covered by some window.
func (b Buckets) Total() int {
	total := 0
	for _, w := range b.Windows {
		total += w.Count
	}
	return total
}

// Verify fails with services.ErrDataInvariant unless the windows cover
// exactly total documents.
func (b Buckets) Verify(total int) error {
	if got := b.Total(); got != total {
		return services.CountMismatch("documents covered by time windows", total, got)
	}
	return nil
}

// WindowOf returns the window index assigned to the i-th input time, or -1.
func (b Buckets) WindowOf(i int) int {
	if i < 0 || i >= len(b.assignment) {
		return -1
	}
	return b.assignment[i]
}

// Order returns input indexes sorted by (window, time, input index), so a
// corpus reordered this way is in time order and lines up with Counts.
// Uncovered inputs are omitted.
func (b Buckets) Order() []int {
	idx := make([]int, 0, len(b.assignment))
	for i, w := range b.assignment {
		if w >= 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(x, y int) bool {
		wx, wy := b.assignment[idx[x]], b.assignment[idx[y]]
		if wx != wy {
			return wx < wy
		}
		return b.times[idx[x]].Before(b.times[idx[y]])
	})
	return idx
}

func earliest(times []time.Time) time.Time {
	var min time.Time
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		if min.IsZero() || t.Before(min) {
			min = t
		}
	}
	return min
}
