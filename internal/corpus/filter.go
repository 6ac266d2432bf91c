package corpus

import "time"

// AttributeFilter keeps records whose Key field equals one of Values.
type AttributeFilter struct {
	Key    string
	Values []string
}

// FilterAttributes applies every filter in turn.
func FilterAttributes(records []Record, filters []AttributeFilter) []Record {
	for _, f := range filters {
		allowed := make(map[string]struct{}, len(f.Values))
		for _, v := range f.Values {
			allowed[v] = struct{}{}
		}
		kept := records[:0:0]
		for _, rec := range records {
			value, ok := rec.String(f.Key)
			if !ok {
				continue
			}
			if _, hit := allowed[value]; hit {
				kept = append(kept, rec)
			}
		}
		records = kept
	}
	return records
}

// TimeRange is an inclusive time interval. A zero End means unbounded.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}
