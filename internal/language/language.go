package language

import "strings"

type entry struct {
	code2   string   // ISO 639-1
	code3   string   // ISO 639-2 primary
	alt3    string   // ISO 639-2 bibliographic alternate ("fre" vs "fra")
	name    string   // Snowball stemmer name, empty when no stemmer exists
	display string
	words   []string // word forms accepted in experiment files
}

var languages = []entry{
	{"en", "eng", "", "english", "English", []string{"english"}},
	{"es", "spa", "", "spanish", "Spanish", []string{"spanish", "español", "espanol"}},
	{"fr", "fra", "fre", "french", "French", []string{"french", "français", "francais"}},
	{"ru", "rus", "", "russian", "Russian", []string{"russian"}},
	{"sv", "swe", "", "swedish", "Swedish", []string{"swedish", "svenska"}},
	{"no", "nor", "", "norwegian", "Norwegian", []string{"norwegian", "norsk"}},
	{"nb", "nob", "", "norwegian", "Norwegian Bokmål", []string{"bokmal", "bokmål"}},
	{"hu", "hun", "", "hungarian", "Hungarian", []string{"hungarian", "magyar"}},
	{"de", "deu", "ger", "", "German", []string{"german", "deutsch"}},
	{"it", "ita", "", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "", "Portuguese", []string{"portuguese"}},
	{"nl", "nld", "dut", "", "Dutch", []string{"dutch"}},
	{"da", "dan", "", "", "Danish", []string{"danish"}},
	{"fi", "fin", "", "", "Finnish", []string{"finnish"}},
}

var index map[string]*entry

func init() {
	index = make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		index[e.code2] = e
		index[e.code3] = e
		if e.alt3 != "" {
			index[e.alt3] = e
		}
		for _, w := range e.words {
			index[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	// Region subtags ("en-US", "pt_BR") resolve to their base language.
	if i := strings.IndexAny(code, "-_"); i > 0 {
		if e, ok := index[code[:i]]; ok {
			return e
		}
	}
	return index[code]
}

// StemmerName resolves an ISO 639 code, a region-tagged code, or a language
// word to the stemmer's language name. Empty input resolves to "english".
// The second result is false when the language is unknown or has no stemmer.
func StemmerName(code string) (string, bool) {
	if strings.TrimSpace(code) == "" {
		return "english", true
	}
	e := lookup(code)
	if e == nil || e.name == "" {
		return "", false
	}
	return e.name, true
}

// ToISO2 converts any recognized code or word to ISO 639-1.
// Returns an empty string for unrecognized input.
func ToISO2(code string) string {
	if e := lookup(code); e != nil {
		return e.code2
	}
	return ""
}

// DisplayName returns a human-readable name. Unknown codes come back
// uppercased; empty input is "Unknown".
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// Stemmable lists the display names of languages that have a stemmer, in
// table order.
func Stemmable() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range languages {
		if e.name == "" {
			continue
		}
		if _, ok := seen[e.name]; ok {
			continue
		}
		seen[e.name] = struct{}{}
		out = append(out, e.name)
	}
	return out
}
