package textprep

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	langcode "topicsweep/internal/language"
)

const defaultMinLength = 4

var tokenSplit = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Options configures a Pipeline.
type Options struct {
	// ReplaceBefore maps substrings of the raw text to replacements.
	ReplaceBefore map[string]string
	// RemoveBefore drops whole tokens before stemming.
	RemoveBefore []string
	// ReplaceAfter maps stemmed tokens to replacements.
	ReplaceAfter map[string]string
	// RemoveAfter drops stemmed tokens.
	RemoveAfter []string
	StopWords   bool
	Stem        bool
	// Language is a stemmer language name or ISO 639 code; "english" when
	// empty.
	Language string
	// MinLength drops shorter tokens (before stemming). Defaults to 4.
	MinLength int
}

// Pipeline is a configured preprocessor.
type Pipeline struct {
	replacer     *strings.Replacer
	removeBefore map[string]struct{}
	replaceAfter map[string]string
	removeAfter  map[string]struct{}
	stopWords    map[string]struct{}
	stem         bool
	language     string
	minLength    int
}

// New validates opts and builds a Pipeline.
func New(opts Options) (*Pipeline, error) {
	lang, known := langcode.StemmerName(opts.Language)
	if !known {
		lang = strings.ToLower(strings.TrimSpace(opts.Language))
	}
	if opts.Stem {
		if !known {
			return nil, fmt.Errorf("stemmer language %q: supported languages are %s",
				opts.Language, strings.Join(langcode.Stemmable(), ", "))
		}
		if _, err := snowball.Stem("testing", lang, true); err != nil {
			return nil, fmt.Errorf("stemmer language %q: %w", lang, err)
		}
	}
	p := &Pipeline{
		removeBefore: toSet(opts.RemoveBefore),
		replaceAfter: opts.ReplaceAfter,
		removeAfter:  toSet(opts.RemoveAfter),
		stem:         opts.Stem,
		language:     lang,
		minLength:    opts.MinLength,
	}
	if p.minLength <= 0 {
		p.minLength = defaultMinLength
	}
	if len(opts.ReplaceBefore) > 0 {
		keys := make([]string, 0, len(opts.ReplaceBefore))
		for k := range opts.ReplaceBefore {
			if k != "" {
				keys = append(keys, k)
			}
		}
		// Longer patterns first so overlapping keys resolve deterministically.
		sort.Slice(keys, func(i, j int) bool {
			if len(keys[i]) != len(keys[j]) {
				return len(keys[i]) > len(keys[j])
			}
			return keys[i] < keys[j]
		})
		pairs := make([]string, 0, 2*len(keys))
		for _, k := range keys {
			pairs = append(pairs, k, opts.ReplaceBefore[k])
		}
		p.replacer = strings.NewReplacer(pairs...)
	}
	if opts.StopWords {
		p.stopWords = englishStopWords()
	}
	return p, nil
}

// Tokens runs the full pipeline over text.
func (p *Pipeline) Tokens(text string) []string {
	if p.replacer != nil {
		text = p.replacer.Replace(text)
	}
	raw := tokenSplit.Split(Fold(text), -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len([]rune(tok)) < p.minLength {
			continue
		}
		if _, drop := p.removeBefore[tok]; drop {
			continue
		}
		if _, stop := p.stopWords[tok]; stop {
			continue
		}
		if p.stem {
			if stemmed, err := snowball.Stem(tok, p.language, true); err == nil && stemmed != "" {
				tok = stemmed
			}
		}
		if repl, ok := p.replaceAfter[tok]; ok {
			tok = repl
		}
		if tok == "" {
			continue
		}
		if _, drop := p.removeAfter[tok]; drop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Fold lowercases text and strips combining marks ("Café" becomes "cafe").
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return cases.Lower(language.Und).String(folded)
}

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters and digits are kept along with hyphens and underscores; everything
// else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[Fold(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}
