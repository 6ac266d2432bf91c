package language

import (
	"testing"
)

func TestStemmerName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"", "english", true},
		{"en", "english", true},
		{"EN", "english", true},
		{"eng", "english", true},
		{"en-US", "english", true},
		{"english", "english", true},
		{"Spanish", "spanish", true},
		{"spa", "spanish", true},
		{"fre", "french", true},
		{"fr_CA", "french", true},
		{"rus", "russian", true},
		{"sv", "swedish", true},
		{"nb", "norwegian", true},
		{"hu", "hungarian", true},
		// Known language without a stemmer
		{"de", "", false},
		{"german", "", false},
		// Unknown
		{"xyz", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, ok := StemmerName(tt.input)
			if name != tt.expected || ok != tt.ok {
				t.Errorf("StemmerName(%q) = %q, %v, want %q, %v", tt.input, name, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"eng", "en"},
		{"ger", "de"},
		{"dut", "nl"},
		{"French", "fr"},
		{"pt-BR", "pt"},
		{"xy", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO2(tt.input); got != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("swe"); got != "Swedish" {
		t.Errorf("DisplayName(swe) = %q", got)
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Errorf("DisplayName(\"\") = %q", got)
	}
	if got := DisplayName("xx"); got != "XX" {
		t.Errorf("DisplayName(xx) = %q", got)
	}
}

func TestStemmableDeduplicates(t *testing.T) {
	got := Stemmable()
	want := []string{"english", "spanish", "french", "russian", "swedish", "norwegian", "hungarian"}
	if len(got) != len(want) {
		t.Fatalf("Stemmable() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Stemmable() = %v, want %v", got, want)
		}
	}
}
