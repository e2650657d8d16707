package parser

import "testing"

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and joins words", "Oil Pan", "oil_pan"},
		{"drops punctuation without doubling separators", "Oil pan & oil strainer", "oil_pan_oil_strainer"},
		{"keeps digits", "Heater Unit 2", "heater_unit_2"},
		{"folds accented characters", "Intérieur", "interieur"},
		{"trims leading and trailing separators", " (Front) ", "front"},
		{"empty input", "", ""},
		{"only punctuation", "&&&", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
