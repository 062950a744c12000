package query

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Query
		ok   bool
	}{
		{"beach holidays in thailand", "beach holidays in thailand", true},
		{"  safari \n", "safari", true},
		{"\tski  trip\t", "ski  trip", true},
		{"", "", false},
		{"   ", "", false},
		{"\n\t \r\n", "", false},
	}
	for _, tc := range tests {
		got, ok := Normalize(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Normalize(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}
