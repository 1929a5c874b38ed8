package acronym

import (
	"strings"
	"testing"
)

func TestValidateAccepts(t *testing.T) {
	cases := []struct {
		answer  string
		acronym string
	}{
		{"Alpha Beta", "AB"},
		{"  angry   bears  climb ", "ABC"},
		{"oddly, quiet!", "OQ"},
		{"Æsop eats", "ÆE"},
		{"tiny-ish things", "TT"},
	}
	for _, tc := range cases {
		if err := Validate(tc.answer, tc.acronym); err != nil {
			t.Fatalf("Validate(%q, %q) = %v, want nil", tc.answer, tc.acronym, err)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		answer  string
		acronym string
		wantSub string
	}{
		{"", "AB", "empty"},
		{"   ", "AB", "empty"},
		{"Alpha", "AB", "must have 2 words, got 1"},
		{"Alpha Beta Gamma", "AB", "must have 2 words, got 3"},
		{"Alpha Gamma", "AB", "word 2 should start with B but starts with G"},
		{"alpha b3ta", "AB", "unsupported character"},
		{"alpha <beta>", "AB", "unsupported character"},
		{"- beta", "AB", "word 1 has no letter"},
	}
	for _, tc := range cases {
		err := Validate(tc.answer, tc.acronym)
		if err == nil {
			t.Fatalf("Validate(%q, %q) accepted, want error containing %q", tc.answer, tc.acronym, tc.wantSub)
		}
		if !strings.Contains(err.Error(), tc.wantSub) {
			t.Fatalf("Validate(%q, %q) = %q, want substring %q", tc.answer, tc.acronym, err, tc.wantSub)
		}
	}
}

func TestValidateCaseInsensitive(t *testing.T) {
	if err := Validate("apple banana", "ab"); err != nil {
		t.Fatalf("lowercase acronym rejected: %v", err)
	}
	if err := Validate("APPLE BANANA", "AB"); err != nil {
		t.Fatalf("uppercase answer rejected: %v", err)
	}
}

func TestValidateRoundTrip(t *testing.T) {
	sentences := []string{
		"sneaky turtles avoid rain", "big old ants take snacks",
	}
	for _, sentence := range sentences {
		acr, ok := Derive(sentence)
		if !ok {
			t.Fatalf("Derive(%q) failed", sentence)
		}
		if len([]rune(acr)) != len(strings.Fields(sentence)) {
			t.Fatalf("Derive(%q) = %q, wrong length", sentence, acr)
		}
		if err := Validate(sentence, acr); err != nil {
			t.Fatalf("Validate(%q, %q) = %v, want nil", sentence, acr, err)
		}
	}
}
