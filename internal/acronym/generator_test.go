package acronym

import (
	"math/rand"
	"strings"
	"testing"
)

func TestGenerateBoundsAndExclusions(t *testing.T) {
	gen := NewGenerator(rand.NewSource(1))
	excluded := []rune{'Q', 'X', 'Z', 'a'}
	for i := 0; i < 500; i++ {
		acr := gen.Generate(3, 6, excluded)
		if len(acr) < 3 || len(acr) > 6 {
			t.Fatalf("acronym %q length out of bounds", acr)
		}
		for _, r := range acr {
			if r < 'A' || r > 'Z' {
				t.Fatalf("acronym %q contains non-letter %c", acr, r)
			}
		}
		if strings.ContainsAny(acr, "QXZA") {
			t.Fatalf("acronym %q contains excluded letter", acr)
		}
	}
}

func TestGenerateContainsVowel(t *testing.T) {
	gen := NewGenerator(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		acr := gen.Generate(3, 8, nil)
		if !strings.ContainsAny(acr, vowels) {
			t.Fatalf("acronym %q has no vowel", acr)
		}
		if strings.Contains(consonantRuns(acr), "CCCC") {
			t.Fatalf("acronym %q has four consonants in a row", acr)
		}
	}
}

// consonantRuns maps each letter to C or V so runs are easy to assert on.
func consonantRuns(acr string) string {
	var b strings.Builder
	for _, r := range acr {
		if strings.ContainsRune(vowels, r) {
			b.WriteByte('V')
		} else {
			b.WriteByte('C')
		}
	}
	return b.String()
}

func TestGenerateAllLettersExcludedFallsBack(t *testing.T) {
	gen := NewGenerator(rand.NewSource(3))
	all := make([]rune, 0, 26)
	for r := 'A'; r <= 'Z'; r++ {
		all = append(all, r)
	}
	acr := gen.Generate(2, 2, all)
	if len(acr) != 2 {
		t.Fatalf("expected fallback acronym of length 2, got %q", acr)
	}
}

func TestGenerateBatchUniqueBounded(t *testing.T) {
	gen := NewGenerator(rand.NewSource(4))
	batch := gen.GenerateBatch(10, 3, 5)
	if len(batch) == 0 || len(batch) > 10 {
		t.Fatalf("unexpected batch size %d", len(batch))
	}
	seen := map[string]struct{}{}
	for _, acr := range batch {
		if _, dup := seen[acr]; dup {
			t.Fatalf("duplicate acronym %q in batch", acr)
		}
		seen[acr] = struct{}{}
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	a := NewGenerator(rand.NewSource(42)).Generate(4, 4, nil)
	b := NewGenerator(rand.NewSource(42)).Generate(4, 4, nil)
	if a != b {
		t.Fatalf("same seed produced %q and %q", a, b)
	}
}
