package acronym

import (
	"math/rand"
	"strings"
	"sync"
	"unicode"
)

// Relative letter weights for random acronyms, roughly following English
// initial-letter frequency. Heavier letters produce friendlier acronyms.
var letterWeights = map[rune]int{
	'A': 82, 'B': 40, 'C': 55, 'D': 42, 'E': 50, 'F': 38, 'G': 33,
	'H': 45, 'I': 55, 'J': 10, 'K': 12, 'L': 40, 'M': 50, 'N': 35,
	'O': 48, 'P': 50, 'Q': 4, 'R': 40, 'S': 70, 'T': 65, 'U': 20,
	'V': 12, 'W': 30, 'X': 2, 'Y': 10, 'Z': 4,
}

const vowels = "AEIOU"

// Fallback letters when exclusions empty out a pool entirely.
const (
	fallbackVowel     = 'A'
	fallbackConsonant = 'S'
)

// Generator produces random acronyms from a weighted letter pool. It is
// safe for concurrent use; the random source is injected so tests can run
// with a fixed seed.
type Generator struct {
	mu   sync.Mutex
	rand *rand.Rand
}

func NewGenerator(source rand.Source) *Generator {
	return &Generator{rand: rand.New(source)}
}

// Generate returns an acronym with length in [minLen, maxLen] containing no
// excluded letters. Vowel placement is forced where needed so the result
// stays pronounceable: at most three consonants in a row, and at least one
// vowel before the final two slots.
func (g *Generator) Generate(minLen, maxLen int, excluded []rune) string {
	if minLen < 1 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	length := minLen + g.rand.Intn(maxLen-minLen+1)
	full, vowelPool := buildPools(excluded)

	letters := make([]rune, 0, length)
	sawVowel := false
	consonantRun := 0
	for i := 0; i < length; i++ {
		forceVowel := consonantRun >= 3
		if !sawVowel && i >= length-2 {
			forceVowel = true
		}

		var letter rune
		if forceVowel {
			letter = g.pickWeighted(vowelPool, fallbackVowel)
		} else {
			letter = g.pickWeighted(full, fallbackConsonant)
		}

		if isVowel(letter) {
			sawVowel = true
			consonantRun = 0
		} else {
			consonantRun++
		}
		letters = append(letters, letter)
	}
	return string(letters)
}

// GenerateBatch returns up to n unique acronyms. It draws at most 3n
// attempts, so heavy exclusion lists shrink the result instead of looping
// forever.
func (g *Generator) GenerateBatch(n, minLen, maxLen int) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for attempt := 0; attempt < 3*n && len(out) < n; attempt++ {
		acr := g.Generate(minLen, maxLen, nil)
		if _, dup := seen[acr]; dup {
			continue
		}
		seen[acr] = struct{}{}
		out = append(out, acr)
	}
	return out
}

func (g *Generator) pickWeighted(pool []rune, fallback rune) rune {
	if len(pool) == 0 {
		return fallback
	}
	total := 0
	for _, r := range pool {
		total += letterWeights[r]
	}
	if total <= 0 {
		return pool[g.rand.Intn(len(pool))]
	}
	pick := g.rand.Intn(total)
	for _, r := range pool {
		pick -= letterWeights[r]
		if pick < 0 {
			return r
		}
	}
	return pool[len(pool)-1]
}

func buildPools(excluded []rune) (full, vowelPool []rune) {
	banned := make(map[rune]struct{}, len(excluded))
	for _, r := range excluded {
		banned[unicode.ToUpper(r)] = struct{}{}
	}
	for r := 'A'; r <= 'Z'; r++ {
		if _, skip := banned[r]; skip {
			continue
		}
		full = append(full, r)
		if isVowel(r) {
			vowelPool = append(vowelPool, r)
		}
	}
	return full, vowelPool
}

func isVowel(r rune) bool {
	return strings.ContainsRune(vowels, unicode.ToUpper(r))
}
