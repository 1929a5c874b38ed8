package acronym

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Validate checks a submitted sentence against an acronym: exactly one word
// per acronym letter, each word starting with the matching letter. The check
// is pure; the same inputs always yield the same verdict.
func Validate(answer, acr string) error {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return errors.New("answer is empty")
	}
	for _, r := range trimmed {
		if !allowedRune(r) {
			return fmt.Errorf("answer contains unsupported character %q", r)
		}
	}

	words := strings.Fields(trimmed)
	letters := []rune(strings.ToUpper(acr))
	if len(words) != len(letters) {
		return fmt.Errorf("answer must have %d words, got %d", len(letters), len(words))
	}

	for i, word := range words {
		initial, ok := firstLetter(word)
		if !ok {
			return fmt.Errorf("word %d has no letter", i+1)
		}
		if unicode.ToUpper(initial) != letters[i] {
			return fmt.Errorf("word %d should start with %c but starts with %c", i+1, letters[i], unicode.ToUpper(initial))
		}
	}
	return nil
}

func allowedRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsSpace(r) {
		return true
	}
	switch r {
	case ',', '.', '!', '?', ':', ';', '-':
		return true
	}
	return false
}

func firstLetter(word string) (rune, bool) {
	for _, r := range word {
		if unicode.IsLetter(r) {
			return r, true
		}
	}
	return 0, false
}
