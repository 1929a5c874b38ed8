package acronym

import (
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"
)

// Sentence is a community-submitted sentence from the corpus, ranked by the
// votes it collected in past games.
type Sentence struct {
	ID    uint
	Text  string
	Votes int
}

// Corpus is the lookup port backing weighted acronyms and bot answers.
// Implementations return (nil, error) on infrastructure failure; callers
// treat any failure as "no result" and fall back to the synthetic path.
type Corpus interface {
	// RandomSentence picks a highly-voted sentence whose word count lies in
	// [minWords, maxWords] and whose initials avoid the excluded letters.
	RandomSentence(minWords, maxWords int, excluded []rune) (*Sentence, error)
	// SentencesForAcronym returns sentences whose initials spell the acronym,
	// best-voted first, at most limit rows.
	SentencesForAcronym(acr string, limit int) ([]Sentence, error)
}

// WeightedResult carries a corpus-derived acronym together with its source
// sentence so the reveal layer can show where the acronym came from.
type WeightedResult struct {
	Acronym    string
	SourceID   uint
	SourceText string
}

// WeightedSource draws acronyms from real corpus sentences, falling back to
// the synthetic generator when the corpus has nothing suitable.
type WeightedSource struct {
	corpus Corpus
	gen    *Generator
}

func NewWeightedSource(corpus Corpus, gen *Generator) *WeightedSource {
	return &WeightedSource{corpus: corpus, gen: gen}
}

// Generate returns a corpus-weighted acronym when possible. The boolean
// reports whether the result came from the corpus; on false the acronym is
// synthetic and the source fields are empty. Corpus failures are logged and
// absorbed, never surfaced.
func (w *WeightedSource) Generate(minLen, maxLen int, excluded []rune) (WeightedResult, bool) {
	if w.corpus != nil {
		sentence, err := w.corpus.RandomSentence(minLen, maxLen, excluded)
		if err != nil {
			log.Warnf("corpus sentence lookup failed: %v", err)
		} else if sentence != nil {
			if acr, ok := Derive(sentence.Text); ok {
				return WeightedResult{
					Acronym:    acr,
					SourceID:   sentence.ID,
					SourceText: sentence.Text,
				}, true
			}
		}
	}
	return WeightedResult{Acronym: w.gen.Generate(minLen, maxLen, excluded)}, false
}

// Derive builds the acronym spelled by a sentence's word initials. It
// reports false when any word lacks a letter.
func Derive(sentence string) (string, bool) {
	words := strings.Fields(strings.TrimSpace(sentence))
	if len(words) == 0 {
		return "", false
	}
	letters := make([]rune, 0, len(words))
	for _, word := range words {
		initial, ok := firstLetter(word)
		if !ok {
			return "", false
		}
		letters = append(letters, unicode.ToUpper(initial))
	}
	return string(letters), true
}
