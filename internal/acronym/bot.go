package acronym

import (
	"math/rand"
	"strings"
	"sync"
	"unicode"

	log "github.com/sirupsen/logrus"
)

// How many of the best-voted corpus matches a bot picks between, so bots do
// not all parrot the single top sentence.
const botCorpusPickPool = 20

// BotAnswerer produces answers for bot players: a corpus sentence matching
// the acronym when one exists, otherwise a word-bank sentence. It never
// fails; a missing corpus match is the expected path, not an error.
type BotAnswerer struct {
	mu     sync.Mutex
	corpus Corpus
	rand   *rand.Rand
}

func NewBotAnswerer(corpus Corpus, source rand.Source) *BotAnswerer {
	return &BotAnswerer{corpus: corpus, rand: rand.New(source)}
}

func (b *BotAnswerer) FindAnswer(acr string) string {
	if answer := b.corpusAnswer(acr); answer != "" {
		return answer
	}
	return b.bankAnswer(acr)
}

func (b *BotAnswerer) corpusAnswer(acr string) string {
	if b.corpus == nil {
		return ""
	}
	sentences, err := b.corpus.SentencesForAcronym(acr, botCorpusPickPool)
	if err != nil {
		log.Warnf("bot corpus lookup failed acronym=%s: %v", acr, err)
		return ""
	}
	if len(sentences) == 0 {
		return ""
	}
	b.mu.Lock()
	pick := sentences[b.rand.Intn(len(sentences))]
	b.mu.Unlock()
	return pick.Text
}

func (b *BotAnswerer) bankAnswer(acr string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	words := make([]string, 0, len(acr))
	for _, r := range strings.ToUpper(acr) {
		candidates := wordBank[r]
		if len(candidates) == 0 {
			// Letters outside A-Z get the letter itself as a word.
			words = append(words, string(unicode.ToLower(r)))
			continue
		}
		words = append(words, candidates[b.rand.Intn(len(candidates))])
	}
	return strings.Join(words, " ")
}
