package acronym

import (
	"errors"
	"math/rand"
	"testing"
)

type fakeCorpus struct {
	sentences []Sentence
	err       error
}

func (f *fakeCorpus) RandomSentence(minWords, maxWords int, excluded []rune) (*Sentence, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.sentences) == 0 {
		return nil, nil
	}
	return &f.sentences[0], nil
}

func (f *fakeCorpus) SentencesForAcronym(acr string, limit int) ([]Sentence, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sentences, nil
}

func TestBotPrefersCorpusMatch(t *testing.T) {
	corpus := &fakeCorpus{sentences: []Sentence{{ID: 1, Text: "angry bears", Votes: 9}}}
	bot := NewBotAnswerer(corpus, rand.NewSource(1))
	if got := bot.FindAnswer("AB"); got != "angry bears" {
		t.Fatalf("expected corpus answer, got %q", got)
	}
}

func TestBotFallsBackToWordBank(t *testing.T) {
	for _, corpus := range []Corpus{
		&fakeCorpus{},
		&fakeCorpus{err: errors.New("connection refused")},
		nil,
	} {
		bot := NewBotAnswerer(corpus, rand.NewSource(2))
		answer := bot.FindAnswer("TGIF")
		if answer == "" {
			t.Fatalf("bot returned empty answer")
		}
		if err := Validate(answer, "TGIF"); err != nil {
			t.Fatalf("bot answer %q invalid: %v", answer, err)
		}
	}
}

func TestBotBankAnswersAlwaysValid(t *testing.T) {
	gen := NewGenerator(rand.NewSource(3))
	bot := NewBotAnswerer(nil, rand.NewSource(4))
	for i := 0; i < 200; i++ {
		acr := gen.Generate(2, 8, nil)
		answer := bot.FindAnswer(acr)
		if err := Validate(answer, acr); err != nil {
			t.Fatalf("bot answer %q invalid for %q: %v", answer, acr, err)
		}
	}
}

func TestWeightedSourceUsesCorpus(t *testing.T) {
	corpus := &fakeCorpus{sentences: []Sentence{{ID: 7, Text: "sneaky turtles attack", Votes: 4}}}
	source := NewWeightedSource(corpus, NewGenerator(rand.NewSource(5)))
	result, fromCorpus := source.Generate(3, 3, nil)
	if !fromCorpus {
		t.Fatalf("expected corpus-backed acronym")
	}
	if result.Acronym != "STA" || result.SourceID != 7 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestWeightedSourceFailsSoft(t *testing.T) {
	corpus := &fakeCorpus{err: errors.New("timeout")}
	source := NewWeightedSource(corpus, NewGenerator(rand.NewSource(6)))
	result, fromCorpus := source.Generate(3, 5, []rune{'Q'})
	if fromCorpus {
		t.Fatalf("corpus failure should fall back to synthetic")
	}
	if len(result.Acronym) < 3 || len(result.Acronym) > 5 {
		t.Fatalf("fallback acronym %q out of bounds", result.Acronym)
	}
}
