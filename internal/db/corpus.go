package db

import (
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"acromania/internal/acronym"
)

// CorpusSentence is a vetted community sentence. Initials are stored
// uppercase so acronym lookups are a single indexed equality.
type CorpusSentence struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"size:280;not null;uniqueIndex"`
	Initials  string    `gorm:"size:16;index;not null"`
	WordCount int       `gorm:"index;not null"`
	Votes     int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// How many top-voted candidates the random sentence draw considers.
const corpusCandidatePool = 50

// CorpusStore implements acronym.Corpus over the corpus_sentences table.
type CorpusStore struct {
	mu   sync.Mutex
	conn *gorm.DB
	rand *rand.Rand
}

func NewCorpusStore(conn *gorm.DB, source rand.Source) *CorpusStore {
	return &CorpusStore{conn: conn, rand: rand.New(source)}
}

func (c *CorpusStore) RandomSentence(minWords, maxWords int, excluded []rune) (*acronym.Sentence, error) {
	if c.conn == nil {
		return nil, nil
	}
	var rows []CorpusSentence
	err := c.conn.
		Where("word_count BETWEEN ? AND ?", minWords, maxWords).
		Order("votes DESC").
		Limit(corpusCandidatePool).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	candidates := rows[:0]
	for _, row := range rows {
		if initialsClean(row.Initials, excluded) {
			candidates = append(candidates, row)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	c.mu.Lock()
	pick := candidates[c.rand.Intn(len(candidates))]
	c.mu.Unlock()
	return &acronym.Sentence{ID: pick.ID, Text: pick.Text, Votes: pick.Votes}, nil
}

func (c *CorpusStore) SentencesForAcronym(acr string, limit int) ([]acronym.Sentence, error) {
	if c.conn == nil {
		return nil, nil
	}
	var rows []CorpusSentence
	err := c.conn.
		Where("initials = ?", strings.ToUpper(acr)).
		Order("votes DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	sentences := make([]acronym.Sentence, 0, len(rows))
	for _, row := range rows {
		sentences = append(sentences, acronym.Sentence{ID: row.ID, Text: row.Text, Votes: row.Votes})
	}
	return sentences, nil
}

// AddSentence upserts a winning sentence into the corpus, keeping the
// highest vote count seen for a repeated sentence.
func (c *CorpusStore) AddSentence(text string, votes int) error {
	if c.conn == nil {
		return nil
	}
	initials, ok := acronym.Derive(text)
	if !ok {
		return nil
	}
	row := CorpusSentence{
		Text:      text,
		Initials:  initials,
		WordCount: len(strings.Fields(text)),
		Votes:     votes,
	}
	return c.conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "text"}},
		DoUpdates: clause.Assignments(map[string]any{"votes": gorm.Expr("GREATEST(corpus_sentences.votes, ?)", votes)}),
	}).Create(&row).Error
}

func initialsClean(initials string, excluded []rune) bool {
	for _, banned := range excluded {
		if strings.ContainsRune(initials, unicode.ToUpper(banned)) {
			return false
		}
	}
	return true
}
