package db

import "time"

type Round struct {
	ID               uint   `gorm:"primaryKey"`
	GameID           uint   `gorm:"index;not null;uniqueIndex:idx_rounds_game_number"`
	Number           int    `gorm:"not null;uniqueIndex:idx_rounds_game_number"`
	Acronym          string `gorm:"size:16;not null"`
	SourceSentenceID *uint  `gorm:"index"`
	Phase            string `gorm:"size:32;not null"`
	AnswerDeadline   *time.Time
	VoteDeadline     *time.Time
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
	Answers          []Answer
	Votes            []Vote
}

type Answer struct {
	ID         uint      `gorm:"primaryKey"`
	RoundID    uint      `gorm:"index;not null;uniqueIndex:idx_answers_round_player"`
	PlayerID   uint      `gorm:"index;not null;uniqueIndex:idx_answers_round_player"`
	Text       string    `gorm:"size:280;not null"`
	AuthorName string    `gorm:"size:64;not null"`
	Ready      bool      `gorm:"not null;default:false"`
	EditCount  int       `gorm:"not null;default:0"`
	VotesCount int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type Vote struct {
	ID          uint      `gorm:"primaryKey"`
	RoundID     uint      `gorm:"index;not null;uniqueIndex:idx_votes_round_voter"`
	VoterID     uint      `gorm:"index;not null;uniqueIndex:idx_votes_round_voter"`
	AnswerID    uint      `gorm:"index;not null"`
	ChangeCount int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
