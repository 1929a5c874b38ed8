package db

import (
	"time"

	"gorm.io/datatypes"
)

// GameResult is written once when a game finishes. WinnerName is empty on a
// tie; Scores holds the final per-player rows with their winner flags.
type GameResult struct {
	ID              uint           `gorm:"primaryKey"`
	GameID          uint           `gorm:"uniqueIndex;not null"`
	WinnerName      string         `gorm:"size:64;not null;default:''"`
	Scores          datatypes.JSON `gorm:"type:jsonb;not null"`
	RoundsPlayed    int            `gorm:"not null"`
	PlayerCount     int            `gorm:"not null"`
	DurationSeconds int            `gorm:"not null"`
	CreatedAt       time.Time      `gorm:"not null"`
}

// HallOfFameEntry archives a round's winning sentence. Append-only; author
// and voter nicknames are snapshots, not live references.
type HallOfFameEntry struct {
	ID         uint           `gorm:"primaryKey"`
	GameID     uint           `gorm:"index;not null"`
	RoundID    uint           `gorm:"uniqueIndex;not null"`
	Acronym    string         `gorm:"size:16;not null"`
	Sentence   string         `gorm:"size:280;not null"`
	AuthorName string         `gorm:"size:64;not null"`
	VotesCount int            `gorm:"not null"`
	VoterNames datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"not null"`
}

type PlayerStat struct {
	ID            uint      `gorm:"primaryKey"`
	PlayerID      uint      `gorm:"uniqueIndex;not null"`
	GamesPlayed   int       `gorm:"not null;default:0"`
	GamesWon      int       `gorm:"not null;default:0"`
	RoundsPlayed  int       `gorm:"not null;default:0"`
	RoundsWon     int       `gorm:"not null;default:0"`
	VotesReceived int       `gorm:"not null;default:0"`
	BestSentence  string    `gorm:"size:280;not null;default:''"`
	BestVotes     int       `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}
