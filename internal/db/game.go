package db

import "time"

type Game struct {
	ID              uint   `gorm:"primaryKey"`
	Code            string `gorm:"size:12;uniqueIndex;not null"`
	Phase           string `gorm:"size:32;not null"`
	Public          bool   `gorm:"not null;default:true"`
	PasswordHash    string `gorm:"size:256;not null;default:''"`
	TotalRounds     int    `gorm:"not null;default:5"`
	CurrentRound    int    `gorm:"not null;default:0"`
	AnswerSeconds   int    `gorm:"not null;default:60"`
	VoteSeconds     int    `gorm:"not null;default:45"`
	AcronymMinLen   int    `gorm:"not null;default:3"`
	AcronymMaxLen   int    `gorm:"not null;default:6"`
	ExcludedLetters string `gorm:"size:32;not null;default:''"`
	MaxAnswerEdits  int    `gorm:"not null;default:0"`
	MaxVoteChanges  int    `gorm:"not null;default:3"`
	ChatEnabled     bool   `gorm:"not null;default:true"`
	ReadyCheck      bool   `gorm:"not null;default:true"`
	MaxPlayers      int    `gorm:"not null;default:10"`
	FinishReason    string `gorm:"size:32;not null;default:''"`
	StartedAt       *time.Time
	FinishedAt      *time.Time
	LastActivityAt  time.Time `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
	Members         []GamePlayer
	Rounds          []Round
	Events          []Event
}
