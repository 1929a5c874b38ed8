package db

import "time"

type Player struct {
	ID        uint      `gorm:"primaryKey"`
	Nickname  string    `gorm:"size:64;not null"`
	IsBot     bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type GamePlayer struct {
	ID         uint      `gorm:"primaryKey"`
	GameID     uint      `gorm:"index;not null;uniqueIndex:idx_game_players_game_player"`
	PlayerID   uint      `gorm:"index;not null;uniqueIndex:idx_game_players_game_player"`
	Score      int       `gorm:"not null;default:0"`
	Active     bool      `gorm:"not null;default:true"`
	CoHost     bool      `gorm:"not null;default:false"`
	KickedByID *uint     `gorm:"index"`
	BannedByID *uint     `gorm:"index"`
	BanReason  string    `gorm:"size:280;not null;default:''"`
	JoinedAt   time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}
