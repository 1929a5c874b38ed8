package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Rounds                   int
	AnswerSeconds            int
	VoteSeconds              int
	AcronymMinLen            int
	AcronymMaxLen            int
	MaxVoteChanges           int
	MaxPlayers               int
	LobbyIdleWarnSeconds     int
	LobbyIdleGraceSeconds    int
	NATSURL                  string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		Rounds:                   5,
		AnswerSeconds:            60,
		VoteSeconds:              45,
		AcronymMinLen:            3,
		AcronymMaxLen:            6,
		MaxVoteChanges:           3,
		MaxPlayers:               10,
		LobbyIdleWarnSeconds:     600,
		LobbyIdleGraceSeconds:    120,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	loadInt(&cfg.Rounds, "GAME_ROUNDS")
	loadInt(&cfg.AnswerSeconds, "ANSWER_SECONDS")
	loadInt(&cfg.VoteSeconds, "VOTE_SECONDS")
	loadInt(&cfg.AcronymMinLen, "ACRONYM_MIN_LEN")
	loadInt(&cfg.AcronymMaxLen, "ACRONYM_MAX_LEN")
	loadInt(&cfg.MaxVoteChanges, "MAX_VOTE_CHANGES")
	loadInt(&cfg.MaxPlayers, "MAX_PLAYERS")
	loadInt(&cfg.LobbyIdleWarnSeconds, "LOBBY_IDLE_WARN_SECONDS")
	loadInt(&cfg.LobbyIdleGraceSeconds, "LOBBY_IDLE_GRACE_SECONDS")
	loadInt(&cfg.DBMaxOpenConns, "DB_MAX_OPEN_CONNS")
	loadInt(&cfg.DBMaxIdleConns, "DB_MAX_IDLE_CONNS")
	loadInt(&cfg.DBConnMaxLifetimeSeconds, "DB_CONN_MAX_LIFETIME_SECONDS")
	loadInt(&cfg.DBConnMaxIdleTimeSeconds, "DB_CONN_MAX_IDLE_SECONDS")
	if raw := os.Getenv("NATS_URL"); raw != "" {
		cfg.NATSURL = raw
	}
	return cfg
}

func loadInt(dest *int, key string) {
	if raw := os.Getenv(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			*dest = value
		}
	}
}
