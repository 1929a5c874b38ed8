package server

import (
	log "github.com/sirupsen/logrus"
)

// Event names published to a game's channel. Payloads stay minimal; clients
// refetch the snapshot for full state.
const (
	eventPlayerJoined      = "player-joined"
	eventPlayerLeft        = "player-left"
	eventPlayerKicked      = "player-kicked"
	eventPlayerBanned      = "player-banned"
	eventPlayerUnbanned    = "player-unbanned"
	eventCoHostChanged     = "cohost-changed"
	eventSettingsChanged   = "settings-changed"
	eventChat              = "chat"
	eventGameStarted       = "game-started"
	eventRoundStarted      = "round-started"
	eventAnswerCount       = "answer-count"
	eventAnswersReady      = "answers-ready"
	eventVotingStarted     = "voting-started"
	eventVoteCount         = "vote-count"
	eventRoundCompleted    = "round-completed"
	eventGameFinished      = "game-finished"
	eventInactivityWarning = "inactivity-warning"
)

type EventPayload struct {
	GameID      string `json:"game_id,omitempty"`
	Code        string `json:"code,omitempty"`
	PlayerName  string `json:"player,omitempty"`
	PlayerID    int    `json:"player_id,omitempty"`
	TargetName  string `json:"target,omitempty"`
	TargetID    int    `json:"target_id,omitempty"`
	RoundNumber int    `json:"round_number,omitempty"`
	Acronym     string `json:"acronym,omitempty"`
	Phase       string `json:"phase,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Count       int    `json:"count,omitempty"`
	Message     string `json:"message,omitempty"`
	Winner      string `json:"winner,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
}

// Publisher delivers a named event to a game's channel. Implementations must
// not block game progress; failures are logged by the caller and never roll
// back the state change that produced the event.
type Publisher interface {
	Publish(gameID, event string, payload EventPayload) error
}

func (s *Server) publish(gameID, event string, payload EventPayload) {
	payload.GameID = gameID
	for _, p := range s.publishers {
		if err := p.Publish(gameID, event, payload); err != nil {
			log.Warnf("publish failed game_id=%s event=%s: %v", gameID, event, err)
		}
	}
}
