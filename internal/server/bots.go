package server

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// scheduleBotAnswers queues one answer per active bot at a random point in
// the first 10-90% of the answer window, so bots neither answer instantly
// nor pile up at the deadline.
func (s *Server) scheduleBotAnswers(game *Game, round *RoundState) {
	window := time.Until(round.AnswerDeadline)
	if window <= 0 {
		return
	}
	number := round.Number
	for i := range game.Members {
		member := &game.Members[i]
		if !member.IsBot || !member.Active {
			continue
		}
		botID := member.ID
		fraction := 10 + s.randIntn(81)
		delay := window * time.Duration(fraction) / 100
		time.AfterFunc(delay, func() {
			s.submitBotAnswer(game.ID, botID, number)
		})
	}
}

func (s *Server) submitBotAnswer(gameID string, botID, expectedNumber int) {
	game, ok := s.store.GetGame(gameID)
	if !ok {
		return
	}
	acr := ""
	s.store.UpdateGame(game.ID, func(game *Game) error {
		round := currentRound(game)
		if game.Phase != phasePlaying || round == nil ||
			round.Number != expectedNumber || round.Phase != roundAnswering {
			return nil
		}
		if game.activeMember(botID) == nil {
			return nil
		}
		acr = round.Acronym
		return nil
	})
	if acr == "" {
		return
	}
	answer := s.bots.FindAnswer(acr)
	if err := s.SubmitAnswer(gameID, botID, answer); err != nil {
		// A deadline or manual advance can land between the check and the
		// submit; the conflict is expected noise.
		if kind, ok := KindOf(err); !ok || kind != KindConflict {
			log.Warnf("bot answer failed game_id=%s bot_id=%d: %v", gameID, botID, err)
		}
	}
}
