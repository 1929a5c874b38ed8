package server

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Deadline timers fire the same forced transitions a host could trigger by
// hand. Each callback revalidates phase and round under the store lock, so a
// stale timer racing a manual advance degrades to a no-op.

func (s *Server) scheduleAnswerDeadline(game *Game, round *RoundState) {
	number := round.Number
	s.armDeadline(game.ID, time.Until(round.AnswerDeadline), func() {
		if err := s.startVoting(game.ID, actorSystem, number); err != nil {
			log.Errorf("answer deadline advance failed game_id=%s round=%d: %v", game.ID, number, err)
			return
		}
		log.Infof("answer deadline reached game_id=%s round=%d", game.ID, number)
	})
}

func (s *Server) scheduleVoteDeadline(game *Game, round *RoundState) {
	number := round.Number
	s.armDeadline(game.ID, time.Until(round.VoteDeadline), func() {
		if err := s.completeRound(game.ID, actorSystem, number); err != nil {
			log.Errorf("vote deadline advance failed game_id=%s round=%d: %v", game.ID, number, err)
			return
		}
		log.Infof("vote deadline reached game_id=%s round=%d", game.ID, number)
	})
}

func (s *Server) armDeadline(gameID string, wait time.Duration, fire func()) {
	if wait < 0 {
		wait = 0
	}
	s.timersMu.Lock()
	if existing, ok := s.timers[gameID]; ok {
		existing.Stop()
	}
	s.timers[gameID] = time.AfterFunc(wait, fire)
	s.timersMu.Unlock()
}

func (s *Server) cancelDeadlineTimer(gameID string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[gameID]; ok {
		timer.Stop()
		delete(s.timers, gameID)
	}
}

// scheduleIdleTimer arms the lobby inactivity watchdog: a warning after the
// idle window, then an automatic finish after the grace period. Started games
// pace themselves with round deadlines and get no idle timer.
func (s *Server) scheduleIdleTimer(game *Game) {
	if game.Phase != phaseLobby {
		s.cancelIdleTimer(game.ID)
		return
	}
	warn := time.Duration(s.cfg.LobbyIdleWarnSeconds) * time.Second
	if warn <= 0 {
		return
	}
	s.timersMu.Lock()
	if existing, ok := s.idleTimers[game.ID]; ok {
		existing.Stop()
	}
	s.idleTimers[game.ID] = time.AfterFunc(warn, func() {
		s.idleWarn(game.ID)
	})
	s.timersMu.Unlock()
}

func (s *Server) cancelIdleTimer(gameID string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.idleTimers[gameID]; ok {
		timer.Stop()
		delete(s.idleTimers, gameID)
	}
}

func (s *Server) idleWarn(gameID string) {
	warn := time.Duration(s.cfg.LobbyIdleWarnSeconds) * time.Second
	grace := time.Duration(s.cfg.LobbyIdleGraceSeconds) * time.Second
	warned := false
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.Phase != phaseLobby {
			return nil
		}
		// Activity since arming reschedules instead of warning.
		if timeNowUTC().Sub(game.LastActivityAt) < warn {
			return nil
		}
		game.IdleWarned = true
		warned = true
		return nil
	})
	if err != nil {
		return
	}
	if !warned {
		s.scheduleIdleTimer(game)
		return
	}
	s.publish(game.ID, eventInactivityWarning, EventPayload{
		Reason:   finishReasonInactivity,
		Deadline: timeNowUTC().Add(grace).Format(time.RFC3339),
	})
	log.Infof("idle warning game_id=%s grace=%s", game.ID, grace)
	s.timersMu.Lock()
	s.idleTimers[game.ID] = time.AfterFunc(grace, func() {
		s.idleFinish(game.ID)
	})
	s.timersMu.Unlock()
}

func (s *Server) idleFinish(gameID string) {
	finished := false
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		// A keepalive during the grace period clears the warning flag.
		if game.Phase != phaseLobby || !game.IdleWarned {
			return nil
		}
		finishGameLocked(game, finishReasonInactivity)
		finished = true
		return nil
	})
	if err != nil {
		return
	}
	if !finished {
		s.scheduleIdleTimer(game)
		return
	}
	s.afterFinish(game)
}
