package server

import (
	"strings"
	"time"
	"unicode"

	log "github.com/sirupsen/logrus"
)

const maxNicknameLength = 20
const maxChatLength = 280

func validateNickname(name string) (string, error) {
	trimmed := strings.Join(strings.Fields(strings.TrimSpace(name)), " ")
	if trimmed == "" {
		return "", errValidation("name is required")
	}
	if len(trimmed) > maxNicknameLength {
		return "", errValidation("name must be %d characters or fewer", maxNicknameLength)
	}
	for _, r := range trimmed {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' && r != '-' && r != '_' {
			return "", errValidation("name contains unsupported characters")
		}
	}
	return trimmed, nil
}

func touchGame(game *Game) {
	game.LastActivityAt = timeNowUTC()
	game.IdleWarned = false
}

// Start begins round 1. Host or co-host only, lobby only, two members up.
func (s *Server) Start(gameID string, actorID int) error {
	var round *RoundState
	players := 0
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if !game.isHostOrCoHost(actorID) {
			return errAuthorization("not host or co-host")
		}
		if game.Phase != phaseLobby {
			return errConflict("not in lobby phase")
		}
		if game.activeCount() < 2 {
			return errConflict("need at least 2 players to start")
		}
		game.Phase = phasePlaying
		game.StartedAt = timeNowUTC()
		touchGame(game)
		round = s.beginRoundLocked(game)
		players = game.activeCount()
		return nil
	})
	if err != nil {
		return err
	}
	s.cancelIdleTimer(game.ID)
	s.persistGamePhase(game, eventGameStarted, EventPayload{Phase: phasePlaying})
	s.afterRoundStart(game, round)
	s.publish(game.ID, eventGameStarted, EventPayload{Phase: phasePlaying})
	log.Infof("game started game_id=%s players=%d", game.ID, players)
	return nil
}

// beginRoundLocked appends the next round with a fresh acronym and answer
// deadline. Caller holds the store lock via UpdateGame.
func (s *Server) beginRoundLocked(game *Game) *RoundState {
	number := len(game.Rounds) + 1
	settings := game.Settings
	round := RoundState{
		Number:         number,
		Phase:          roundAnswering,
		AnswerDeadline: timeNowUTC().Add(time.Duration(settings.AnswerSeconds) * time.Second),
	}
	if settings.WeightedAcronyms {
		result, fromCorpus := s.weighted.Generate(settings.AcronymMinLen, settings.AcronymMaxLen, settings.excludedRunes())
		round.Acronym = result.Acronym
		if fromCorpus {
			round.SourceID = result.SourceID
			round.SourceText = result.SourceText
		}
	} else {
		round.Acronym = s.gen.Generate(settings.AcronymMinLen, settings.AcronymMaxLen, settings.excludedRunes())
	}
	game.Rounds = append(game.Rounds, round)
	return &game.Rounds[len(game.Rounds)-1]
}

// afterRoundStart persists the round, arms its deadline and bot timers, and
// announces it.
func (s *Server) afterRoundStart(game *Game, round *RoundState) {
	if round == nil {
		return
	}
	s.persistRound(game, round)
	s.scheduleAnswerDeadline(game, round)
	s.scheduleBotAnswers(game, round)
	s.publish(game.ID, eventRoundStarted, EventPayload{
		RoundNumber: round.Number,
		Acronym:     round.Acronym,
		Deadline:    round.AnswerDeadline.Format(time.RFC3339),
	})
}

// End finishes the game early. In the lobby it just closes; once playing it
// runs the same scoring path as a natural finish, tagged with the reason.
func (s *Server) End(gameID string, actorID int, reason string) error {
	if reason == "" {
		reason = finishReasonHostEnded
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if !game.isHostOrCoHost(actorID) {
			return errAuthorization("not host or co-host")
		}
		if game.Phase == phaseFinished {
			return errConflict("game already finished")
		}
		finishGameLocked(game, reason)
		return nil
	})
	if err != nil {
		return err
	}
	s.afterFinish(game)
	return nil
}

// finishGameLocked moves the game to its terminal phase and freezes the
// result. An in-flight voting round is tallied before the result freezes, so
// an early end scores the same votes a natural finish would. Lobby games
// finish without scores.
func finishGameLocked(game *Game, reason string) {
	if game.Phase == phaseFinished {
		return
	}
	scored := game.Phase == phasePlaying
	game.Phase = phaseFinished
	game.FinishReason = reason
	game.FinishedAt = timeNowUTC()
	if round := currentRound(game); round != nil && round.Phase != roundCompleted {
		if round.Phase == roundVoting {
			applyRoundScores(game, round)
		}
		round.Phase = roundCompleted
	}
	if scored {
		game.Result = buildFinalResult(game)
	}
}

// afterFinish runs the out-of-lock tail of every finish path: timers off,
// result persisted, subscribers told.
func (s *Server) afterFinish(game *Game) {
	s.cancelDeadlineTimer(game.ID)
	s.cancelIdleTimer(game.ID)
	s.persistGamePhase(game, eventGameFinished, EventPayload{Phase: game.Phase, Reason: game.FinishReason})
	winner := ""
	if game.Result != nil {
		winner = game.Result.WinnerName
		s.persistScores(game)
		s.persistResult(game)
		s.persistStats(game)
	}
	s.publish(game.ID, eventGameFinished, EventPayload{Phase: game.Phase, Reason: game.FinishReason, Winner: winner})
	log.Infof("game finished game_id=%s reason=%s winner=%q", game.ID, game.FinishReason, winner)
}

// ApplySettings patches game settings. In the lobby any field may change;
// once playing only the live allow-list (chat toggle, visibility) is
// accepted and anything else rejects the patch as a whole.
func (s *Server) ApplySettings(gameID string, actorID int, patch SettingsPatch) error {
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if !game.isHostOrCoHost(actorID) {
			return errAuthorization("not host or co-host")
		}
		switch game.Phase {
		case phaseFinished:
			return errConflict("game already finished")
		case phasePlaying:
			if !liveSettingsPatch(patch) {
				return errConflict("only chat and visibility can change after start")
			}
		}
		next := applyPatch(game.Settings, patch)
		if err := validateSettings(next); err != nil {
			return err
		}
		if game.Phase == phaseLobby && next.MaxPlayers < game.activeCount() {
			return errValidation("max players below current player count")
		}
		game.Settings = next
		if patch.Public != nil {
			game.Public = *patch.Public
		}
		touchGame(game)
		return nil
	})
	if err != nil {
		return err
	}
	s.persistSettings(game)
	s.scheduleIdleTimer(game)
	s.publish(game.ID, eventSettingsChanged, EventPayload{PlayerID: actorID})
	return nil
}

// Chat relays a message when chat is enabled. Chatter counts as activity.
func (s *Server) Chat(gameID string, playerID int, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return errValidation("message is required")
	}
	if len(trimmed) > maxChatLength {
		return errValidation("message must be %d characters or fewer", maxChatLength)
	}
	var name string
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if !game.Settings.ChatEnabled {
			return errConflict("chat is disabled")
		}
		member := game.activeMember(playerID)
		if member == nil {
			return errNotFound("player not in game")
		}
		name = member.Name
		game.Chat = append(game.Chat, ChatMessage{
			PlayerID: playerID,
			Name:     name,
			Text:     trimmed,
			SentAt:   timeNowUTC(),
		})
		touchGame(game)
		return nil
	})
	if err != nil {
		return err
	}
	s.scheduleIdleTimer(game)
	s.publish(game.ID, eventChat, EventPayload{PlayerName: name, PlayerID: playerID, Message: trimmed})
	return nil
}

// Keepalive resets the inactivity window without any other effect.
func (s *Server) Keepalive(gameID string) error {
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.Phase == phaseFinished {
			return errConflict("game already finished")
		}
		touchGame(game)
		return nil
	})
	if err != nil {
		return err
	}
	s.scheduleIdleTimer(game)
	return nil
}
