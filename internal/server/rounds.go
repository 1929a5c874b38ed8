package server

import (
	"math/rand"
	"sort"
	"time"

	"acromania/internal/acronym"
)

// SubmitAnswer upserts the player's answer for the current round. The author
// nickname is snapshotted at submit time; edits bump the edit count, clear
// the ready flag, and respect the per-game edit cap.
func (s *Server) SubmitAnswer(gameID string, playerID int, text string) error {
	// Round and answer are resolved under the store lock; a deadline firing
	// after the unlock must not redirect the mirror write to the next round.
	var round *RoundState
	var answer *AnswerEntry
	var count int
	shortened := false
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		round = currentRound(game)
		if game.Phase != phasePlaying || round == nil || round.Phase != roundAnswering {
			return errConflict("not in answering phase")
		}
		member := game.activeMember(playerID)
		if member == nil {
			return errNotFound("player not in game")
		}
		if err := acronym.Validate(text, round.Acronym); err != nil {
			return errValidation("%v", err)
		}
		if existing := round.answerBy(playerID); existing != nil {
			limit := game.Settings.MaxAnswerEdits
			if limit > 0 && existing.EditCount+1 > limit {
				return errConflict("answer edit limit reached")
			}
			existing.Text = text
			existing.EditCount++
			existing.Ready = member.IsBot
			answer = existing
			count = len(round.Answers)
			return nil
		}
		round.Answers = append(round.Answers, AnswerEntry{
			PlayerID:   playerID,
			Text:       text,
			AuthorName: member.Name,
			Ready:      member.IsBot,
		})
		answer = &round.Answers[len(round.Answers)-1]
		count = len(round.Answers)
		if member.IsBot {
			shortened = clampIfAllReady(game, round)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.persistAnswer(game, round, answer)
	if shortened {
		s.scheduleAnswerDeadline(game, round)
		s.publish(game.ID, eventAnswersReady, EventPayload{RoundNumber: round.Number, Count: count})
	}
	s.publish(game.ID, eventAnswerCount, EventPayload{RoundNumber: round.Number, Count: count})
	return nil
}

// clampIfAllReady pulls the answer deadline to now once every active player
// has a ready answer. Answers left behind by departed players do not count.
// Never lengthens, and clamping twice is a no-op.
func clampIfAllReady(game *Game, round *RoundState) bool {
	if !game.Settings.ReadyCheck {
		return false
	}
	ready := 0
	for i := range round.Answers {
		answer := &round.Answers[i]
		if answer.Ready && game.activeMember(answer.PlayerID) != nil {
			ready++
		}
	}
	if ready < game.activeCount() {
		return false
	}
	now := timeNowUTC()
	if !round.AnswerDeadline.After(now) {
		return false
	}
	round.AnswerDeadline = now
	return true
}

// MarkReady flips the ready flag on the player's answer. When every active
// player has a ready answer the answer deadline is clamped to now.
func (s *Server) MarkReady(gameID string, playerID int, ready bool) error {
	var round *RoundState
	var answer *AnswerEntry
	shortened := false
	readyCount := 0
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		round = currentRound(game)
		if game.Phase != phasePlaying || round == nil || round.Phase != roundAnswering {
			return errConflict("not in answering phase")
		}
		if !game.Settings.ReadyCheck {
			return errConflict("ready check is disabled")
		}
		if game.activeMember(playerID) == nil {
			return errNotFound("player not in game")
		}
		answer = round.answerBy(playerID)
		if answer == nil {
			return errConflict("submit an answer first")
		}
		answer.Ready = ready
		for i := range round.Answers {
			if round.Answers[i].Ready {
				readyCount++
			}
		}
		shortened = clampIfAllReady(game, round)
		return nil
	})
	if err != nil {
		return err
	}
	s.persistAnswer(game, round, answer)
	if shortened {
		s.scheduleAnswerDeadline(game, round)
		s.publish(game.ID, eventAnswersReady, EventPayload{RoundNumber: round.Number, Count: readyCount})
	}
	return nil
}

// StartVoting moves the current round from answering to voting and fixes the
// anonymous answer order for the whole phase via a fresh shuffle seed.
func (s *Server) StartVoting(gameID string, actorID int) error {
	return s.startVoting(gameID, actorID, 0)
}

// startVoting with a non-zero expectedNumber is the forced deadline path: it
// silently no-ops when the game moved on while the timer was in flight.
func (s *Server) startVoting(gameID string, actorID, expectedNumber int) error {
	forced := expectedNumber != 0
	seed := s.randInt63()
	var round *RoundState
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		round = currentRound(game)
		if game.Phase != phasePlaying || round == nil || round.Phase != roundAnswering ||
			(forced && round.Number != expectedNumber) {
			if forced {
				round = nil
				return nil
			}
			return errConflict("not in answering phase")
		}
		if !game.isHostOrCoHost(actorID) {
			return errAuthorization("not host or co-host")
		}
		round.Phase = roundVoting
		round.VoteDeadline = timeNowUTC().Add(time.Duration(game.Settings.VoteSeconds) * time.Second)
		round.ShuffleSeed = seed
		return nil
	})
	if err != nil {
		return err
	}
	if round == nil {
		return nil
	}
	s.persistRoundPhase(game, round)
	s.scheduleVoteDeadline(game, round)
	s.publish(game.ID, eventVotingStarted, EventPayload{
		RoundNumber: round.Number,
		Count:       len(round.Answers),
		Deadline:    round.VoteDeadline.Format(time.RFC3339),
	})
	return nil
}

// shuffledAnswers returns the round's answers in the anonymous voting order:
// a deterministic permutation keyed by the round's shuffle seed, independent
// of submission order.
func shuffledAnswers(round *RoundState) []*AnswerEntry {
	ordered := make([]*AnswerEntry, 0, len(round.Answers))
	for i := range round.Answers {
		ordered = append(ordered, &round.Answers[i])
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].PlayerID < ordered[j].PlayerID
	})
	shuffle := rand.New(rand.NewSource(round.ShuffleSeed))
	shuffle.Shuffle(len(ordered), func(i, j int) {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	})
	return ordered
}

// SubmitVote records or retargets the voter's single active vote, addressed
// by position in the anonymous voting order.
func (s *Server) SubmitVote(gameID string, voterID, answerIndex int) error {
	var round *RoundState
	var vote *VoteEntry
	var count int
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		round = currentRound(game)
		if game.Phase != phasePlaying || round == nil || round.Phase != roundVoting {
			return errConflict("not in voting phase")
		}
		if game.activeMember(voterID) == nil {
			return errNotFound("player not in game")
		}
		ordered := shuffledAnswers(round)
		if answerIndex < 0 || answerIndex >= len(ordered) {
			return errNotFound("no such answer")
		}
		target := ordered[answerIndex]
		if target.PlayerID == voterID {
			return errAuthorization("cannot vote for your own answer")
		}
		if existing := round.voteBy(voterID); existing != nil {
			vote = existing
			if existing.AnswerPlayerID == target.PlayerID {
				count = len(round.Votes)
				return nil
			}
			limit := game.Settings.MaxVoteChanges
			if limit > 0 && existing.ChangeCount+1 > limit {
				return errConflict("vote change limit reached")
			}
			if previous := round.answerBy(existing.AnswerPlayerID); previous != nil {
				previous.VotesCount--
			}
			existing.AnswerPlayerID = target.PlayerID
			existing.ChangeCount++
			target.VotesCount++
			count = len(round.Votes)
			return nil
		}
		round.Votes = append(round.Votes, VoteEntry{
			VoterID:        voterID,
			AnswerPlayerID: target.PlayerID,
		})
		vote = &round.Votes[len(round.Votes)-1]
		target.VotesCount++
		count = len(round.Votes)
		return nil
	})
	if err != nil {
		return err
	}
	s.persistVote(game, round, vote)
	s.publish(game.ID, eventVoteCount, EventPayload{RoundNumber: round.Number, Count: count})
	return nil
}

// RetractVote removes the voter's active vote entirely. Distinct from the
// change cap: retracting is always allowed while voting is open.
func (s *Server) RetractVote(gameID string, voterID int) error {
	var round *RoundState
	var count int
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		round = currentRound(game)
		if game.Phase != phasePlaying || round == nil || round.Phase != roundVoting {
			return errConflict("not in voting phase")
		}
		vote := round.voteBy(voterID)
		if vote == nil {
			return errConflict("no vote to retract")
		}
		if target := round.answerBy(vote.AnswerPlayerID); target != nil {
			target.VotesCount--
		}
		for i := range round.Votes {
			if round.Votes[i].VoterID == voterID {
				round.Votes = append(round.Votes[:i], round.Votes[i+1:]...)
				break
			}
		}
		count = len(round.Votes)
		return nil
	})
	if err != nil {
		return err
	}
	s.deleteVote(game, round, voterID)
	s.publish(game.ID, eventVoteCount, EventPayload{RoundNumber: round.Number, Count: count})
	return nil
}

// CompleteRound closes voting, reveals identities, applies scores, archives
// the round winner, and either begins the next round or finishes the game.
func (s *Server) CompleteRound(gameID string, actorID int) error {
	return s.completeRound(gameID, actorID, 0)
}

func (s *Server) completeRound(gameID string, actorID, expectedNumber int) error {
	forced := expectedNumber != 0
	var round *RoundState
	var nextRound *RoundState
	var hof *hallOfFameCandidate
	finished := false
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		round = currentRound(game)
		if game.Phase != phasePlaying || round == nil || round.Phase != roundVoting ||
			(forced && round.Number != expectedNumber) {
			if forced {
				round = nil
				return nil
			}
			return errConflict("not in voting phase")
		}
		if !game.isHostOrCoHost(actorID) {
			return errAuthorization("not host or co-host")
		}
		round.Phase = roundCompleted
		applyRoundScores(game, round)
		hof = roundTopAnswer(game, round)
		if round.Number >= game.Settings.Rounds {
			finishGameLocked(game, finishReasonCompleted)
			finished = true
		} else {
			nextRound = s.beginRoundLocked(game)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if round == nil {
		return nil
	}
	s.persistRoundPhase(game, round)
	s.persistScores(game)
	s.persistRoundStats(game, round)
	if hof != nil {
		s.persistHallOfFame(game, round, hof)
	}
	s.publish(game.ID, eventRoundCompleted, EventPayload{RoundNumber: round.Number, Acronym: round.Acronym})
	if finished {
		s.afterFinish(game)
	} else {
		s.afterRoundStart(game, nextRound)
	}
	return nil
}
