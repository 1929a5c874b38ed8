package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	appdb "acromania/internal/db"
)

// The in-memory store is authoritative; the database is a mirror written
// after each committed change. Mirror failures are logged and never roll
// back game state, so every helper below swallows its own error.

func (s *Server) persistGame(game *Game) error {
	if s.db == nil {
		return nil
	}
	settings := game.Settings
	record := appdb.Game{
		Code:            game.Code,
		Phase:           game.Phase,
		Public:          game.Public,
		PasswordHash:    game.PasswordHash,
		TotalRounds:     settings.Rounds,
		AnswerSeconds:   settings.AnswerSeconds,
		VoteSeconds:     settings.VoteSeconds,
		AcronymMinLen:   settings.AcronymMinLen,
		AcronymMaxLen:   settings.AcronymMaxLen,
		ExcludedLetters: settings.ExcludedLetters,
		MaxAnswerEdits:  settings.MaxAnswerEdits,
		MaxVoteChanges:  settings.MaxVoteChanges,
		ChatEnabled:     settings.ChatEnabled,
		ReadyCheck:      settings.ReadyCheck,
		MaxPlayers:      settings.MaxPlayers,
		LastActivityAt:  game.LastActivityAt,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	game.DBID = record.ID
	newID := fmt.Sprintf("game-%d", record.ID)
	if game.ID != newID {
		s.store.UpdateGameID(game, newID)
	}
	s.persistEvent(game, "game_created", EventPayload{Code: game.Code})
	return nil
}

func (s *Server) ensureGameDBID(game *Game) {
	if s.db == nil || game.DBID != 0 {
		return
	}
	var record appdb.Game
	if err := s.db.Where("code = ?", game.Code).First(&record).Error; err != nil {
		return
	}
	game.DBID = record.ID
}

func (s *Server) persistMember(game *Game, member *Member) {
	if s.db == nil || member == nil {
		return
	}
	s.ensureGameDBID(game)
	if game.DBID == 0 {
		return
	}
	if member.DBID == 0 {
		record := appdb.Player{Nickname: member.Name, IsBot: member.IsBot}
		if err := s.db.Create(&record).Error; err != nil {
			log.Errorf("persist player failed game_id=%s player=%s: %v", game.ID, member.Name, err)
			return
		}
		member.DBID = record.ID
	}
	link := appdb.GamePlayer{
		GameID:   game.DBID,
		PlayerID: member.DBID,
		Score:    member.Score,
		Active:   member.Active,
		CoHost:   member.CoHost,
		JoinedAt: member.JoinedAt,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}, {Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "active", "co_host", "updated_at"}),
	}).Create(&link).Error
	if err != nil && !isUniqueViolation(err) {
		log.Errorf("persist membership failed game_id=%s player=%s: %v", game.ID, member.Name, err)
		return
	}
	s.persistEvent(game, "player_joined", EventPayload{PlayerName: member.Name, PlayerID: member.ID})
}

// persistMembership mirrors moderation state changes on an existing link row.
func (s *Server) persistMembership(game *Game, playerID int) {
	if s.db == nil || game.DBID == 0 {
		return
	}
	member := game.member(playerID)
	if member == nil || member.DBID == 0 {
		return
	}
	updates := map[string]any{
		"active":     member.Active,
		"co_host":    member.CoHost,
		"score":      member.Score,
		"ban_reason": member.BanReason,
	}
	updates["kicked_by_id"] = memberDBIDOrNil(game, member.KickedBy)
	updates["banned_by_id"] = memberDBIDOrNil(game, member.BannedBy)
	err := s.db.Model(&appdb.GamePlayer{}).
		Where("game_id = ? AND player_id = ?", game.DBID, member.DBID).
		Updates(updates).Error
	if err != nil {
		log.Errorf("persist membership failed game_id=%s player=%s: %v", game.ID, member.Name, err)
	}
}

func memberDBIDOrNil(game *Game, playerID int) *uint {
	if playerID <= 0 {
		return nil
	}
	member := game.member(playerID)
	if member == nil || member.DBID == 0 {
		return nil
	}
	id := member.DBID
	return &id
}

func (s *Server) persistRound(game *Game, round *RoundState) {
	if s.db == nil || round == nil || round.DBID != 0 {
		return
	}
	s.ensureGameDBID(game)
	if game.DBID == 0 {
		return
	}
	deadline := round.AnswerDeadline
	record := appdb.Round{
		GameID:         game.DBID,
		Number:         round.Number,
		Acronym:        round.Acronym,
		Phase:          round.Phase,
		AnswerDeadline: &deadline,
	}
	if round.SourceID != 0 {
		id := round.SourceID
		record.SourceSentenceID = &id
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			var existing appdb.Round
			if s.db.Where("game_id = ? AND number = ?", game.DBID, round.Number).First(&existing).Error == nil {
				round.DBID = existing.ID
			}
			return
		}
		log.Errorf("persist round failed game_id=%s round=%d: %v", game.ID, round.Number, err)
		return
	}
	round.DBID = record.ID
	if err := s.db.Model(&appdb.Game{}).Where("id = ?", game.DBID).Update("current_round", round.Number).Error; err != nil {
		log.Errorf("persist current round failed game_id=%s: %v", game.ID, err)
	}
}

func (s *Server) persistRoundPhase(game *Game, round *RoundState) {
	if s.db == nil || round == nil {
		return
	}
	if round.DBID == 0 {
		s.persistRound(game, round)
	}
	if round.DBID == 0 {
		return
	}
	updates := map[string]any{"phase": round.Phase}
	if !round.VoteDeadline.IsZero() {
		deadline := round.VoteDeadline
		updates["vote_deadline"] = &deadline
	}
	if err := s.db.Model(&appdb.Round{}).Where("id = ?", round.DBID).Updates(updates).Error; err != nil {
		log.Errorf("persist round phase failed game_id=%s round=%d: %v", game.ID, round.Number, err)
	}
}

func (s *Server) persistAnswer(game *Game, round *RoundState, answer *AnswerEntry) {
	if s.db == nil || round == nil || answer == nil {
		return
	}
	if round.DBID == 0 {
		s.persistRound(game, round)
	}
	member := game.member(answer.PlayerID)
	if round.DBID == 0 || member == nil || member.DBID == 0 {
		return
	}
	record := appdb.Answer{
		RoundID:    round.DBID,
		PlayerID:   member.DBID,
		Text:       answer.Text,
		AuthorName: answer.AuthorName,
		Ready:      answer.Ready,
		EditCount:  answer.EditCount,
		VotesCount: answer.VotesCount,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "round_id"}, {Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"text", "ready", "edit_count", "votes_count", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		log.Errorf("persist answer failed game_id=%s round=%d: %v", game.ID, round.Number, err)
		return
	}
	answer.DBID = record.ID
}

func (s *Server) persistVote(game *Game, round *RoundState, vote *VoteEntry) {
	if s.db == nil || round == nil || vote == nil || round.DBID == 0 {
		return
	}
	voter := game.member(vote.VoterID)
	answer := round.answerBy(vote.AnswerPlayerID)
	if voter == nil || voter.DBID == 0 || answer == nil || answer.DBID == 0 {
		return
	}
	record := appdb.Vote{
		RoundID:     round.DBID,
		VoterID:     voter.DBID,
		AnswerID:    answer.DBID,
		ChangeCount: vote.ChangeCount,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "round_id"}, {Name: "voter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"answer_id", "change_count", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		log.Errorf("persist vote failed game_id=%s round=%d: %v", game.ID, round.Number, err)
		return
	}
	vote.DBID = record.ID
	// Mirror the denormalized tallies the vote just moved.
	for i := range round.Answers {
		entry := &round.Answers[i]
		if entry.DBID == 0 {
			continue
		}
		if err := s.db.Model(&appdb.Answer{}).Where("id = ?", entry.DBID).Update("votes_count", entry.VotesCount).Error; err != nil {
			log.Errorf("persist vote count failed game_id=%s round=%d: %v", game.ID, round.Number, err)
		}
	}
}

func (s *Server) deleteVote(game *Game, round *RoundState, voterID int) {
	if s.db == nil || round == nil || round.DBID == 0 {
		return
	}
	voter := game.member(voterID)
	if voter == nil || voter.DBID == 0 {
		return
	}
	if err := s.db.Where("round_id = ? AND voter_id = ?", round.DBID, voter.DBID).Delete(&appdb.Vote{}).Error; err != nil {
		log.Errorf("delete vote failed game_id=%s round=%d: %v", game.ID, round.Number, err)
		return
	}
	for i := range round.Answers {
		entry := &round.Answers[i]
		if entry.DBID == 0 {
			continue
		}
		if err := s.db.Model(&appdb.Answer{}).Where("id = ?", entry.DBID).Update("votes_count", entry.VotesCount).Error; err != nil {
			log.Errorf("persist vote count failed game_id=%s round=%d: %v", game.ID, round.Number, err)
		}
	}
}

func (s *Server) persistScores(game *Game) {
	if s.db == nil || game.DBID == 0 {
		return
	}
	for i := range game.Members {
		member := &game.Members[i]
		if member.DBID == 0 {
			continue
		}
		err := s.db.Model(&appdb.GamePlayer{}).
			Where("game_id = ? AND player_id = ?", game.DBID, member.DBID).
			Update("score", member.Score).Error
		if err != nil {
			log.Errorf("persist score failed game_id=%s player=%s: %v", game.ID, member.Name, err)
		}
	}
}

func (s *Server) persistRoundStats(game *Game, round *RoundState) {
	if s.db == nil {
		return
	}
	for i := range round.Answers {
		answer := &round.Answers[i]
		member := game.member(answer.PlayerID)
		if member == nil || member.DBID == 0 || member.IsBot {
			continue
		}
		stat := appdb.PlayerStat{
			PlayerID:      member.DBID,
			RoundsPlayed:  1,
			VotesReceived: answer.VotesCount,
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "player_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"rounds_played":  gorm.Expr("player_stats.rounds_played + 1"),
				"votes_received": gorm.Expr("player_stats.votes_received + ?", answer.VotesCount),
			}),
		}).Create(&stat).Error
		if err != nil {
			log.Errorf("persist round stats failed game_id=%s player=%s: %v", game.ID, member.Name, err)
		}
	}
}

func (s *Server) persistHallOfFame(game *Game, round *RoundState, hof *hallOfFameCandidate) {
	if s.db == nil || round == nil || round.DBID == 0 || game.DBID == 0 {
		return
	}
	voters, err := json.Marshal(hof.VoterNames)
	if err != nil {
		return
	}
	entry := appdb.HallOfFameEntry{
		GameID:     game.DBID,
		RoundID:    round.DBID,
		Acronym:    round.Acronym,
		Sentence:   hof.Answer.Text,
		AuthorName: hof.Answer.AuthorName,
		VotesCount: hof.Answer.VotesCount,
		VoterNames: datatypes.JSON(voters),
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
		log.Errorf("persist hall of fame failed game_id=%s round=%d: %v", game.ID, round.Number, err)
		return
	}
	if member := game.member(hof.Answer.PlayerID); member != nil && member.DBID != 0 && !member.IsBot {
		stat := appdb.PlayerStat{
			PlayerID:     member.DBID,
			RoundsWon:    1,
			BestSentence: hof.Answer.Text,
			BestVotes:    hof.Answer.VotesCount,
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "player_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"rounds_won": gorm.Expr("player_stats.rounds_won + 1"),
				"best_sentence": gorm.Expr(
					"CASE WHEN ? > player_stats.best_votes THEN ? ELSE player_stats.best_sentence END",
					hof.Answer.VotesCount, hof.Answer.Text),
				"best_votes": gorm.Expr("GREATEST(player_stats.best_votes, ?)", hof.Answer.VotesCount),
			}),
		}).Create(&stat).Error
		if err != nil {
			log.Errorf("persist round winner stats failed game_id=%s player=%s: %v", game.ID, member.Name, err)
		}
	}
	if s.corpus != nil {
		if err := s.corpus.AddSentence(hof.Answer.Text, hof.Answer.VotesCount); err != nil {
			log.Warnf("corpus add failed game_id=%s round=%d: %v", game.ID, round.Number, err)
		}
	}
}

func (s *Server) persistResult(game *Game) {
	if s.db == nil || game.Result == nil {
		return
	}
	s.ensureGameDBID(game)
	if game.DBID == 0 {
		return
	}
	scores, err := json.Marshal(game.Result.Scores)
	if err != nil {
		return
	}
	record := appdb.GameResult{
		GameID:          game.DBID,
		WinnerName:      game.Result.WinnerName,
		Scores:          datatypes.JSON(scores),
		RoundsPlayed:    game.Result.RoundsPlayed,
		PlayerCount:     game.Result.PlayerCount,
		DurationSeconds: game.Result.DurationSeconds,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		log.Errorf("persist result failed game_id=%s: %v", game.ID, err)
	}
}

func (s *Server) persistStats(game *Game) {
	if s.db == nil || game.Result == nil {
		return
	}
	for i := range game.Members {
		member := &game.Members[i]
		if member.DBID == 0 || member.IsBot {
			continue
		}
		won := 0
		if game.Result.WinnerName != "" && member.Name == game.Result.WinnerName {
			won = 1
		}
		stat := appdb.PlayerStat{
			PlayerID:    member.DBID,
			GamesPlayed: 1,
			GamesWon:    won,
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "player_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"games_played": gorm.Expr("player_stats.games_played + 1"),
				"games_won":    gorm.Expr("player_stats.games_won + ?", won),
			}),
		}).Create(&stat).Error
		if err != nil {
			log.Errorf("persist stats failed game_id=%s player=%s: %v", game.ID, member.Name, err)
		}
	}
}

func (s *Server) persistGamePhase(game *Game, eventType string, payload EventPayload) {
	if s.db == nil {
		return
	}
	s.ensureGameDBID(game)
	if game.DBID == 0 {
		return
	}
	updates := map[string]any{
		"phase":            game.Phase,
		"finish_reason":    game.FinishReason,
		"last_activity_at": game.LastActivityAt,
	}
	if !game.StartedAt.IsZero() {
		started := game.StartedAt
		updates["started_at"] = &started
	}
	if !game.FinishedAt.IsZero() {
		finished := game.FinishedAt
		updates["finished_at"] = &finished
	}
	if err := s.db.Model(&appdb.Game{}).Where("id = ?", game.DBID).Updates(updates).Error; err != nil {
		log.Errorf("persist game phase failed game_id=%s: %v", game.ID, err)
	}
	s.persistEvent(game, eventType, payload)
}

func (s *Server) persistSettings(game *Game) {
	if s.db == nil || game.DBID == 0 {
		return
	}
	settings := game.Settings
	updates := map[string]any{
		"public":           game.Public,
		"total_rounds":     settings.Rounds,
		"answer_seconds":   settings.AnswerSeconds,
		"vote_seconds":     settings.VoteSeconds,
		"acronym_min_len":  settings.AcronymMinLen,
		"acronym_max_len":  settings.AcronymMaxLen,
		"excluded_letters": settings.ExcludedLetters,
		"max_answer_edits": settings.MaxAnswerEdits,
		"max_vote_changes": settings.MaxVoteChanges,
		"chat_enabled":     settings.ChatEnabled,
		"ready_check":      settings.ReadyCheck,
		"max_players":      settings.MaxPlayers,
	}
	if err := s.db.Model(&appdb.Game{}).Where("id = ?", game.DBID).Updates(updates).Error; err != nil {
		log.Errorf("persist settings failed game_id=%s: %v", game.ID, err)
		return
	}
	s.persistEvent(game, "settings_updated", EventPayload{})
}

func (s *Server) persistEvent(game *Game, eventType string, payload EventPayload) {
	if s.db == nil || game.DBID == 0 {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	event := appdb.Event{
		GameID:   game.DBID,
		RoundID:  eventRoundID(game),
		PlayerID: memberDBIDOrNil(game, payload.PlayerID),
		Type:     eventType,
		Payload:  datatypes.JSON(data),
	}
	if err := s.db.Create(&event).Error; err != nil {
		log.Errorf("persist event failed game_id=%s type=%s: %v", game.ID, eventType, err)
	}
}

func eventRoundID(game *Game) *uint {
	round := currentRound(game)
	if round == nil || round.DBID == 0 {
		return nil
	}
	id := round.DBID
	return &id
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
