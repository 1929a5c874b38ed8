package server

import (
	"sort"
	"time"
)

// snapshot builds the full game view for one viewer. Answer authorship is
// the sensitive part: during voting the answers appear in the shuffled
// anonymous order with only the viewer's own entry marked, and identities
// plus per-answer votes are revealed once the round completes.
func snapshot(game *Game, viewerID int) map[string]any {
	view := map[string]any{
		"id":           game.ID,
		"code":         game.Code,
		"phase":        game.Phase,
		"public":       game.Public,
		"has_password": game.PasswordHash != "",
		"host_id":      game.HostID,
		"settings":     game.Settings,
		"players":      buildPlayers(game),
		"created_at":   game.CreatedAt.Format(time.RFC3339),
	}
	if game.IdleWarned {
		view["idle_warned"] = true
	}
	if game.Settings.ChatEnabled && len(game.Chat) > 0 {
		view["chat"] = buildChat(game)
	}
	if round := currentRound(game); round != nil {
		view["round"] = buildRound(game, round, viewerID)
		view["round_number"] = round.Number
	}
	if game.Phase == phaseFinished {
		view["finish_reason"] = game.FinishReason
		if game.Result != nil {
			view["result"] = buildResult(game.Result)
		}
	}
	return view
}

func buildPlayers(game *Game) []map[string]any {
	players := make([]map[string]any, 0, len(game.Members))
	for i := range game.Members {
		member := &game.Members[i]
		if !member.Active && !member.Banned() {
			continue
		}
		entry := map[string]any{
			"id":      member.ID,
			"name":    member.Name,
			"score":   member.Score,
			"is_host": member.ID == game.HostID,
			"is_bot":  member.IsBot,
			"co_host": member.CoHost,
			"active":  member.Active,
		}
		if member.Banned() {
			entry["banned"] = true
		}
		players = append(players, entry)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i]["id"].(int) < players[j]["id"].(int)
	})
	return players
}

func buildRound(game *Game, round *RoundState, viewerID int) map[string]any {
	view := map[string]any{
		"number":  round.Number,
		"acronym": round.Acronym,
		"phase":   round.Phase,
	}
	switch round.Phase {
	case roundAnswering:
		view["answer_deadline"] = round.AnswerDeadline.Format(time.RFC3339)
		view["answers_submitted"] = len(round.Answers)
		if game.Settings.ReadyCheck {
			ready := 0
			for i := range round.Answers {
				if round.Answers[i].Ready {
					ready++
				}
			}
			view["answers_ready"] = ready
		}
		if answer := round.answerBy(viewerID); answer != nil {
			view["your_answer"] = map[string]any{
				"text":       answer.Text,
				"ready":      answer.Ready,
				"edit_count": answer.EditCount,
			}
		}
	case roundVoting:
		view["vote_deadline"] = round.VoteDeadline.Format(time.RFC3339)
		view["answers"] = buildAnonymousAnswers(round, viewerID)
		view["votes_submitted"] = len(round.Votes)
		if vote := round.voteBy(viewerID); vote != nil {
			for index, answer := range shuffledAnswers(round) {
				if answer.PlayerID == vote.AnswerPlayerID {
					view["your_vote"] = map[string]any{
						"answer_index": index,
						"change_count": vote.ChangeCount,
					}
					break
				}
			}
		}
	case roundCompleted:
		view["answers"] = buildRevealedAnswers(round)
	}
	if round.SourceText != "" && round.Phase == roundCompleted {
		view["source_sentence"] = round.SourceText
	}
	return view
}

func buildAnonymousAnswers(round *RoundState, viewerID int) []map[string]any {
	ordered := shuffledAnswers(round)
	answers := make([]map[string]any, 0, len(ordered))
	for index, answer := range ordered {
		entry := map[string]any{
			"index": index,
			"text":  answer.Text,
		}
		if answer.PlayerID == viewerID {
			entry["yours"] = true
		}
		answers = append(answers, entry)
	}
	return answers
}

func buildRevealedAnswers(round *RoundState) []map[string]any {
	ordered := shuffledAnswers(round)
	answers := make([]map[string]any, 0, len(ordered))
	for index, answer := range ordered {
		voters := make([]int, 0, answer.VotesCount)
		for _, vote := range round.Votes {
			if vote.AnswerPlayerID == answer.PlayerID {
				voters = append(voters, vote.VoterID)
			}
		}
		sort.Ints(voters)
		answers = append(answers, map[string]any{
			"index":       index,
			"text":        answer.Text,
			"player_id":   answer.PlayerID,
			"author_name": answer.AuthorName,
			"votes":       answer.VotesCount,
			"voter_ids":   voters,
		})
	}
	return answers
}

func buildChat(game *Game) []map[string]any {
	messages := make([]map[string]any, 0, len(game.Chat))
	for _, msg := range game.Chat {
		messages = append(messages, map[string]any{
			"player_id": msg.PlayerID,
			"name":      msg.Name,
			"text":      msg.Text,
			"sent_at":   msg.SentAt.Format(time.RFC3339),
		})
	}
	return messages
}

func buildResult(result *FinalResult) map[string]any {
	return map[string]any{
		"winner_name":      result.WinnerName,
		"scores":           result.Scores,
		"rounds_played":    result.RoundsPlayed,
		"player_count":     result.PlayerCount,
		"duration_seconds": result.DurationSeconds,
	}
}
