package server

import "sort"

// applyRoundScores adds one point to an answer's author per vote it
// received. Self-votes cannot exist; submission already rejects them.
func applyRoundScores(game *Game, round *RoundState) {
	for i := range round.Answers {
		answer := &round.Answers[i]
		if answer.VotesCount == 0 {
			continue
		}
		if member := game.member(answer.PlayerID); member != nil {
			member.Score += answer.VotesCount
		}
	}
}

type hallOfFameCandidate struct {
	Answer     AnswerEntry
	VoterNames []string
}

// roundTopAnswer picks the round's winning answer: the unique answer with
// the most votes, at least one. A tie at the top means no round winner and
// no hall-of-fame entry.
func roundTopAnswer(game *Game, round *RoundState) *hallOfFameCandidate {
	var top *AnswerEntry
	tied := false
	for i := range round.Answers {
		answer := &round.Answers[i]
		if answer.VotesCount == 0 {
			continue
		}
		switch {
		case top == nil || answer.VotesCount > top.VotesCount:
			top = answer
			tied = false
		case answer.VotesCount == top.VotesCount:
			tied = true
		}
	}
	if top == nil || tied {
		return nil
	}
	names := make([]string, 0, top.VotesCount)
	for _, vote := range round.Votes {
		if vote.AnswerPlayerID != top.PlayerID {
			continue
		}
		if voter := voterName(game, round, vote.VoterID); voter != "" {
			names = append(names, voter)
		}
	}
	sort.Strings(names)
	return &hallOfFameCandidate{Answer: *top, VoterNames: names}
}

// voterName resolves a voter's nickname from their own answer snapshot when
// present, falling back to the membership record for voters who never
// submitted an answer this round.
func voterName(game *Game, round *RoundState, playerID int) string {
	if answer := round.answerBy(playerID); answer != nil {
		return answer.AuthorName
	}
	if member := game.member(playerID); member != nil {
		return member.Name
	}
	return ""
}

// buildFinalResult freezes the final standings. A shared maximum score is a
// tie: no winner name and no winner flags, rather than flagging everyone.
func buildFinalResult(game *Game) *FinalResult {
	maxScore := 0
	rows := make([]ScoreRow, 0, len(game.Members))
	for i := range game.Members {
		member := &game.Members[i]
		if member.Banned() || (member.Kicked && !member.Active) {
			continue
		}
		rows = append(rows, ScoreRow{
			PlayerID: member.ID,
			Name:     member.Name,
			Score:    member.Score,
		})
		if member.Score > maxScore {
			maxScore = member.Score
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Name < rows[j].Name
	})

	winners := 0
	winnerName := ""
	for i := range rows {
		if maxScore > 0 && rows[i].Score == maxScore {
			winners++
			winnerName = rows[i].Name
		}
	}
	result := &FinalResult{
		Scores:       rows,
		RoundsPlayed: len(game.Rounds),
		PlayerCount:  len(rows),
	}
	if !game.StartedAt.IsZero() {
		result.DurationSeconds = int(timeNowUTC().Sub(game.StartedAt).Seconds())
	}
	if winners == 1 {
		result.WinnerName = winnerName
		for i := range rows {
			if rows[i].Score == maxScore {
				result.Scores[i].IsWinner = true
			}
		}
	}
	return result
}
