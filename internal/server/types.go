package server

import "time"

const (
	phaseLobby    = "lobby"
	phasePlaying  = "playing"
	phaseFinished = "finished"
)

const (
	roundAnswering = "answering"
	roundVoting    = "voting"
	roundCompleted = "completed"
)

const (
	finishReasonCompleted  = "completed"
	finishReasonHostEnded  = "host-ended"
	finishReasonInactivity = "inactivity"
	finishReasonAbandoned  = "abandoned"
)

// actorSystem is the reserved actor id used by deadline and bot callbacks.
// It passes authorization checks but not phase guards.
const actorSystem = -1

type GameSummary struct {
	ID      string
	Code    string
	Phase   string
	Public  bool
	Players int
}

type Game struct {
	ID             string
	DBID           uint
	Code           string
	Phase          string
	Public         bool
	PasswordHash   string
	Settings       Settings
	HostID         int
	Members        []Member
	Rounds         []RoundState
	FinishReason   string
	IdleWarned     bool
	CreatedAt      time.Time
	StartedAt      time.Time
	FinishedAt     time.Time
	LastActivityAt time.Time
	Result         *FinalResult
	Chat           []ChatMessage
}

type Member struct {
	ID        int
	DBID      uint
	Name      string
	Token     string
	IsBot     bool
	CoHost    bool
	Active    bool
	Kicked    bool
	KickedBy  int
	BannedBy  int
	BanReason string
	Score     int
	JoinedAt  time.Time
}

func (m *Member) Banned() bool { return m.BannedBy != 0 }

type RoundState struct {
	Number         int
	DBID           uint
	Acronym        string
	SourceID       uint
	SourceText     string
	Phase          string
	AnswerDeadline time.Time
	VoteDeadline   time.Time
	ShuffleSeed    int64
	Answers        []AnswerEntry
	Votes          []VoteEntry
}

type AnswerEntry struct {
	PlayerID   int
	DBID       uint
	Text       string
	AuthorName string
	Ready      bool
	EditCount  int
	VotesCount int
}

type VoteEntry struct {
	VoterID        int
	DBID           uint
	AnswerPlayerID int
	ChangeCount    int
}

type ChatMessage struct {
	PlayerID int
	Name     string
	Text     string
	SentAt   time.Time
}

// ScoreRow is one player's line in a final result.
type ScoreRow struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	IsWinner bool   `json:"is_winner"`
}

// FinalResult summarises a finished game. WinnerName is empty on a tie and
// no row carries the winner flag in that case.
type FinalResult struct {
	WinnerName      string
	Scores          []ScoreRow
	RoundsPlayed    int
	PlayerCount     int
	DurationSeconds int
}

func (g *Game) member(id int) *Member {
	for i := range g.Members {
		if g.Members[i].ID == id {
			return &g.Members[i]
		}
	}
	return nil
}

func (g *Game) activeMember(id int) *Member {
	m := g.member(id)
	if m == nil || !m.Active {
		return nil
	}
	return m
}

func (g *Game) activeCount() int {
	count := 0
	for i := range g.Members {
		if g.Members[i].Active {
			count++
		}
	}
	return count
}

func (g *Game) isHostOrCoHost(id int) bool {
	if id == actorSystem {
		return true
	}
	m := g.activeMember(id)
	return m != nil && (m.ID == g.HostID || m.CoHost)
}

func currentRound(g *Game) *RoundState {
	if len(g.Rounds) == 0 {
		return nil
	}
	return &g.Rounds[len(g.Rounds)-1]
}

func (r *RoundState) answerBy(playerID int) *AnswerEntry {
	for i := range r.Answers {
		if r.Answers[i].PlayerID == playerID {
			return &r.Answers[i]
		}
	}
	return nil
}

func (r *RoundState) voteBy(voterID int) *VoteEntry {
	for i := range r.Votes {
		if r.Votes[i].VoterID == voterID {
			return &r.Votes[i]
		}
	}
	return nil
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
