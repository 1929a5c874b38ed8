package server

import (
	"net/http"
	"strconv"

	appdb "acromania/internal/db"
)

type createGameRequest struct {
	Name     string        `json:"name"`
	Settings SettingsPatch `json:"settings"`
	Public   *bool         `json:"public"`
	Password string        `json:"password"`
}

type joinRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type actorRequest struct {
	PlayerID int    `json:"player_id"`
	Token    string `json:"token"`
}

type targetRequest struct {
	PlayerID int    `json:"player_id"`
	Token    string `json:"token"`
	TargetID int    `json:"target_id"`
	Reason   string `json:"reason"`
}

type settingsRequest struct {
	PlayerID int           `json:"player_id"`
	Token    string        `json:"token"`
	Settings SettingsPatch `json:"settings"`
}

type endRequest struct {
	PlayerID int    `json:"player_id"`
	Token    string `json:"token"`
	Reason   string `json:"reason"`
}

type chatRequest struct {
	PlayerID int    `json:"player_id"`
	Token    string `json:"token"`
	Text     string `json:"text"`
}

type answerRequest struct {
	PlayerID int    `json:"player_id"`
	Token    string `json:"token"`
	Text     string `json:"text"`
}

type readyRequest struct {
	PlayerID int    `json:"player_id"`
	Token    string `json:"token"`
	Ready    *bool  `json:"ready"`
}

type voteRequest struct {
	PlayerID    int    `json:"player_id"`
	Token       string `json:"token"`
	AnswerIndex int    `json:"answer_index"`
}

// resolveActor checks that the caller owns the membership they claim. Bots
// carry no token, so nobody can act as one.
func (s *Server) resolveActor(gameID string, playerID int, token string) error {
	_, member, ok := s.store.GetMember(gameID, playerID)
	if !ok {
		return errNotFound("player not in game")
	}
	if member.Token == "" || member.Token != token {
		return errAuthorization("invalid player token")
	}
	return nil
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	summaries := s.store.ListGameSummaries()
	games := make([]map[string]any, 0, len(summaries))
	for _, summary := range summaries {
		if !summary.Public {
			continue
		}
		games = append(games, map[string]any{
			"id":      summary.ID,
			"code":    summary.Code,
			"phase":   summary.Phase,
			"players": summary.Players,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	public := true
	if req.Public != nil {
		public = *req.Public
	}
	game, host, err := s.CreateGame(req.Name, req.Settings, public, req.Password)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"game_id":   game.ID,
		"code":      game.Code,
		"player_id": host.ID,
		"token":     host.Token,
	})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	game, ok := s.store.ResolveGame(gameID)
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	viewerID := 0
	if raw := r.URL.Query().Get("player_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err == nil && s.resolveActor(game.ID, id, r.URL.Query().Get("token")) == nil {
			viewerID = id
		}
	}
	var view map[string]any
	_, err := s.store.UpdateGame(game.ID, func(game *Game) error {
		view = snapshot(game, viewerID)
		return nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	game, member, err := s.Join(r.PathValue("id"), req.Name, req.Password)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id":   game.ID,
		"code":      game.Code,
		"player_id": member.ID,
		"token":     member.Token,
	})
}

// actorCall factors the shared shape of the simple authenticated actions:
// decode, verify the token, run the engine call, answer 204.
func (s *Server) actorCall(w http.ResponseWriter, r *http.Request, call func(gameID string, req actorRequest) error) {
	var req actorRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	gameID := r.PathValue("id")
	if err := s.resolveActor(gameID, req.PlayerID, req.Token); err != nil {
		writeEngineError(w, err)
		return
	}
	if err := call(gameID, req); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	s.actorCall(w, r, func(gameID string, req actorRequest) error {
		return s.Leave(gameID, req.PlayerID)
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.actorCall(w, r, func(gameID string, req actorRequest) error {
		return s.Start(gameID, req.PlayerID)
	})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req endRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	gameID := r.PathValue("id")
	if err := s.resolveActor(gameID, req.PlayerID, req.Token); err != nil {
		writeEngineError(w, err)
		return
	}
	if err := s.End(gameID, req.PlayerID, req.Reason); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	gameID := r.PathValue("id")
	if err := s.resolveActor(gameID, req.PlayerID, req.Token); err != nil {
		writeEngineError(w, err)
		return
	}
	if err := s.ApplySettings(gameID, req.PlayerID, req.Settings); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) moderationCall(w http.ResponseWriter, r *http.Request, call func(gameID string, req targetRequest) error) {
	var req targetRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	gameID := r.PathValue("id")
	if err := s.resolveActor(gameID, req.PlayerID, req.Token); err != nil {
		writeEngineError(w, err)
		return
	}
	if err := call(gameID, req); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleKick(w http.ResponseWriter, r *http.Request) {
	s.moderationCall(w, r, func(gameID string, req targetRequest) error {
		return s.Kick(gameID, req.PlayerID, req.TargetID)
	})
}

func (s *Server) handleBan(w http.ResponseWriter, r *http.Request) {
	s.moderationCall(w, r, func(gameID string, req targetRequest) error {
		return s.Ban(gameID, req.PlayerID, req.TargetID, req.Reason)
	})
}

func (s *Server) handleUnban(w http.ResponseWriter, r *http.Request) {
	s.moderationCall(w, r, func(gameID string, req targetRequest) error {
		return s.Unban(gameID, req.PlayerID, req.TargetID)
	})
}

func (s *Server) handleCoHost(w http.ResponseWriter, r *http.Request) {
	s.moderationCall(w, r, func(gameID string, req targetRequest) error {
		return s.ToggleCoHost(gameID, req.PlayerID, req.TargetID)
	})
}

func (s *Server) handleAddBot(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	gameID := r.PathValue("id")
	if err := s.resolveActor(gameID, req.PlayerID, req.Token); err != nil {
		writeEngineError(w, err)
		return
	}
	member, err := s.AddBot(gameID, req.PlayerID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"player_id": member.ID,
		"name":      member.Name,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	gameID := r.PathValue("id")
	if err := s.resolveActor(gameID, req.PlayerID, req.Token); err != nil {
		writeEngineError(w, err)
		return
	}
	if err := s.Chat(gameID, req.PlayerID, req.Text); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleKeepalive(w http.ResponseWriter, r *http.Request) {
	s.actorCall(w, r, func(gameID string, req actorRequest) error {
		return s.Keepalive(gameID)
	})
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	gameID := r.PathValue("id")
	if err := s.resolveActor(gameID, req.PlayerID, req.Token); err != nil {
		writeEngineError(w, err)
		return
	}
	if err := s.SubmitAnswer(gameID, req.PlayerID, req.Text); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	var req readyRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	gameID := r.PathValue("id")
	if err := s.resolveActor(gameID, req.PlayerID, req.Token); err != nil {
		writeEngineError(w, err)
		return
	}
	ready := true
	if req.Ready != nil {
		ready = *req.Ready
	}
	if err := s.MarkReady(gameID, req.PlayerID, ready); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartVoting(w http.ResponseWriter, r *http.Request) {
	s.actorCall(w, r, func(gameID string, req actorRequest) error {
		return s.StartVoting(gameID, req.PlayerID)
	})
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	gameID := r.PathValue("id")
	if err := s.resolveActor(gameID, req.PlayerID, req.Token); err != nil {
		writeEngineError(w, err)
		return
	}
	if err := s.SubmitVote(gameID, req.PlayerID, req.AnswerIndex); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRetractVote(w http.ResponseWriter, r *http.Request) {
	s.actorCall(w, r, func(gameID string, req actorRequest) error {
		return s.RetractVote(gameID, req.PlayerID)
	})
}

func (s *Server) handleCompleteRound(w http.ResponseWriter, r *http.Request) {
	s.actorCall(w, r, func(gameID string, req actorRequest) error {
		return s.CompleteRound(gameID, req.PlayerID)
	})
}

func (s *Server) handleHallOfFame(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusOK, map[string]any{"entries": []any{}})
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	query := s.db.Model(&appdb.HallOfFameEntry{}).Order("votes_count DESC, created_at DESC").Limit(limit)
	if acr := r.URL.Query().Get("acronym"); acr != "" {
		query = query.Where("acronym = ?", acr)
	}
	var records []appdb.HallOfFameEntry
	if err := query.Find(&records).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	entries := make([]map[string]any, 0, len(records))
	for _, record := range records {
		entries = append(entries, map[string]any{
			"acronym":     record.Acronym,
			"sentence":    record.Sentence,
			"author_name": record.AuthorName,
			"votes":       record.VotesCount,
			"created_at":  record.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
