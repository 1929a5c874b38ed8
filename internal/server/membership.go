package server

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CreateGame creates a lobby with the caller as host. Omitted settings fall
// back to server defaults; a non-empty password is stored hashed only.
func (s *Server) CreateGame(hostName string, patch SettingsPatch, public bool, password string) (*Game, *Member, error) {
	name, err := validateNickname(hostName)
	if err != nil {
		return nil, nil, err
	}
	settings := applyPatch(defaultSettings(s.cfg), patch)
	if err := validateSettings(settings); err != nil {
		return nil, nil, err
	}
	passwordHash := ""
	if password != "" {
		passwordHash, err = hashPassword(password)
		if err != nil {
			return nil, nil, err
		}
	}

	game := s.store.CreateGame(settings, public, passwordHash)
	host := Member{
		ID:       s.store.NextMemberID(),
		Name:     name,
		Token:    uuid.NewString(),
		Active:   true,
		JoinedAt: timeNowUTC(),
	}
	var member *Member
	game, err = s.store.UpdateGame(game.ID, func(game *Game) error {
		game.Members = append(game.Members, host)
		game.HostID = host.ID
		member = &game.Members[0]
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.persistGame(game); err != nil {
		log.Errorf("persist game failed game_id=%s: %v", game.ID, err)
	}
	s.persistMember(game, member)
	s.scheduleIdleTimer(game)
	log.Infof("game created game_id=%s code=%s host=%s", game.ID, game.Code, member.Name)
	return game, member, nil
}

// Join adds a player to the lobby, or reactivates a previous membership.
// A kicked member may rejoin; a banned one may not until unbanned.
func (s *Server) Join(idOrCode, playerName, password string) (*Game, *Member, error) {
	name, err := validateNickname(playerName)
	if err != nil {
		return nil, nil, err
	}
	game, ok := s.store.ResolveGame(idOrCode)
	if !ok {
		return nil, nil, errNotFound("game not found")
	}

	var member *Member
	joined := false
	// Allocated outside the closure; NextMemberID takes the store lock.
	newID := s.store.NextMemberID()
	game, err = s.store.UpdateGame(game.ID, func(game *Game) error {
		if game.Phase == phaseFinished {
			return errConflict("game already finished")
		}
		for i := range game.Members {
			if !strings.EqualFold(game.Members[i].Name, name) {
				continue
			}
			existing := &game.Members[i]
			if existing.Banned() {
				return errConflict("you are banned from this game: %s", existing.BanReason)
			}
			if existing.Active {
				return errConflict("name already taken")
			}
			if game.activeCount() >= game.Settings.MaxPlayers {
				return errConflict("game is full")
			}
			if err := checkPassword(game, password); err != nil {
				return err
			}
			existing.Active = true
			existing.Kicked = false
			existing.KickedBy = 0
			member = existing
			joined = true
			touchGame(game)
			return nil
		}
		if game.Phase != phaseLobby {
			return errConflict("game already started")
		}
		if game.activeCount() >= game.Settings.MaxPlayers {
			return errConflict("game is full")
		}
		if err := checkPassword(game, password); err != nil {
			return err
		}
		game.Members = append(game.Members, Member{
			ID:       newID,
			Name:     name,
			Token:    uuid.NewString(),
			Active:   true,
			JoinedAt: timeNowUTC(),
		})
		member = &game.Members[len(game.Members)-1]
		joined = true
		touchGame(game)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if joined {
		s.persistMember(game, member)
		s.scheduleIdleTimer(game)
		s.publish(game.ID, eventPlayerJoined, EventPayload{PlayerName: member.Name, PlayerID: member.ID})
	}
	return game, member, nil
}

func checkPassword(game *Game, password string) error {
	if game.PasswordHash == "" {
		return nil
	}
	if !verifyPassword(game.PasswordHash, password) {
		return errAuthorization("wrong password")
	}
	return nil
}

// Leave deactivates the membership. If the host leaves, host authority moves
// to the longest-joined active member, co-hosts first; an emptied game is
// finished outright.
func (s *Server) Leave(gameID string, playerID int) error {
	var leftName string
	emptied := false
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		member := game.activeMember(playerID)
		if member == nil {
			return errNotFound("player not in game")
		}
		member.Active = false
		leftName = member.Name
		touchGame(game)
		if game.HostID == member.ID {
			if next := nextHost(game); next != nil {
				game.HostID = next.ID
				next.CoHost = false
			} else {
				finishGameLocked(game, finishReasonAbandoned)
				emptied = true
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.persistMembership(game, playerID)
	s.publish(game.ID, eventPlayerLeft, EventPayload{PlayerName: leftName, PlayerID: playerID})
	if emptied {
		s.afterFinish(game)
	} else {
		s.scheduleIdleTimer(game)
	}
	return nil
}

func nextHost(game *Game) *Member {
	var candidate *Member
	for i := range game.Members {
		m := &game.Members[i]
		if !m.Active || m.IsBot {
			continue
		}
		if candidate == nil ||
			(m.CoHost && !candidate.CoHost) ||
			(m.CoHost == candidate.CoHost && m.JoinedAt.Before(candidate.JoinedAt)) {
			candidate = m
		}
	}
	return candidate
}

// Kick deactivates a member. Kicking someone who already left is a benign
// no-op so a simultaneous leave and kick cannot fail the host's request.
func (s *Server) Kick(gameID string, actorID, targetID int) error {
	var targetName string
	noop := false
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if err := authorizeModeration(game, actorID, targetID); err != nil {
			return err
		}
		target := game.member(targetID)
		if target == nil || !target.Active {
			noop = true
			return nil
		}
		target.Active = false
		target.Kicked = true
		target.KickedBy = actorID
		targetName = target.Name
		touchGame(game)
		return nil
	})
	if err != nil {
		return err
	}
	if noop {
		return nil
	}
	s.persistMembership(game, targetID)
	s.scheduleIdleTimer(game)
	s.publish(game.ID, eventPlayerKicked, EventPayload{TargetName: targetName, TargetID: targetID, PlayerID: actorID})
	return nil
}

// Ban is a kick that also blocks rejoining until unbanned.
func (s *Server) Ban(gameID string, actorID, targetID int, reason string) error {
	var targetName string
	noop := false
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if err := authorizeModeration(game, actorID, targetID); err != nil {
			return err
		}
		target := game.member(targetID)
		if target == nil {
			noop = true
			return nil
		}
		if target.Banned() {
			return errConflict("player already banned")
		}
		target.Active = false
		target.BannedBy = actorID
		target.BanReason = strings.TrimSpace(reason)
		targetName = target.Name
		touchGame(game)
		return nil
	})
	if err != nil {
		return err
	}
	if noop {
		return nil
	}
	s.persistMembership(game, targetID)
	s.scheduleIdleTimer(game)
	s.publish(game.ID, eventPlayerBanned, EventPayload{TargetName: targetName, TargetID: targetID, PlayerID: actorID, Reason: reason})
	return nil
}

// Unban lifts a ban. Host only, and only while the game is in the lobby.
func (s *Server) Unban(gameID string, actorID, targetID int) error {
	var targetName string
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.HostID != actorID {
			return errAuthorization("only the host can unban")
		}
		if game.Phase != phaseLobby {
			return errConflict("not in lobby phase")
		}
		target := game.member(targetID)
		if target == nil {
			return errNotFound("player not in game")
		}
		if !target.Banned() {
			return errConflict("player is not banned")
		}
		target.BannedBy = 0
		target.BanReason = ""
		targetName = target.Name
		touchGame(game)
		return nil
	})
	if err != nil {
		return err
	}
	s.persistMembership(game, targetID)
	s.scheduleIdleTimer(game)
	s.publish(game.ID, eventPlayerUnbanned, EventPayload{TargetName: targetName, TargetID: targetID, PlayerID: actorID})
	return nil
}

// authorizeModeration guards kick and ban: host or co-host acting on
// someone else, never on the host, and only the host may act on a co-host.
func authorizeModeration(game *Game, actorID, targetID int) error {
	if !game.isHostOrCoHost(actorID) {
		return errAuthorization("not host or co-host")
	}
	if targetID == actorID {
		return errAuthorization("cannot act on yourself")
	}
	if targetID == game.HostID {
		return errAuthorization("cannot act on the host")
	}
	if target := game.member(targetID); target != nil && target.CoHost && actorID != game.HostID {
		return errAuthorization("only the host can act on a co-host")
	}
	return nil
}

// ToggleCoHost flips the delegated flag on a member. Host only.
func (s *Server) ToggleCoHost(gameID string, actorID, targetID int) error {
	var targetName string
	var coHost bool
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.HostID != actorID {
			return errAuthorization("only the host can change co-hosts")
		}
		if targetID == actorID {
			return errAuthorization("cannot act on yourself")
		}
		target := game.activeMember(targetID)
		if target == nil {
			return errNotFound("player not in game")
		}
		target.CoHost = !target.CoHost
		targetName = target.Name
		coHost = target.CoHost
		touchGame(game)
		return nil
	})
	if err != nil {
		return err
	}
	s.persistMembership(game, targetID)
	s.scheduleIdleTimer(game)
	s.publish(game.ID, eventCoHostChanged, EventPayload{TargetName: targetName, TargetID: targetID, Count: boolToInt(coHost)})
	return nil
}

// Bot names in the avvvet tradition: plain first names, a few full ones.
var botNames = []string{
	"Abe", "Meron", "Dawit", "Ted", "Liya",
	"Bereket", "Eden", "Samuel", "Rahel", "Natan",
}

// AddBot seats a bot member in the lobby.
func (s *Server) AddBot(gameID string, actorID int) (*Member, error) {
	var member *Member
	botID := s.store.NextMemberID()
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if !game.isHostOrCoHost(actorID) {
			return errAuthorization("not host or co-host")
		}
		if game.Phase != phaseLobby {
			return errConflict("not in lobby phase")
		}
		if game.activeCount() >= game.Settings.MaxPlayers {
			return errConflict("game is full")
		}
		name := s.pickBotName(game)
		game.Members = append(game.Members, Member{
			ID:       botID,
			Name:     name,
			IsBot:    true,
			Active:   true,
			JoinedAt: timeNowUTC(),
		})
		member = &game.Members[len(game.Members)-1]
		touchGame(game)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistMember(game, member)
	s.scheduleIdleTimer(game)
	s.publish(game.ID, eventPlayerJoined, EventPayload{PlayerName: member.Name, PlayerID: member.ID})
	return member, nil
}

func (s *Server) pickBotName(game *Game) string {
	taken := func(name string) bool {
		for i := range game.Members {
			if strings.EqualFold(game.Members[i].Name, name) {
				return true
			}
		}
		return false
	}
	start := s.randIntn(len(botNames))
	for offset := 0; offset < len(botNames); offset++ {
		name := botNames[(start+offset)%len(botNames)]
		if !taken(name) {
			return name
		}
	}
	for suffix := 2; ; suffix++ {
		name := fmt.Sprintf("%s-%d", botNames[start], suffix)
		if !taken(name) {
			return name
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
