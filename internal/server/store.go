package server

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Store is the authoritative in-memory game state. All mutations go through
// UpdateGame's closure under the store lock, so each game has a single
// writer at a time; the database mirror is written afterwards and its unique
// indexes act as the durable backstop.
type Store struct {
	mu           sync.Mutex
	nextID       int
	nextPlayerID int
	games        map[string]*Game
}

func NewStore() *Store {
	return &Store{
		nextID:       1,
		nextPlayerID: 1,
		games:        make(map[string]*Game),
	}
}

func (s *Store) CreateGame(settings Settings, public bool, passwordHash string) *Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("game-%d", s.nextID)
	s.nextID++
	game := &Game{
		ID:             id,
		Code:           newGameCode(),
		Phase:          phaseLobby,
		Public:         public,
		PasswordHash:   passwordHash,
		Settings:       settings,
		CreatedAt:      timeNowUTC(),
		LastActivityAt: timeNowUTC(),
	}
	s.games[id] = game
	return game
}

func (s *Store) GetGame(id string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	return game, ok
}

func (s *Store) UpdateGame(id string, update func(game *Game) error) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, errNotFound("game not found")
	}
	if err := update(game); err != nil {
		return nil, err
	}
	return game, nil
}

func (s *Store) FindGameByCode(code string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, game := range s.games {
		if strings.EqualFold(game.Code, code) {
			return game, true
		}
	}
	return nil, false
}

func (s *Store) ResolveGame(idOrCode string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game, ok := s.games[idOrCode]; ok {
		return game, true
	}
	for _, game := range s.games {
		if strings.EqualFold(game.Code, idOrCode) {
			return game, true
		}
	}
	return nil, false
}

func (s *Store) UpdateGameID(game *Game, newID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game.ID == newID {
		return
	}
	delete(s.games, game.ID)
	game.ID = newID
	s.games[newID] = game
}

// NextMemberID hands out process-unique player ids.
func (s *Store) NextMemberID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextPlayerID
	s.nextPlayerID++
	return id
}

func (s *Store) ListGameSummaries() []GameSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]GameSummary, 0, len(s.games))
	for _, game := range s.games {
		list = append(list, GameSummary{
			ID:      game.ID,
			Code:    game.Code,
			Phase:   game.Phase,
			Public:  game.Public,
			Players: game.activeCount(),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return gameSortKey(list[i].ID) < gameSortKey(list[j].ID)
	})
	return list
}

func gameSortKey(id string) int {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return 0
	}
	value, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return value
}

func (s *Store) GetMember(gameID string, playerID int) (*Game, *Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return nil, nil, false
	}
	member := game.member(playerID)
	if member == nil {
		return game, nil, false
	}
	return game, member, true
}
