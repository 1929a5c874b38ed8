package server

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"gorm.io/gorm"

	"acromania/internal/acronym"
	"acromania/internal/config"
	appdb "acromania/internal/db"
)

type Server struct {
	store      *Store
	db         *gorm.DB
	cfg        config.Config
	gen        *acronym.Generator
	weighted   *acronym.WeightedSource
	bots       *acronym.BotAnswerer
	corpus     *appdb.CorpusStore
	ws         *wsHub
	publishers []Publisher

	timersMu   sync.Mutex
	timers     map[string]*time.Timer
	idleTimers map[string]*time.Timer

	randMu sync.Mutex
	rand   *rand.Rand
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	seed := time.Now().UnixNano()
	var corpus *appdb.CorpusStore
	if conn != nil {
		corpus = appdb.NewCorpusStore(conn, rand.NewSource(seed))
	}
	gen := acronym.NewGenerator(rand.NewSource(seed + 1))
	s := &Server{
		store:      NewStore(),
		db:         conn,
		cfg:        cfg,
		gen:        gen,
		bots:       acronym.NewBotAnswerer(corpusOrNil(corpus), rand.NewSource(seed+2)),
		corpus:     corpus,
		ws:         newWSHub(),
		timers:     make(map[string]*time.Timer),
		idleTimers: make(map[string]*time.Timer),
		rand:       rand.New(rand.NewSource(seed + 3)),
	}
	s.weighted = acronym.NewWeightedSource(corpusOrNil(corpus), gen)
	s.publishers = []Publisher{s.ws}
	return s
}

// corpusOrNil avoids handing a typed-nil *CorpusStore to an interface field.
func corpusOrNil(corpus *appdb.CorpusStore) acronym.Corpus {
	if corpus == nil {
		return nil
	}
	return corpus
}

// SetRandSource swaps every random stream for a deterministic one. Test use.
func (s *Server) SetRandSource(source rand.Source) {
	s.randMu.Lock()
	s.rand = rand.New(source)
	s.randMu.Unlock()
	seed := source.Int63()
	s.gen = acronym.NewGenerator(rand.NewSource(seed))
	s.bots = acronym.NewBotAnswerer(corpusOrNil(s.corpus), rand.NewSource(seed+1))
	s.weighted = acronym.NewWeightedSource(corpusOrNil(s.corpus), s.gen)
}

// AddPublisher registers an extra outbound event sink, e.g. the NATS bridge.
func (s *Server) AddPublisher(p Publisher) {
	s.publishers = append(s.publishers, p)
}

func (s *Server) randIntn(n int) int {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rand.Intn(n)
}

func (s *Server) randInt63() int64 {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rand.Int63()
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games/{id}", s.handleGameState)
	mux.HandleFunc("POST /api/games/{id}/join", s.handleJoin)
	mux.HandleFunc("POST /api/games/{id}/leave", s.handleLeave)
	mux.HandleFunc("POST /api/games/{id}/start", s.handleStart)
	mux.HandleFunc("POST /api/games/{id}/end", s.handleEnd)
	mux.HandleFunc("POST /api/games/{id}/settings", s.handleSettings)
	mux.HandleFunc("POST /api/games/{id}/kick", s.handleKick)
	mux.HandleFunc("POST /api/games/{id}/ban", s.handleBan)
	mux.HandleFunc("POST /api/games/{id}/unban", s.handleUnban)
	mux.HandleFunc("POST /api/games/{id}/cohost", s.handleCoHost)
	mux.HandleFunc("POST /api/games/{id}/bots", s.handleAddBot)
	mux.HandleFunc("POST /api/games/{id}/chat", s.handleChat)
	mux.HandleFunc("POST /api/games/{id}/keepalive", s.handleKeepalive)
	mux.HandleFunc("POST /api/games/{id}/answers", s.handleSubmitAnswer)
	mux.HandleFunc("POST /api/games/{id}/ready", s.handleReady)
	mux.HandleFunc("POST /api/games/{id}/voting", s.handleStartVoting)
	mux.HandleFunc("POST /api/games/{id}/votes", s.handleSubmitVote)
	mux.HandleFunc("DELETE /api/games/{id}/votes", s.handleRetractVote)
	mux.HandleFunc("POST /api/games/{id}/complete", s.handleCompleteRound)
	mux.HandleFunc("GET /api/hall-of-fame", s.handleHallOfFame)
	mux.HandleFunc("GET /ws/games/{id}", s.handleWebsocket)
	return mux
}
