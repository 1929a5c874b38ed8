package server

import (
	"testing"
	"time"

	"acromania/internal/config"
)

func TestStartNeedsTwoPlayersAndHost(t *testing.T) {
	srv := New(nil, config.Default())
	game, host, _ := srv.CreateGame("Ada", SettingsPatch{}, true, "")

	err := srv.Start(game.ID, host.ID)
	if kind, ok := KindOf(err); !ok || kind != KindConflict {
		t.Fatalf("expected conflict starting alone, got %v", err)
	}

	_, ben, _ := srv.Join(game.ID, "Ben", "")
	err = srv.Start(game.ID, ben.ID)
	if kind, ok := KindOf(err); !ok || kind != KindAuthorization {
		t.Fatalf("expected authorization error for non-host, got %v", err)
	}

	if err := srv.Start(game.ID, host.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	err = srv.Start(game.ID, host.ID)
	if kind, ok := KindOf(err); !ok || kind != KindConflict {
		t.Fatalf("expected conflict starting twice, got %v", err)
	}
}

func TestLiveSettingsAllowList(t *testing.T) {
	srv := New(nil, config.Default())
	game, host, _ := srv.CreateGame("Ada", SettingsPatch{}, true, "")
	srv.Join(game.ID, "Ben", "")
	if err := srv.Start(game.ID, host.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	off := false
	if err := srv.ApplySettings(game.ID, host.ID, SettingsPatch{ChatEnabled: &off}); err != nil {
		t.Fatalf("chat toggle should stay live: %v", err)
	}
	hidden := false
	if err := srv.ApplySettings(game.ID, host.ID, SettingsPatch{Public: &hidden}); err != nil {
		t.Fatalf("visibility should stay live: %v", err)
	}

	// A mixed patch is rejected as a whole, including its allowed fields.
	on := true
	ten := 10
	err := srv.ApplySettings(game.ID, host.ID, SettingsPatch{ChatEnabled: &on, Rounds: &ten})
	if kind, ok := KindOf(err); !ok || kind != KindConflict {
		t.Fatalf("expected conflict on mixed live patch, got %v", err)
	}
	srv.store.UpdateGame(game.ID, func(game *Game) error {
		if game.Settings.ChatEnabled {
			t.Fatalf("rejected patch must not apply any field")
		}
		return nil
	})
}

func TestSettingsValidation(t *testing.T) {
	srv := New(nil, config.Default())
	game, host, _ := srv.CreateGame("Ada", SettingsPatch{}, true, "")

	bad := 0
	err := srv.ApplySettings(game.ID, host.ID, SettingsPatch{Rounds: &bad})
	if kind, ok := KindOf(err); !ok || kind != KindValidation {
		t.Fatalf("expected validation error for zero rounds, got %v", err)
	}

	// Excluding most of the alphabet starves the generator.
	letters := "ABCDEFGHIJKLMNOPQRSTU"
	err = srv.ApplySettings(game.ID, host.ID, SettingsPatch{ExcludedLetters: &letters})
	if kind, ok := KindOf(err); !ok || kind != KindValidation {
		t.Fatalf("expected validation error for heavy exclusions, got %v", err)
	}

	minLen := 4
	maxLen := 3
	err = srv.ApplySettings(game.ID, host.ID, SettingsPatch{AcronymMinLen: &minLen, AcronymMaxLen: &maxLen})
	if kind, ok := KindOf(err); !ok || kind != KindValidation {
		t.Fatalf("expected validation error for inverted bounds, got %v", err)
	}
}

func TestEndGameEarly(t *testing.T) {
	srv := New(nil, config.Default())
	game, host, _ := srv.CreateGame("Ada", SettingsPatch{}, true, "")
	srv.Join(game.ID, "Ben", "")
	if err := srv.Start(game.ID, host.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := srv.End(game.ID, host.ID, ""); err != nil {
		t.Fatalf("end: %v", err)
	}
	srv.store.UpdateGame(game.ID, func(game *Game) error {
		if game.Phase != phaseFinished || game.FinishReason != finishReasonHostEnded {
			t.Fatalf("expected host-ended finish, got %s/%s", game.Phase, game.FinishReason)
		}
		if game.Result == nil {
			t.Fatalf("an early end of a started game still freezes a result")
		}
		return nil
	})

	err := srv.End(game.ID, host.ID, "")
	if kind, ok := KindOf(err); !ok || kind != KindConflict {
		t.Fatalf("expected conflict ending twice, got %v", err)
	}
}

func TestEndDuringVotingScoresTheRound(t *testing.T) {
	srv := New(nil, config.Default())
	gameID, hostID, benID := setupPlayingGame(t, srv)
	acr := currentAcronym(t, srv, gameID)
	for _, id := range []int{hostID, benID} {
		if err := srv.SubmitAnswer(gameID, id, answerFor(acr)); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if err := srv.StartVoting(gameID, hostID); err != nil {
		t.Fatalf("start voting: %v", err)
	}

	hostIndex := -1
	srv.store.UpdateGame(gameID, func(game *Game) error {
		for index, answer := range shuffledAnswers(currentRound(game)) {
			if answer.PlayerID == hostID {
				hostIndex = index
			}
		}
		return nil
	})
	if hostIndex < 0 {
		t.Fatalf("host answer missing from voting order")
	}
	if err := srv.SubmitVote(gameID, benID, hostIndex); err != nil {
		t.Fatalf("vote: %v", err)
	}

	if err := srv.End(gameID, hostID, ""); err != nil {
		t.Fatalf("end: %v", err)
	}
	srv.store.UpdateGame(gameID, func(game *Game) error {
		if game.Result == nil {
			t.Fatalf("expected a result")
		}
		if game.Result.WinnerName != "Ada" {
			t.Fatalf("the in-flight vote must count, got winner %q", game.Result.WinnerName)
		}
		if game.member(hostID).Score != 1 {
			t.Fatalf("expected 1 point for the voted answer, got %d", game.member(hostID).Score)
		}
		return nil
	})
}

func TestLobbyEndSkipsScoring(t *testing.T) {
	srv := New(nil, config.Default())
	game, host, _ := srv.CreateGame("Ada", SettingsPatch{}, true, "")
	if err := srv.End(game.ID, host.ID, ""); err != nil {
		t.Fatalf("end: %v", err)
	}
	srv.store.UpdateGame(game.ID, func(game *Game) error {
		if game.Result != nil {
			t.Fatalf("a lobby end must not produce a result")
		}
		return nil
	})
}

func TestChatRespectsToggle(t *testing.T) {
	srv := New(nil, config.Default())
	game, host, _ := srv.CreateGame("Ada", SettingsPatch{}, true, "")

	if err := srv.Chat(game.ID, host.ID, "hello"); err != nil {
		t.Fatalf("chat: %v", err)
	}
	off := false
	if err := srv.ApplySettings(game.ID, host.ID, SettingsPatch{ChatEnabled: &off}); err != nil {
		t.Fatalf("settings: %v", err)
	}
	err := srv.Chat(game.ID, host.ID, "still there?")
	if kind, ok := KindOf(err); !ok || kind != KindConflict {
		t.Fatalf("expected conflict with chat disabled, got %v", err)
	}
}

func TestNicknameValidation(t *testing.T) {
	srv := New(nil, config.Default())
	cases := []string{"", "   ", "way too long nickname for anyone", "bad\tname", "emoji 🎉"}
	for _, name := range cases {
		_, _, err := srv.CreateGame(name, SettingsPatch{}, true, "")
		if kind, ok := KindOf(err); !ok || kind != KindValidation {
			t.Fatalf("name %q: expected validation error, got %v", name, err)
		}
	}
	if _, _, err := srv.CreateGame("  Ada   Lovelace  ", SettingsPatch{}, true, ""); err != nil {
		t.Fatalf("whitespace should normalize, got %v", err)
	}
}

func TestIdleWarningThenFinishAndKeepaliveReset(t *testing.T) {
	cfg := config.Default()
	cfg.LobbyIdleWarnSeconds = 1
	cfg.LobbyIdleGraceSeconds = 1
	srv := New(nil, cfg)
	game, _, err := srv.CreateGame("Ada", SettingsPatch{}, true, "")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	waitFor(t, 3*time.Second, func() bool {
		warned := false
		srv.store.UpdateGame(game.ID, func(game *Game) error {
			warned = game.IdleWarned
			return nil
		})
		return warned
	})

	// A keepalive during the grace window clears the warning.
	if err := srv.Keepalive(game.ID); err != nil {
		t.Fatalf("keepalive: %v", err)
	}
	time.Sleep(1200 * time.Millisecond)
	srv.store.UpdateGame(game.ID, func(game *Game) error {
		if game.Phase == phaseFinished {
			t.Fatalf("keepalive must cancel the pending idle finish")
		}
		return nil
	})

	waitFor(t, 4*time.Second, func() bool {
		finished := false
		srv.store.UpdateGame(game.ID, func(game *Game) error {
			finished = game.Phase == phaseFinished && game.FinishReason == finishReasonInactivity
			return nil
		})
		return finished
	})
}

func waitFor(t *testing.T, limit time.Duration, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(limit)
	for {
		if check() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached within %s", limit)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
