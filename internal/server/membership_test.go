package server

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"acromania/internal/config"
)

func TestKickedPlayerMayRejoinBannedMayNot(t *testing.T) {
	srv := New(nil, config.Default())
	game, host, err := srv.CreateGame("Ada", SettingsPatch{}, true, "")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	_, ben, err := srv.Join(game.ID, "Ben", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := srv.Kick(game.ID, host.ID, ben.ID); err != nil {
		t.Fatalf("kick: %v", err)
	}
	if _, _, err := srv.Join(game.ID, "Ben", ""); err != nil {
		t.Fatalf("kicked player should rejoin: %v", err)
	}

	if err := srv.Ban(game.ID, host.ID, ben.ID, "spamming"); err != nil {
		t.Fatalf("ban: %v", err)
	}
	_, _, err = srv.Join(game.ID, "Ben", "")
	if kind, ok := KindOf(err); !ok || kind != KindConflict {
		t.Fatalf("expected conflict joining while banned, got %v", err)
	}
	if !strings.Contains(err.Error(), "spamming") {
		t.Fatalf("ban error should carry the reason, got %q", err.Error())
	}

	if err := srv.Unban(game.ID, host.ID, ben.ID); err != nil {
		t.Fatalf("unban: %v", err)
	}
	if _, _, err := srv.Join(game.ID, "Ben", ""); err != nil {
		t.Fatalf("unbanned player should rejoin: %v", err)
	}
}

func TestConcurrentJoinsGetDistinctMembers(t *testing.T) {
	srv := New(nil, config.Default())
	game, _, err := srv.CreateGame("Ada", SettingsPatch{}, true, "")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	const joiners = 5
	ids := make(chan int, joiners)
	for i := 0; i < joiners; i++ {
		name := fmt.Sprintf("Guest%d", i)
		go func() {
			_, member, err := srv.Join(game.ID, name, "")
			if err != nil {
				t.Errorf("join %s: %v", name, err)
				ids <- 0
				return
			}
			ids <- member.ID
		}()
	}

	seen := map[int]bool{}
	for i := 0; i < joiners; i++ {
		select {
		case id := <-ids:
			if id == 0 {
				continue
			}
			if seen[id] {
				t.Fatalf("duplicate member id %d", id)
			}
			seen[id] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("join did not return")
		}
	}

	srv.store.UpdateGame(game.ID, func(game *Game) error {
		if got := game.activeCount(); got != joiners+1 {
			t.Fatalf("expected %d active members, got %d", joiners+1, got)
		}
		return nil
	})
}

func TestUnbanIsHostOnly(t *testing.T) {
	srv := New(nil, config.Default())
	game, host, _ := srv.CreateGame("Ada", SettingsPatch{}, true, "")
	_, ben, _ := srv.Join(game.ID, "Ben", "")
	_, cal, _ := srv.Join(game.ID, "Cal", "")
	if err := srv.ToggleCoHost(game.ID, host.ID, ben.ID); err != nil {
		t.Fatalf("cohost: %v", err)
	}
	if err := srv.Ban(game.ID, host.ID, cal.ID, ""); err != nil {
		t.Fatalf("ban: %v", err)
	}

	err := srv.Unban(game.ID, ben.ID, cal.ID)
	if kind, ok := KindOf(err); !ok || kind != KindAuthorization {
		t.Fatalf("co-host must not unban, got %v", err)
	}
	if err := srv.Unban(game.ID, host.ID, cal.ID); err != nil {
		t.Fatalf("host unban: %v", err)
	}
}

func TestHostLeavePromotesCoHostFirst(t *testing.T) {
	srv := New(nil, config.Default())
	game, host, _ := srv.CreateGame("Ada", SettingsPatch{}, true, "")
	_, ben, _ := srv.Join(game.ID, "Ben", "")
	_, cal, _ := srv.Join(game.ID, "Cal", "")
	if err := srv.ToggleCoHost(game.ID, host.ID, cal.ID); err != nil {
		t.Fatalf("cohost: %v", err)
	}

	if err := srv.Leave(game.ID, host.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	stored, _ := srv.store.GetGame(game.ID)
	srv.store.UpdateGame(stored.ID, func(game *Game) error {
		if game.HostID != cal.ID {
			t.Fatalf("expected co-host %d promoted, got %d", cal.ID, game.HostID)
		}
		if game.member(cal.ID).CoHost {
			t.Fatalf("promotion should clear the co-host flag")
		}
		return nil
	})

	// Without a co-host the longest-joined member takes over.
	if err := srv.Leave(game.ID, cal.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	srv.store.UpdateGame(game.ID, func(game *Game) error {
		if game.HostID != ben.ID {
			t.Fatalf("expected %d promoted, got %d", ben.ID, game.HostID)
		}
		return nil
	})
}

func TestEmptiedGameFinishes(t *testing.T) {
	srv := New(nil, config.Default())
	game, host, _ := srv.CreateGame("Ada", SettingsPatch{}, true, "")
	if err := srv.Leave(game.ID, host.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	srv.store.UpdateGame(game.ID, func(game *Game) error {
		if game.Phase != phaseFinished || game.FinishReason != finishReasonAbandoned {
			t.Fatalf("expected abandoned finish, got %s/%s", game.Phase, game.FinishReason)
		}
		return nil
	})
}

func TestJoinRespectsCapacityAndPassword(t *testing.T) {
	srv := New(nil, config.Default())
	game, host, err := srv.CreateGame("Ada", SettingsPatch{}, true, "sekrit")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	_, _, err = srv.Join(game.ID, "Ben", "nope")
	if kind, ok := KindOf(err); !ok || kind != KindAuthorization {
		t.Fatalf("expected authorization error for wrong password, got %v", err)
	}
	if _, _, err := srv.Join(game.ID, "Ben", "sekrit"); err != nil {
		t.Fatalf("join with password: %v", err)
	}

	two := 2
	err = srv.ApplySettings(game.ID, host.ID, SettingsPatch{MaxPlayers: &two})
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	_, _, err = srv.Join(game.ID, "Cal", "sekrit")
	if kind, ok := KindOf(err); !ok || kind != KindConflict {
		t.Fatalf("expected conflict on full game, got %v", err)
	}
}

func TestModerationGuards(t *testing.T) {
	srv := New(nil, config.Default())
	game, host, _ := srv.CreateGame("Ada", SettingsPatch{}, true, "")
	_, ben, _ := srv.Join(game.ID, "Ben", "")
	_, cal, _ := srv.Join(game.ID, "Cal", "")
	if err := srv.ToggleCoHost(game.ID, host.ID, ben.ID); err != nil {
		t.Fatalf("cohost: %v", err)
	}

	cases := []struct {
		name    string
		actorID int
		target  int
	}{
		{"plain member cannot kick", cal.ID, ben.ID},
		{"nobody kicks the host", ben.ID, host.ID},
		{"nobody kicks themselves", host.ID, host.ID},
	}
	for _, tc := range cases {
		err := srv.Kick(game.ID, tc.actorID, tc.target)
		if kind, ok := KindOf(err); !ok || kind != KindAuthorization {
			t.Fatalf("%s: expected authorization error, got %v", tc.name, err)
		}
	}

	// Only the host may act on a co-host.
	if err := srv.ToggleCoHost(game.ID, host.ID, cal.ID); err != nil {
		t.Fatalf("cohost: %v", err)
	}
	err := srv.Kick(game.ID, cal.ID, ben.ID)
	if kind, ok := KindOf(err); !ok || kind != KindAuthorization {
		t.Fatalf("co-host on co-host: expected authorization error, got %v", err)
	}
	if err := srv.Kick(game.ID, host.ID, ben.ID); err != nil {
		t.Fatalf("host kick on co-host: %v", err)
	}
}

func TestBotNamesStayUnique(t *testing.T) {
	srv := New(nil, config.Default())
	sixteen := 16
	game, host, err := srv.CreateGame("Ada", SettingsPatch{MaxPlayers: &sixteen}, true, "")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	seen := map[string]struct{}{}
	for i := 0; i < 10; i++ {
		bot, err := srv.AddBot(game.ID, host.ID)
		if err != nil {
			t.Fatalf("add bot %d: %v", i, err)
		}
		if _, dup := seen[bot.Name]; dup {
			t.Fatalf("duplicate bot name %q", bot.Name)
		}
		seen[bot.Name] = struct{}{}
	}
}
