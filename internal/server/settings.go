package server

import (
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"acromania/internal/config"
)

// Settings is the per-game configuration, validated as a whole on every
// change instead of re-parsed field by field.
type Settings struct {
	Rounds           int    `json:"rounds" validate:"min=1,max=20"`
	AnswerSeconds    int    `json:"answer_seconds" validate:"min=10,max=600"`
	VoteSeconds      int    `json:"vote_seconds" validate:"min=10,max=600"`
	AcronymMinLen    int    `json:"acronym_min_len" validate:"min=2,max=10"`
	AcronymMaxLen    int    `json:"acronym_max_len" validate:"min=2,max=10,gtefield=AcronymMinLen"`
	ExcludedLetters  string `json:"excluded_letters" validate:"excluded_letters"`
	MaxAnswerEdits   int    `json:"max_answer_edits" validate:"min=0,max=50"`
	MaxVoteChanges   int    `json:"max_vote_changes" validate:"min=0,max=50"`
	ChatEnabled      bool   `json:"chat_enabled"`
	ReadyCheck       bool   `json:"ready_check"`
	MaxPlayers       int    `json:"max_players" validate:"min=2,max=16"`
	WeightedAcronyms bool   `json:"weighted_acronyms"`
}

// SettingsPatch carries only the fields a caller wants to change. Public
// lives on the game, not the settings, but shares the patch path.
type SettingsPatch struct {
	Rounds           *int    `json:"rounds"`
	AnswerSeconds    *int    `json:"answer_seconds"`
	VoteSeconds      *int    `json:"vote_seconds"`
	AcronymMinLen    *int    `json:"acronym_min_len"`
	AcronymMaxLen    *int    `json:"acronym_max_len"`
	ExcludedLetters  *string `json:"excluded_letters"`
	MaxAnswerEdits   *int    `json:"max_answer_edits"`
	MaxVoteChanges   *int    `json:"max_vote_changes"`
	ChatEnabled      *bool   `json:"chat_enabled"`
	ReadyCheck       *bool   `json:"ready_check"`
	MaxPlayers       *int    `json:"max_players"`
	WeightedAcronyms *bool   `json:"weighted_acronyms"`
	Public           *bool   `json:"public"`
}

func defaultSettings(cfg config.Config) Settings {
	return Settings{
		Rounds:         cfg.Rounds,
		AnswerSeconds:  cfg.AnswerSeconds,
		VoteSeconds:    cfg.VoteSeconds,
		AcronymMinLen:  cfg.AcronymMinLen,
		AcronymMaxLen:  cfg.AcronymMaxLen,
		MaxVoteChanges: cfg.MaxVoteChanges,
		MaxPlayers:     cfg.MaxPlayers,
		ChatEnabled:    true,
		ReadyCheck:     true,
	}
}

var (
	settingsValidatorOnce sync.Once
	settingsValidator     *validator.Validate
)

func validateSettings(s Settings) error {
	settingsValidatorOnce.Do(func() {
		settingsValidator = validator.New()
		_ = settingsValidator.RegisterValidation("excluded_letters", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			if len(value) > 20 {
				return false
			}
			for _, r := range value {
				if !unicode.IsLetter(r) {
					return false
				}
			}
			return true
		})
	})
	if err := settingsValidator.Struct(s); err != nil {
		return errValidation("invalid settings: %v", err)
	}
	// Enough letters must survive the exclusions to fill an acronym.
	if 26-len([]rune(s.ExcludedLetters)) < s.AcronymMaxLen {
		return errValidation("invalid settings: too many excluded letters")
	}
	return nil
}

// liveSettingsPatch reports whether a patch only touches fields changeable
// after the game has started.
func liveSettingsPatch(patch SettingsPatch) bool {
	return patch.Rounds == nil &&
		patch.AnswerSeconds == nil &&
		patch.VoteSeconds == nil &&
		patch.AcronymMinLen == nil &&
		patch.AcronymMaxLen == nil &&
		patch.ExcludedLetters == nil &&
		patch.MaxAnswerEdits == nil &&
		patch.MaxVoteChanges == nil &&
		patch.ReadyCheck == nil &&
		patch.MaxPlayers == nil &&
		patch.WeightedAcronyms == nil
}

func applyPatch(s Settings, patch SettingsPatch) Settings {
	if patch.Rounds != nil {
		s.Rounds = *patch.Rounds
	}
	if patch.AnswerSeconds != nil {
		s.AnswerSeconds = *patch.AnswerSeconds
	}
	if patch.VoteSeconds != nil {
		s.VoteSeconds = *patch.VoteSeconds
	}
	if patch.AcronymMinLen != nil {
		s.AcronymMinLen = *patch.AcronymMinLen
	}
	if patch.AcronymMaxLen != nil {
		s.AcronymMaxLen = *patch.AcronymMaxLen
	}
	if patch.ExcludedLetters != nil {
		s.ExcludedLetters = strings.ToUpper(*patch.ExcludedLetters)
	}
	if patch.MaxAnswerEdits != nil {
		s.MaxAnswerEdits = *patch.MaxAnswerEdits
	}
	if patch.MaxVoteChanges != nil {
		s.MaxVoteChanges = *patch.MaxVoteChanges
	}
	if patch.ChatEnabled != nil {
		s.ChatEnabled = *patch.ChatEnabled
	}
	if patch.ReadyCheck != nil {
		s.ReadyCheck = *patch.ReadyCheck
	}
	if patch.MaxPlayers != nil {
		s.MaxPlayers = *patch.MaxPlayers
	}
	if patch.WeightedAcronyms != nil {
		s.WeightedAcronyms = *patch.WeightedAcronyms
	}
	return s
}

func (s Settings) excludedRunes() []rune {
	return []rune(strings.ToUpper(s.ExcludedLetters))
}
