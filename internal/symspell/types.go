// Package symspell suggests canonical municipality names for free text that
// failed to resolve, using the symmetric delete algorithm over the keys of
// the municipality index.
//
// Suggestions only feed the data-quality report. They never change how a
// name resolves.
package symspell

import "github.com/hjs-etl/internal/config"

// Config holds the lookup parameters.
type Config struct {
	// MaxEditDistance bounds the Damerau-Levenshtein distance of a suggestion.
	MaxEditDistance int

	// MinTermLength skips keys too short to suggest for ("EL", "LA").
	MinTermLength int

	// MaxSuggestions caps the suggestions reported per unresolved name.
	MaxSuggestions int
}

// DefaultConfig returns the configuration used by the loaders.
func DefaultConfig() *Config {
	return &Config{
		MaxEditDistance: 2,
		MinTermLength:   3,
		MaxSuggestions:  3,
	}
}

// LoadConfigFromEnv overrides the defaults from SYMSPELL_* variables.
func LoadConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if n := config.GetEnvInt("SYMSPELL_MAX_EDIT_DISTANCE", cfg.MaxEditDistance); n > 0 && n <= 3 {
		cfg.MaxEditDistance = n
	}
	if n := config.GetEnvInt("SYMSPELL_MIN_TERM_LENGTH", cfg.MinTermLength); n > 0 {
		cfg.MinTermLength = n
	}
	if n := config.GetEnvInt("SYMSPELL_MAX_SUGGESTIONS", cfg.MaxSuggestions); n > 0 {
		cfg.MaxSuggestions = n
	}
	return cfg
}

// Suggestion is a dictionary key close to the looked-up input.
type Suggestion struct {
	Term      string `json:"term"`
	Distance  int    `json:"distance"`
	Frequency int64  `json:"frequency"`
}

// Entry is a dictionary key and its weight (number of polling places).
type Entry struct {
	Term      string
	Frequency int64
}
