package symspell

import (
	"github.com/hjs-etl/internal/geo"
	"github.com/hjs-etl/internal/normalize"
)

// UnresolvedName is one line of the unresolved-municipality report.
type UnresolvedName struct {
	Name        string       `json:"name"`
	Count       int          `json:"count"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// Suggester attaches dictionary suggestions to unresolved names.
type Suggester struct {
	dict   *SymSpell
	config *Config
}

// NewSuggester wraps a built dictionary.
func NewSuggester(dict *SymSpell, config *Config) *Suggester {
	if config == nil {
		config = DefaultConfig()
	}
	return &Suggester{dict: dict, config: config}
}

// Suggest returns up to MaxSuggestions keys close to the canonical form of name.
func (s *Suggester) Suggest(name string) []Suggestion {
	if s == nil || s.dict == nil {
		return nil
	}
	key, ok := normalize.Key(name)
	if !ok {
		return nil
	}
	found := s.dict.Lookup(key, s.config.MaxEditDistance)
	if len(found) > s.config.MaxSuggestions {
		found = found[:s.config.MaxSuggestions]
	}
	return found
}

// Report lists the top unresolved names of a tally with their suggestions.
func (s *Suggester) Report(tally *geo.Tally, top int) []UnresolvedName {
	if tally == nil {
		return nil
	}
	missing := tally.TopMissing(top)
	out := make([]UnresolvedName, 0, len(missing))
	for _, m := range missing {
		out = append(out, UnresolvedName{
			Name:        m.Name,
			Count:       m.Count,
			Suggestions: s.Suggest(m.Name),
		})
	}
	return out
}
