package symspell

import (
	"github.com/hjs-etl/internal/geo"
	"github.com/hjs-etl/internal/normalize"
)

// BuildFromEntries builds a dictionary from explicit entries.
func BuildFromEntries(entries []Entry, config *Config) *SymSpell {
	s := New(config)
	for _, e := range entries {
		s.Add(e.Term, e.Frequency)
	}
	return s
}

// BuildFromMunicipalities indexes the canonical key of every municipality
// name. Each municipality adds one to its key's frequency, so a name shared by
// several municipalities (in different departments) ranks first among equally
// close suggestions.
func BuildFromMunicipalities(municipalities []geo.Municipality, config *Config) *SymSpell {
	s := New(config)
	for _, m := range municipalities {
		if key, ok := normalize.Key(m.Name); ok {
			s.Add(key, 1)
		}
	}
	return s
}
