package symspell

import (
	"sort"
)

// SymSpell is a symmetric delete dictionary. Every key is indexed under all of
// its deletions within MaxEditDistance, so a lookup only has to generate the
// deletions of the input.
type SymSpell struct {
	terms   map[string]int64
	deletes map[string][]string
	config  *Config
}

// New creates an empty dictionary.
func New(config *Config) *SymSpell {
	if config == nil {
		config = DefaultConfig()
	}
	return &SymSpell{
		terms:   make(map[string]int64),
		deletes: make(map[string][]string),
		config:  config,
	}
}

// Add indexes a canonical key. Adding a key twice accumulates its frequency.
func (s *SymSpell) Add(term string, frequency int64) {
	if len([]rune(term)) < s.config.MinTermLength {
		return
	}
	if _, exists := s.terms[term]; exists {
		s.terms[term] += frequency
		return
	}
	s.terms[term] = frequency
	for del := range deletions(term, s.config.MaxEditDistance) {
		s.deletes[del] = append(s.deletes[del], term)
	}
}

// Len returns the number of keys.
func (s *SymSpell) Len() int {
	return len(s.terms)
}

// Lookup returns keys within maxDistance of input, closest first and, for
// equal distance, most frequent first. Input is expected to be a canonical key.
func (s *SymSpell) Lookup(input string, maxDistance int) []Suggestion {
	if input == "" {
		return nil
	}
	if maxDistance > s.config.MaxEditDistance {
		maxDistance = s.config.MaxEditDistance
	}
	if freq, ok := s.terms[input]; ok {
		return []Suggestion{{Term: input, Distance: 0, Frequency: freq}}
	}

	seen := make(map[string]bool)
	var out []Suggestion
	consider := func(term string) {
		if seen[term] {
			return
		}
		seen[term] = true
		if d := distance(input, term, maxDistance); d >= 0 {
			out = append(out, Suggestion{Term: term, Distance: d, Frequency: s.terms[term]})
		}
	}

	candidates := deletions(input, maxDistance)
	candidates[input] = struct{}{}
	for del := range candidates {
		if _, ok := s.terms[del]; ok {
			consider(del)
		}
		for _, term := range s.deletes[del] {
			consider(term)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// deletions returns every string obtained by removing up to n runes from term.
func deletions(term string, n int) map[string]struct{} {
	out := make(map[string]struct{})
	frontier := []string{term}
	for depth := 0; depth < n; depth++ {
		var next []string
		for _, w := range frontier {
			r := []rune(w)
			if len(r) <= 1 {
				continue
			}
			for i := range r {
				del := string(r[:i]) + string(r[i+1:])
				if _, ok := out[del]; ok {
					continue
				}
				out[del] = struct{}{}
				next = append(next, del)
			}
		}
		frontier = next
	}
	return out
}

// distance is the optimal string alignment distance between a and b, or -1
// when it exceeds max.
func distance(a, b string, max int) int {
	ra, rb := []rune(a), []rune(b)
	if diff := len(ra) - len(rb); diff > max || -diff > max {
		return -1
	}

	rows := len(ra) + 1
	cols := len(rb) + 1
	d := make([][]int, rows)
	for i := range d {
		d[i] = make([]int, cols)
		d[i][0] = i
	}
	for j := 0; j < cols; j++ {
		d[0][j] = j
	}

	for i := 1; i < rows; i++ {
		rowMin := d[i][0]
		for j := 1; j < cols; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+1)
			}
			rowMin = min(rowMin, d[i][j])
		}
		if rowMin > max {
			return -1
		}
	}

	if d[rows-1][cols-1] > max {
		return -1
	}
	return d[rows-1][cols-1]
}
