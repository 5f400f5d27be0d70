package geo

import (
	"sort"

	"github.com/hjs-etl/internal/normalize"
)

// Municipality is a distinct (department, municipality, name) triple.
type Municipality struct {
	DeptCode string
	MuniCode string
	Name     string
}

// MunicipalityCode is what a resolved name maps to.
type MunicipalityCode struct {
	DeptCode string
	MuniCode string
}

// Collision records a name key that mapped to more than one code. The first
// code seen is kept; which one that is depends on source iteration order.
type Collision struct {
	Key     string
	Kept    MunicipalityCode
	Ignored MunicipalityCode
}

// MunicipalityIndex maps canonical municipality names to their codes.
// It is built once per run and read-only afterwards.
type MunicipalityIndex struct {
	codes      map[string]MunicipalityCode
	collisions []Collision
}

// BuildIndex indexes municipalities by Key(name). On collision the first
// entry wins and the conflict is recorded.
func BuildIndex(municipalities []Municipality) *MunicipalityIndex {
	ix := &MunicipalityIndex{codes: make(map[string]MunicipalityCode, len(municipalities))}
	for _, m := range municipalities {
		key, ok := normalize.Key(m.Name)
		if !ok {
			continue
		}
		code := MunicipalityCode{DeptCode: m.DeptCode, MuniCode: m.MuniCode}
		if kept, exists := ix.codes[key]; exists {
			if kept != code {
				ix.collisions = append(ix.collisions, Collision{Key: key, Kept: kept, Ignored: code})
			}
			continue
		}
		ix.codes[key] = code
	}
	return ix
}

// Resolve looks up a free-text municipality name. Empty names, names that
// normalize to nothing and unknown names are unresolved.
func (ix *MunicipalityIndex) Resolve(name string) (MunicipalityCode, bool) {
	if ix == nil || normalize.IsNull(name) {
		return MunicipalityCode{}, false
	}
	key, ok := normalize.Key(name)
	if !ok {
		return MunicipalityCode{}, false
	}
	code, ok := ix.codes[key]
	return code, ok
}

// Len returns the number of indexed names.
func (ix *MunicipalityIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.codes)
}

// Collisions returns the conflicting entries seen while building.
func (ix *MunicipalityIndex) Collisions() []Collision {
	if ix == nil {
		return nil
	}
	return ix.collisions
}

// Tally counts resolution outcomes for one load and remembers the raw
// unresolved names for the data-quality report.
type Tally struct {
	Resolved   int
	Unresolved int
	Missing    map[string]int
}

// Record resolves name against ix and counts the outcome.
func (t *Tally) Record(ix *MunicipalityIndex, name string) (MunicipalityCode, bool) {
	code, ok := ix.Resolve(name)
	if ok {
		t.Resolved++
		return code, true
	}
	t.Unresolved++
	if !normalize.IsNull(name) {
		if t.Missing == nil {
			t.Missing = make(map[string]int)
		}
		t.Missing[normalize.Cell(name)]++
	}
	return MunicipalityCode{}, false
}

// NameCount is a raw unresolved name with its frequency.
type NameCount struct {
	Name  string
	Count int
}

// TopMissing returns up to n unresolved names, most frequent first.
func (t *Tally) TopMissing(n int) []NameCount {
	out := make([]NameCount, 0, len(t.Missing))
	for name, c := range t.Missing {
		out = append(out, NameCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
