// Package groups explodes multi-valued group fields into person/group
// relations and collects the group vocabulary.
package groups

import (
	"sort"
	"strings"

	"github.com/hjs-etl/internal/normalize"
)

var delimiters = strings.NewReplacer(";", ",", "/", ",", "|", ",")

// Split explodes a raw group field ("Bingo; Pendones/Damas") into canonical
// group names. Parts that normalize to nothing are dropped; duplicates are kept.
func Split(raw string) []string {
	if normalize.IsNull(raw) {
		return nil
	}
	var out []string
	for _, part := range strings.Split(delimiters.Replace(raw), ",") {
		if name, ok := normalize.Key(part); ok {
			out = append(out, name)
		}
	}
	return out
}

// Relation links a person document to a canonical group name.
type Relation struct {
	Document string
	Group    string
}

// Deduplicator accumulates distinct relations across every source.
type Deduplicator struct {
	seen      map[Relation]struct{}
	relations []Relation
	names     map[string]struct{}
}

// NewDeduplicator returns an empty deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		seen:  make(map[Relation]struct{}),
		names: make(map[string]struct{}),
	}
}

// Add records the groups of one person and returns how many relations were new.
// The document is cleaned first; rows without a document add nothing.
func (d *Deduplicator) Add(document, raw string) int {
	doc := normalize.Document(document)
	if doc == "" {
		return 0
	}
	added := 0
	for _, name := range Split(raw) {
		rel := Relation{Document: doc, Group: name}
		if _, dup := d.seen[rel]; dup {
			continue
		}
		d.seen[rel] = struct{}{}
		d.relations = append(d.relations, rel)
		d.names[name] = struct{}{}
		added++
	}
	return added
}

// Relations returns the distinct relations in first-seen order.
func (d *Deduplicator) Relations() []Relation {
	return d.relations
}

// Names returns the group vocabulary sorted alphabetically.
func (d *Deduplicator) Names() []string {
	names := make([]string, 0, len(d.names))
	for n := range d.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of distinct relations.
func (d *Deduplicator) Len() int {
	return len(d.relations)
}
