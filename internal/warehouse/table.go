package warehouse

import (
	"fmt"
	"strings"
)

// maxParams is the bind-parameter limit of one Postgres statement.
const maxParams = 65535

// maxRowsPerStatement bounds a single multi-row upsert.
const maxRowsPerStatement = 1000

// table describes an upsert target.
type table struct {
	name    string
	columns []string
	keys    []string
	// update lists the columns refreshed on conflict. Empty means the target
	// is insert-if-absent.
	update []string
	// touch is appended to the SET list when a row changes.
	touch string
}

// rowsPerStatement is how many rows fit in one statement.
func (t table) rowsPerStatement() int {
	return min(maxRowsPerStatement, maxParams/len(t.columns))
}

// upsertSQL renders a multi-row upsert for n rows. The statement returns the
// key columns of every inserted or changed row plus whether it was inserted;
// rows that already matched are not returned.
func (t table) upsertSQL(n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", t.name, strings.Join(t.columns, ", "))

	p := 1
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := range t.columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", p)
			p++
		}
		b.WriteByte(')')
	}

	fmt.Fprintf(&b, " ON CONFLICT (%s) ", strings.Join(t.keys, ", "))
	if len(t.update) == 0 {
		b.WriteString("DO NOTHING")
	} else {
		set := make([]string, 0, len(t.update)+1)
		current := make([]string, len(t.update))
		excluded := make([]string, len(t.update))
		for i, col := range t.update {
			set = append(set, col+" = EXCLUDED."+col)
			current[i] = t.name + "." + col
			excluded[i] = "EXCLUDED." + col
		}
		if t.touch != "" {
			set = append(set, t.touch)
		}
		fmt.Fprintf(&b, "DO UPDATE SET %s WHERE (%s) IS DISTINCT FROM (%s)",
			strings.Join(set, ", "), strings.Join(current, ", "), strings.Join(excluded, ", "))
	}
	fmt.Fprintf(&b, " RETURNING %s, (xmax = 0) AS inserted", strings.Join(t.keys, ", "))
	return b.String()
}

// nonKey returns the columns that are not part of the key.
func (t table) nonKey() []string {
	keys := make(map[string]bool, len(t.keys))
	for _, k := range t.keys {
		keys[k] = true
	}
	var out []string
	for _, c := range t.columns {
		if !keys[c] {
			out = append(out, c)
		}
	}
	return out
}
