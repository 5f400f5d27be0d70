package import_pkg

import (
	"errors"
	"fmt"
)

// ErrSkipRow marks a row that does not carry a record (header repeats,
// separators, rows without the identifying column). Skips are counted,
// not reported as errors.
var ErrSkipRow = errors.New("skip row")

// RowError is a row that could not be mapped. The load continues.
type RowError struct {
	Line int
	Key  string
	Err  error
}

func (e *RowError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("line %d (%s): %v", e.Line, e.Key, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
