package repository

import "fmt"

// OrderBy is a pre-validated sort. Column must come from a handler-side
// allow-list; it is interpolated into SQL and must never carry user input.
type OrderBy struct {
	Column string
	Desc   bool
}

// Clause renders the ORDER BY body, falling back to def when unset.
func (o OrderBy) Clause(def string) string {
	if o.Column == "" {
		return def
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s", o.Column, dir)
}
