package links

import "strings"

// Link maps a trigger keyword to the URL of an internal application.
type Link struct {
	Keyword string
	URL     string
}

// Annotator scans queries for known keywords. It is a pure matcher:
// no I/O, no state beyond the configured table.
type Annotator struct {
	table []Link
}

func NewAnnotator(table []Link) *Annotator {
	return &Annotator{table: table}
}

// Match returns every table entry whose keyword occurs as a
// case-insensitive substring of the query, in table order.
func (a *Annotator) Match(query string) []Link {
	lowered := strings.ToLower(query)

	var found []Link
	for _, l := range a.table {
		if strings.Contains(lowered, l.Keyword) {
			found = append(found, l)
		}
	}
	return found
}
