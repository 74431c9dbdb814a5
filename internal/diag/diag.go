// Package diag finds compiler diagnostics that point back into the script,
// such as "script.kts:3:9: error: unresolved reference".
package diag

import (
	"regexp"
	"strconv"
)

// Location is one reference to the script inside tool output. Start and End
// are byte offsets into the scanned text. Row and Col are 1-based; Col is 0
// when the reference carries only a row.
type Location struct {
	Start int
	End   int
	Row   int
	Col   int
}

// Scanner matches locations for one script name.
type Scanner struct {
	re *regexp.Regexp
}

// NewScanner builds a scanner for references to base, optionally followed
// by "."+ext, then ":row" and an optional ":col".
func NewScanner(base, ext string) *Scanner {
	pattern := regexp.QuoteMeta(base) + `(?:\.` + regexp.QuoteMeta(ext) + `)?:(\d+)(?::(\d+))?`
	return &Scanner{re: regexp.MustCompile(pattern)}
}

// Scan returns every location in text, in order of appearance.
func (s *Scanner) Scan(text string) []Location {
	var locs []Location
	for _, m := range s.re.FindAllStringSubmatchIndex(text, -1) {
		row, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || row == 0 {
			continue
		}
		col := 0
		if m[4] >= 0 {
			col, _ = strconv.Atoi(text[m[4]:m[5]])
		}
		locs = append(locs, Location{Start: m[0], End: m[1], Row: row, Col: col})
	}
	return locs
}

// Segment is a run of text that either is a location or lies between two.
type Segment struct {
	Text     string
	Location *Location
}

// Split cuts text into alternating plain and location segments, in order,
// so a renderer can style the references differently.
func Split(text string, locs []Location) []Segment {
	var segs []Segment
	pos := 0
	for i := range locs {
		loc := &locs[i]
		if loc.Start < pos || loc.End > len(text) {
			continue
		}
		if loc.Start > pos {
			segs = append(segs, Segment{Text: text[pos:loc.Start]})
		}
		segs = append(segs, Segment{Text: text[loc.Start:loc.End], Location: loc})
		pos = loc.End
	}
	if pos < len(text) {
		segs = append(segs, Segment{Text: text[pos:]})
	}
	return segs
}
