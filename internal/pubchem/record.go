package pubchem

import (
	"strconv"
	"strings"
)

// The record endpoint returns a generic tree of titled sections. Only two
// leaves matter to us (the CAS number and the experimental density) and both
// sit behind deeply optional paths, so the walk treats every missing link as
// "property unavailable" rather than an error.

type viewReply struct {
	Record *viewRecord `json:"Record"`
}

type viewRecord struct {
	RecordTitle string    `json:"RecordTitle"`
	Section     []section `json:"Section"`
}

type section struct {
	TOCHeading  string        `json:"TOCHeading"`
	Section     []section     `json:"Section"`
	Information []information `json:"Information"`
}

type information struct {
	Value struct {
		StringWithMarkup []struct {
			String string `json:"String"`
		} `json:"StringWithMarkup"`
	} `json:"Value"`
}

// findSection returns the first child section with the given title.
func findSection(secs []section, heading string) *section {
	for i := range secs {
		if secs[i].TOCHeading == heading {
			return &secs[i]
		}
	}
	return nil
}

// sectionPath walks nested section titles from the record root.
func (r *viewRecord) sectionPath(headings ...string) *section {
	secs := r.Section
	var cur *section
	for _, h := range headings {
		cur = findSection(secs, h)
		if cur == nil {
			return nil
		}
		secs = cur.Section
	}
	return cur
}

// firstString returns the first markup string of a section's information
// block, the slot the record format keeps display values in.
func firstString(sec *section) (string, bool) {
	if sec == nil || len(sec.Information) == 0 {
		return "", false
	}
	swm := sec.Information[0].Value.StringWithMarkup
	if len(swm) == 0 {
		return "", false
	}
	return swm[0].String, true
}

// casNumber extracts the CAS registry number, or "" when absent.
func (r *viewRecord) casNumber() string {
	sec := r.sectionPath("Names and Identifiers", "Other Identifiers", "CAS")
	s, _ := firstString(sec)
	return s
}

// density extracts the experimental density in g/cm³. The stored value is
// free text like "0.7893 g/cm³ at 20 °C"; only the leading numeric token is
// used. Any missing link or unparseable token reports ok=false, meaning the
// property is unavailable, not that the lookup failed.
func (r *viewRecord) density() (float64, bool) {
	sec := r.sectionPath("Chemical and Physical Properties", "Experimental Properties", "Density")
	s, ok := firstString(sec)
	if !ok {
		return 0, false
	}
	token, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
