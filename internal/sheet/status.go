package sheet

import "strings"

// Status cell values. The leading glyph is what the grid renders in the
// narrow status column; the rest shows as a tooltip.
const (
	StatusLocked    = "\U0001F512Locked"
	StatusSearching = "\U0001F50DSearching Compound"
	StatusFound     = "✅Compound found"
	statusErrPrefix = "❌"
)

// StatusError builds the error status for a failed lookup.
func StatusError(msg string) string {
	return statusErrPrefix + msg
}

// IsErrorStatus reports whether a status cell carries a lookup failure and
// returns the failure message.
func IsErrorStatus(v Value) (string, bool) {
	s, ok := v.(String)
	if !ok || !strings.HasPrefix(string(s), statusErrPrefix) {
		return "", false
	}
	return strings.TrimPrefix(string(s), statusErrPrefix), true
}
