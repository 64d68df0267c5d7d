package prescribing

import "strings"

// Maximum field lengths, matching the DB column sizes.
const (
	maxNameLen         = 150
	maxDosageLen       = 100
	maxFrequencyLen    = 100
	maxDurationLen     = 100
	maxInstructionsLen = 255
	maxTestNameLen     = 200
	maxReasonLen       = 500
	maxAdviceLen       = 500
	maxFollowUpLen     = 2000
)

// sanitizeField strips NUL bytes, trims whitespace and truncates to max runes.
// Edits arrive from the browser and go straight into printed documents, so
// every free-text field passes through here.
func sanitizeField(s string, max int) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}
