package consult

import "strings"

// maxTranscriptLen caps stored transcripts; anything past this is noise
// or an abuse attempt, not a consultation.
const maxTranscriptLen = 100_000

var transcriptReplacer = strings.NewReplacer("<", "", ">", "", "\x00", "")

// SanitizeTranscript strips angle brackets and NUL bytes from a transcript
// and truncates it. Transcripts are rendered back into the doctor's browser,
// so markup characters never survive storage.
func SanitizeTranscript(s string) string {
	s = transcriptReplacer.Replace(s)
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > maxTranscriptLen {
		return string(r[:maxTranscriptLen])
	}
	return s
}
