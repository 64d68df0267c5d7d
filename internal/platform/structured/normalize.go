package structured

import (
	"encoding/json"
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// frequencyTable maps clinical shorthand (uppercased) to the plain-English
// phrase printed on the prescription.
var frequencyTable = map[string]string{
	"OD":  "Once daily",
	"BD":  "Twice daily",
	"TDS": "Three times daily",
	"TID": "Three times daily",
	"QID": "Four times daily",
	"QDS": "Four times daily",
	"HS":  "At bedtime",
	"SOS": "As needed",
	"PRN": "As needed",
}

// durationPattern matches compact duration tokens like "5d" or "2 w".
// The quantity must be a positive integer, so "0d" falls through unchanged.
var durationPattern = regexp.MustCompile(`^([1-9][0-9]*)\s*([dwmyDWMY])$`)

var durationUnits = map[string]string{
	"d": "day",
	"w": "week",
	"m": "month",
	"y": "year",
}

// CleanString coerces an arbitrary JSON leaf to a trimmed string with runs of
// whitespace collapsed to a single space. Nulls and non-scalar values become
// the empty string. It never fails.
func CleanString(value any) string {
	var s string
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		s = v
	case json.Number:
		s = v.String()
	case float64:
		s = formatFloat(v)
	case bool:
		if v {
			s = "true"
		} else {
			s = "false"
		}
	default:
		// Objects and arrays are not meaningful as a string leaf.
		return ""
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

func formatFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

// CleanStringArray normalizes a value expected to be a list of strings.
// A nil value yields an empty list, a scalar is wrapped into a one-element
// list, and elements that clean down to the empty string are dropped.
// Input order is preserved and duplicates are kept.
func CleanStringArray(value any) []string {
	out := []string{}
	switch v := value.(type) {
	case nil:
		return out
	case []any:
		for _, item := range v {
			if s := CleanString(item); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := CleanString(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeFrequency expands clinical dosing shorthand ("BD", "TDS", ...)
// into its plain-English phrase. Unrecognized input is returned cleaned but
// otherwise unchanged, original case preserved.
func NormalizeFrequency(value any) string {
	s := CleanString(value)
	if phrase, ok := frequencyTable[strings.ToUpper(s)]; ok {
		return phrase
	}
	return s
}

// NormalizeDuration expands compact duration tokens such as "5d" into
// "5 days", pluralizing the unit when the quantity is not 1. Anything that
// does not match the compact pattern is returned cleaned but unchanged.
func NormalizeDuration(value any) string {
	s := CleanString(value)
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	n, unit := m[1], durationUnits[strings.ToLower(m[2])]
	if n != "1" {
		unit += "s"
	}
	return n + " " + unit
}

// Normalize reduces a raw parsed candidate to the canonical five-section
// document. Anything that is not a JSON object is treated as {}. Unknown
// keys are dropped at every level, malformed sections degrade to nil, and
// the result always carries exactly the five section keys. It never fails.
func Normalize(raw any) map[string]any {
	obj, ok := raw.(map[string]any)
	if !ok {
		obj = map[string]any{}
	}
	return map[string]any{
		keyPresentingComplaint: normalizePresentingComplaint(obj[keyPresentingComplaint]),
		keyDiagnosis:           normalizeDiagnosis(obj[keyDiagnosis]),
		keyMedications:         normalizeMedications(obj[keyMedications]),
		keyInvestigations:      normalizeInvestigations(obj[keyInvestigations]),
		keyAdviceAndFollowup:   normalizeAdviceAndFollowup(obj[keyAdviceAndFollowup]),
	}
}

// normalizePresentingComplaint collapses to nil when summary, duration, and
// associated symptoms are all empty after cleaning.
func normalizePresentingComplaint(raw any) any {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	summary := CleanString(obj["summary"])
	duration := NormalizeDuration(obj["duration"])
	symptoms := CleanStringArray(obj["associated_symptoms"])
	if summary == "" && duration == "" && len(symptoms) == 0 {
		return nil
	}
	var durationVal any
	if duration != "" {
		durationVal = duration
	}
	return map[string]any{
		"summary":             summary,
		"duration":            durationVal,
		"associated_symptoms": symptoms,
	}
}

func normalizeDiagnosis(raw any) any {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	primary := CleanString(obj["primary"])
	differential := CleanStringArray(obj["differential"])
	if primary == "" && len(differential) == 0 {
		return nil
	}
	return map[string]any{
		"primary":      primary,
		"differential": differential,
	}
}

// normalizeMedications keeps input order and discards elements whose every
// field cleans down to empty. Zero surviving elements collapse to nil.
func normalizeMedications(raw any) any {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := []any{}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		med := map[string]any{
			"name":         CleanString(obj["name"]),
			"dosage":       CleanString(obj["dosage"]),
			"frequency":    NormalizeFrequency(obj["frequency"]),
			"duration":     NormalizeDuration(obj["duration"]),
			"instructions": CleanString(obj["instructions"]),
		}
		if med["name"] != "" || med["dosage"] != "" || med["frequency"] != "" ||
			med["duration"] != "" || med["instructions"] != "" {
			out = append(out, med)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeInvestigations accepts both {test_name, reason} objects and bare
// strings (the generator sometimes emits test names directly). Elements with
// neither a test name nor a reason are dropped.
func normalizeInvestigations(raw any) any {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := []any{}
	for _, item := range items {
		var testName, reason string
		switch v := item.(type) {
		case map[string]any:
			testName = CleanString(v["test_name"])
			reason = CleanString(v["reason"])
		default:
			testName = CleanString(v)
		}
		if testName == "" && reason == "" {
			continue
		}
		out = append(out, map[string]any{
			"test_name": testName,
			"reason":    reason,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeAdviceAndFollowup(raw any) any {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	advice := CleanStringArray(obj["advice"])
	followUp := CleanString(obj["follow_up"])
	if len(advice) == 0 && followUp == "" {
		return nil
	}
	return map[string]any{
		"advice":    advice,
		"follow_up": followUp,
	}
}
