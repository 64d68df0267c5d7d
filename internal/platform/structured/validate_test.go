package structured

import (
	"strings"
	"testing"
)

func emptyDoc() map[string]any {
	return map[string]any{
		"presenting_complaint": nil,
		"diagnosis":            nil,
		"medications":          nil,
		"investigations":       nil,
		"advice_and_followup":  nil,
	}
}

func findIssue(issues []Issue, location string) *Issue {
	for i := range issues {
		if issues[i].Location == location {
			return &issues[i]
		}
	}
	return nil
}

func TestValidate_EmptyRecordIsValid(t *testing.T) {
	if issues := Validate(emptyDoc()); len(issues) != 0 {
		t.Errorf("fully collapsed record should be valid, got %v", issues)
	}
}

func TestValidate_NormalizedOutputIsValid(t *testing.T) {
	raw := map[string]any{
		"presenting_complaint": map[string]any{
			"summary":             "fever",
			"duration":            "3d",
			"associated_symptoms": []any{"chills"},
		},
		"diagnosis": map[string]any{"primary": "Viral fever", "differential": []any{"Dengue"}},
		"medications": []any{
			map[string]any{"name": "Paracetamol", "dosage": "500mg", "frequency": "BD", "duration": "5d", "instructions": ""},
		},
		"investigations":      []any{map[string]any{"test_name": "CBC", "reason": ""}},
		"advice_and_followup": map[string]any{"advice": []any{"rest"}, "follow_up": "review in 5 days"},
	}
	if issues := Validate(Normalize(raw)); len(issues) != 0 {
		t.Errorf("normalizer output must always validate, got %v", issues)
	}
}

func TestValidate_WrongSectionType(t *testing.T) {
	doc := emptyDoc()
	doc["medications"] = "Paracetamol 500mg"

	issues := Validate(doc)
	issue := findIssue(issues, "medications")
	if issue == nil {
		t.Fatalf("expected an issue at medications, got %v", issues)
	}
	if issue.Code != IssueStructure {
		t.Errorf("expected structure issue, got %s", issue.Code)
	}
	if !strings.Contains(issue.Diagnostics, "array or null") || !strings.Contains(issue.Diagnostics, "string") {
		t.Errorf("diagnostics should name expected and actual types: %q", issue.Diagnostics)
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	doc := map[string]any{
		"presenting_complaint": map[string]any{
			"summary":             42, // wrong type
			"duration":            nil,
			"associated_symptoms": []any{"ok", 3}, // wrong element type
			"severity":            "high",         // unexpected key
		},
		"diagnosis":   nil,
		"medications": "nope", // wrong type
		// investigations missing entirely
		"advice_and_followup": nil,
		"notes":               "free text", // unexpected top-level key
	}

	issues := Validate(doc)
	for _, loc := range []string{
		"presenting_complaint.summary",
		"presenting_complaint.associated_symptoms[1]",
		"presenting_complaint.severity",
		"medications",
		"investigations",
		"notes",
	} {
		if findIssue(issues, loc) == nil {
			t.Errorf("expected an issue at %s; got %v", loc, issues)
		}
	}

	if issue := findIssue(issues, "investigations"); issue != nil && issue.Code != IssueRequired {
		t.Errorf("missing section should be a required issue, got %s", issue.Code)
	}
	if issue := findIssue(issues, "notes"); issue != nil && issue.Code != IssueUnexpected {
		t.Errorf("extra key should be an unexpected issue, got %s", issue.Code)
	}
}

func TestValidate_ListElementShape(t *testing.T) {
	doc := emptyDoc()
	doc["medications"] = []any{
		map[string]any{"name": "Paracetamol", "dosage": "500mg", "frequency": "Twice daily", "duration": "5 days"},
	}

	issues := Validate(doc)
	if findIssue(issues, "medications[0].instructions") == nil {
		t.Errorf("expected missing-field issue for medications[0].instructions, got %v", issues)
	}
}
