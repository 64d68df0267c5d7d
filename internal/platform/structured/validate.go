package structured

import "fmt"

// IssueCode classifies a single schema violation.
type IssueCode string

const (
	IssueStructure  IssueCode = "structure"  // wrong type at a declared path
	IssueRequired   IssueCode = "required"   // declared key missing
	IssueUnexpected IssueCode = "unexpected" // key not in the closed schema
)

// Issue is one schema violation. Location is a JSON-ish path such as
// "medications[0].name".
type Issue struct {
	Code        IssueCode `json:"code"`
	Location    string    `json:"location"`
	Diagnostics string    `json:"diagnostics"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Location, i.Diagnostics, i.Code)
}

// sectionShape drives validation of one top-level section.
type fieldKind int

const (
	kindString fieldKind = iota
	kindNullableString
	kindStringArray
)

var recordSections = map[string]map[string]fieldKind{
	keyPresentingComplaint: {
		"summary":             kindString,
		"duration":            kindNullableString,
		"associated_symptoms": kindStringArray,
	},
	keyDiagnosis: {
		"primary":      kindString,
		"differential": kindStringArray,
	},
	keyAdviceAndFollowup: {
		"advice":    kindStringArray,
		"follow_up": kindString,
	},
}

var listSections = map[string]map[string]fieldKind{
	keyMedications: {
		"name":         kindString,
		"dosage":       kindString,
		"frequency":    kindString,
		"duration":     kindString,
		"instructions": kindString,
	},
	keyInvestigations: {
		"test_name": kindString,
		"reason":    kindString,
	},
}

// Validate checks a normalized document against the closed five-section
// schema and returns every violation found, not just the first. An empty
// result means the document is trusted. This is the hard boundary between
// "normalized" and "clinical record": a normalizer bug that lets a
// non-string leaf or a stray key through must surface here.
func Validate(doc map[string]any) []Issue {
	var issues []Issue

	for key := range doc {
		if _, ok := recordSections[key]; ok {
			continue
		}
		if _, ok := listSections[key]; ok {
			continue
		}
		issues = append(issues, Issue{
			Code:        IssueUnexpected,
			Location:    key,
			Diagnostics: "key is not part of the prescription schema",
		})
	}

	for _, key := range sectionKeys {
		value, present := doc[key]
		if !present {
			issues = append(issues, Issue{
				Code:        IssueRequired,
				Location:    key,
				Diagnostics: "section key is missing",
			})
			continue
		}
		if value == nil {
			continue
		}
		if shape, ok := recordSections[key]; ok {
			issues = append(issues, validateRecord(key, value, shape)...)
		} else {
			issues = append(issues, validateList(key, value, listSections[key])...)
		}
	}

	return issues
}

func validateRecord(path string, value any, shape map[string]fieldKind) []Issue {
	obj, ok := value.(map[string]any)
	if !ok {
		return []Issue{typeIssue(path, "object or null", value)}
	}

	var issues []Issue
	for key := range obj {
		if _, declared := shape[key]; !declared {
			issues = append(issues, Issue{
				Code:        IssueUnexpected,
				Location:    path + "." + key,
				Diagnostics: "key is not part of the prescription schema",
			})
		}
	}
	for key, kind := range shape {
		fieldPath := path + "." + key
		field, present := obj[key]
		if !present {
			issues = append(issues, Issue{
				Code:        IssueRequired,
				Location:    fieldPath,
				Diagnostics: "field is missing",
			})
			continue
		}
		issues = append(issues, validateField(fieldPath, field, kind)...)
	}
	return issues
}

func validateList(path string, value any, shape map[string]fieldKind) []Issue {
	items, ok := value.([]any)
	if !ok {
		return []Issue{typeIssue(path, "array or null", value)}
	}

	var issues []Issue
	for i, item := range items {
		issues = append(issues, validateRecord(fmt.Sprintf("%s[%d]", path, i), item, shape)...)
	}
	return issues
}

func validateField(path string, value any, kind fieldKind) []Issue {
	switch kind {
	case kindString:
		if _, ok := value.(string); !ok {
			return []Issue{typeIssue(path, "string", value)}
		}
	case kindNullableString:
		if value == nil {
			return nil
		}
		if _, ok := value.(string); !ok {
			return []Issue{typeIssue(path, "string or null", value)}
		}
	case kindStringArray:
		switch v := value.(type) {
		case []string:
			return nil
		case []any:
			var issues []Issue
			for i, item := range v {
				if _, ok := item.(string); !ok {
					issues = append(issues, typeIssue(fmt.Sprintf("%s[%d]", path, i), "string", item))
				}
			}
			return issues
		default:
			return []Issue{typeIssue(path, "array of strings", value)}
		}
	}
	return nil
}

func typeIssue(path, expected string, actual any) Issue {
	return Issue{
		Code:        IssueStructure,
		Location:    path,
		Diagnostics: fmt.Sprintf("expected %s, got %s", expected, typeName(actual)),
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case map[string]any:
		return "object"
	case []any, []string:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
