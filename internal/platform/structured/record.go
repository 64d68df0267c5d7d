// Package structured turns raw language-model output describing a
// consultation into a normalized, schema-validated prescription record.
//
// The generator is untrusted: any field may be missing, wrongly typed, or
// extra. The pipeline is a chain of pure functions (parse, normalize,
// validate) and every invocation is independent, so callers may run it
// concurrently without coordination.
package structured

// Record is the canonical structured prescription. Each section is either
// populated or nil; a section whose every leaf is empty after cleaning
// collapses to nil rather than being stored as an empty shell.
type Record struct {
	PresentingComplaint *PresentingComplaint `json:"presenting_complaint"`
	Diagnosis           *Diagnosis           `json:"diagnosis"`
	Medications         []Medication         `json:"medications"`
	Investigations      []Investigation      `json:"investigations"`
	AdviceAndFollowup   *AdviceAndFollowup   `json:"advice_and_followup"`
}

type PresentingComplaint struct {
	Summary            string   `json:"summary"`
	Duration           *string  `json:"duration"`
	AssociatedSymptoms []string `json:"associated_symptoms"`
}

type Diagnosis struct {
	Primary      string   `json:"primary"`
	Differential []string `json:"differential"`
}

type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
}

type Investigation struct {
	TestName string `json:"test_name"`
	Reason   string `json:"reason"`
}

type AdviceAndFollowup struct {
	Advice   []string `json:"advice"`
	FollowUp string   `json:"follow_up"`
}

// Section key names of the closed schema. Anything else in the raw candidate
// is dropped by the normalizer and rejected by the validator.
const (
	keyPresentingComplaint = "presenting_complaint"
	keyDiagnosis           = "diagnosis"
	keyMedications         = "medications"
	keyInvestigations      = "investigations"
	keyAdviceAndFollowup   = "advice_and_followup"
)

var sectionKeys = []string{
	keyPresentingComplaint,
	keyDiagnosis,
	keyMedications,
	keyInvestigations,
	keyAdviceAndFollowup,
}
