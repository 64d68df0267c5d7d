package structured

import (
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestParse_EndToEnd(t *testing.T) {
	raw := `{"medications":[{"name":"Paracetamol","dosage":"500mg","frequency":"BD","duration":"5d","instructions":"after food"}],"diagnosis":{"primary":"Viral fever","differential":[]}}`

	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantMeds := []Medication{{
		Name:         "Paracetamol",
		Dosage:       "500mg",
		Frequency:    "Twice daily",
		Duration:     "5 days",
		Instructions: "after food",
	}}
	if !reflect.DeepEqual(rec.Medications, wantMeds) {
		t.Errorf("medications = %+v, want %+v", rec.Medications, wantMeds)
	}
	if rec.Diagnosis == nil || rec.Diagnosis.Primary != "Viral fever" {
		t.Errorf("diagnosis = %+v", rec.Diagnosis)
	}
	if len(rec.Diagnosis.Differential) != 0 {
		t.Errorf("differential should be empty, got %v", rec.Diagnosis.Differential)
	}
	if rec.PresentingComplaint != nil || rec.Investigations != nil || rec.AdviceAndFollowup != nil {
		t.Errorf("untouched sections should be nil: %+v", rec)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	for _, raw := range []string{"", "not json", `{"diagnosis":`, `{}{}`} {
		_, err := Parse(raw)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q) should return *ParseError, got %v", raw, err)
		}
	}
}

func TestParse_GarbledOutputDegradesToEmptyRecord(t *testing.T) {
	// Wrongly-typed sections and extra keys degrade to "section not
	// captured" rather than failing the consultation.
	raw := `{"diagnosis":"Viral fever","medications":{"name":"x"},"summary":"blah","vitals":{}}`

	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Diagnosis != nil || rec.Medications != nil {
		t.Errorf("malformed sections should be nil, got %+v", rec)
	}
}

func TestParse_Deterministic(t *testing.T) {
	raw := `{"presenting_complaint":{"summary":" fever ","duration":"2w","associated_symptoms":["chills","","cough"]},"advice_and_followup":{"advice":["rest","hydration"],"follow_up":"1w"}}`

	first, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("pipeline is not deterministic:\n%s\n%s", a, b)
	}
}

func TestParse_ConcurrentCalls(t *testing.T) {
	raw := `{"medications":[{"name":"Amoxicillin","dosage":"250mg","frequency":"TDS","duration":"7d","instructions":""}]}`

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := Parse(raw)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if len(rec.Medications) != 1 || rec.Medications[0].Frequency != "Three times daily" {
				t.Errorf("unexpected record: %+v", rec)
			}
		}()
	}
	wg.Wait()
}

func TestRecord_MarshalShape(t *testing.T) {
	rec, err := Parse(`{"diagnosis":{"primary":"Migraine","differential":[]}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buf, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc) != 5 {
		t.Errorf("serialized record should carry exactly the 5 section keys, got %v", doc)
	}
	for _, key := range []string{"presenting_complaint", "medications", "investigations", "advice_and_followup"} {
		if doc[key] != nil {
			t.Errorf("%s should serialize as null, got %v", key, doc[key])
		}
	}
	diag := doc["diagnosis"].(map[string]any)
	if _, ok := diag["differential"].([]any); !ok {
		t.Errorf("empty differential should serialize as [], got %v", diag["differential"])
	}
}
