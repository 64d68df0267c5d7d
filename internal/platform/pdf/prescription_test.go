package pdf

import (
	"bytes"
	"testing"

	"github.com/mediscript/mediscript/internal/platform/structured"
)

func samplePrescription() Prescription {
	duration := "3 days"
	return Prescription{
		ClinicName: "MediScript AI",
		DoctorName: "Dr. Rao",
		Patient: PatientDetails{
			Name:   "A. Kumar",
			MRN:    "MRN000042",
			Age:    "34",
			Gender: "male",
		},
		Record: &structured.Record{
			PresentingComplaint: &structured.PresentingComplaint{
				Summary:            "fever and body ache",
				Duration:           &duration,
				AssociatedSymptoms: []string{"chills"},
			},
			Diagnosis: &structured.Diagnosis{Primary: "Viral fever"},
			Medications: []structured.Medication{
				{Name: "Paracetamol", Dosage: "500mg", Frequency: "Twice daily", Duration: "5 days", Instructions: "after food"},
			},
			Investigations: []structured.Investigation{
				{TestName: "CBC", Reason: "rule out dengue"},
			},
			AdviceAndFollowup: &structured.AdviceAndFollowup{
				Advice:   []string{"rest", "hydration"},
				FollowUp: "review in 5 days",
			},
		},
	}
}

func TestRender(t *testing.T) {
	out, err := Render(samplePrescription())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestRender_EmptyRecord(t *testing.T) {
	p := Prescription{DoctorName: "Dr. Rao", Patient: PatientDetails{Name: "A. Kumar"}}
	out, err := Render(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected non-empty PDF even for an empty record")
	}
}
