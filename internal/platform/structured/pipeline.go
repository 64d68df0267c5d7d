package structured

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ParseError reports raw generator output that is not syntactically valid
// JSON. It is never retried here; retry policy belongs to the caller.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("structured prescription: invalid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a normalized document that failed the closed
// schema. It carries the complete issue list so operators can tell a missing
// section apart from wrong types drifting in from the generator.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	locs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		locs = append(locs, issue.Location)
	}
	return fmt.Sprintf("structured prescription: %d schema violation(s): %s",
		len(e.Issues), strings.Join(locs, ", "))
}

// Parse runs the full pipeline on raw generator output: JSON decode,
// normalize, validate, bind. The returned error is either a *ParseError or
// a *ValidationError; callers distinguish them with errors.As. The call is
// pure and deterministic: identical input yields identical output.
func Parse(raw string) (*Record, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var candidate any
	if err := dec.Decode(&candidate); err != nil {
		return nil, &ParseError{Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Err: fmt.Errorf("trailing data after JSON value")}
	}

	doc := Normalize(candidate)
	if issues := Validate(doc); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return bindRecord(doc)
}

// bindRecord converts a validated document into the typed Record. The shape
// is guaranteed by Validate, so a binding failure indicates a bug rather
// than bad input.
func bindRecord(doc map[string]any) (*Record, error) {
	buf, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal validated document: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(buf, &rec); err != nil {
		return nil, fmt.Errorf("bind validated document: %w", err)
	}
	return &rec, nil
}
