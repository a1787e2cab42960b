package domain

import (
	"maps"
	"time"
)

// Attribute keys written by the intake service and the triage review step.
const (
	AttrPhoneNumber  = "phone_number"
	AttrTriageCode   = "triage_code"
	AttrInstructions = "triage_instructions"
	AttrGetHospital  = "get_hospital"
	AttrZipCode      = "zip_code"
)

// Record is one user's case. ID is the user's identity (their phone number)
// and is unique among cases in flight. Attributes are mutated in place as the
// record moves through intake, review and dispatch; only the current owner
// may touch them.
type Record struct {
	ID         string         `json:"id"`
	CaseID     string         `json:"case_id,omitempty"`
	Attributes map[string]any `json:"attributes"`
	CreatedAt  time.Time      `json:"created_at"`
	AdmittedAt time.Time      `json:"admitted_at,omitzero"`
}

func NewRecord(identity string) *Record {
	return &Record{
		ID:         identity,
		Attributes: make(map[string]any),
		CreatedAt:  time.Now().UTC(),
	}
}

func (r *Record) Set(key string, value any) {
	if r.Attributes == nil {
		r.Attributes = make(map[string]any)
	}
	r.Attributes[key] = value
}

// StringAttr returns the string stored under key. An absent key, or a value
// that is not a string, is reported as a *MissingAttributeError.
func (r *Record) StringAttr(key string) (string, error) {
	v, ok := r.Attributes[key].(string)
	if !ok {
		return "", &MissingAttributeError{Key: key}
	}
	return v, nil
}

// BoolAttr is the boolean counterpart of StringAttr.
func (r *Record) BoolAttr(key string) (bool, error) {
	v, ok := r.Attributes[key].(bool)
	if !ok {
		return false, &MissingAttributeError{Key: key}
	}
	return v, nil
}

// Snapshot returns a copy safe to hand to code that does not own the record,
// such as JSON encoders in HTTP handlers.
func (r *Record) Snapshot() *Record {
	cp := *r
	cp.Attributes = maps.Clone(r.Attributes)
	return &cp
}
