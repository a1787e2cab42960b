package domain

import (
	"fmt"
	"time"
)

// FacilityKind classifies a care center for weighting.
type FacilityKind string

const (
	KindHospital   FacilityKind = "hospital"
	KindUrgentCare FacilityKind = "urgent_care"
	KindClinic     FacilityKind = "clinic"
	KindTesting    FacilityKind = "testing"
)

// Facility is a care center returned by a distance-constrained search.
// DistanceKm is filled in by the search relative to the queried location.
type Facility struct {
	ID         string       `json:"id" yaml:"id"`
	Name       string       `json:"name" yaml:"name"`
	Address    string       `json:"address" yaml:"address"`
	City       string       `json:"city" yaml:"city"`
	State      string       `json:"state" yaml:"state"`
	Zip        string       `json:"zip" yaml:"zip"`
	Kind       FacilityKind `json:"kind" yaml:"kind"`
	Lat        float64      `json:"lat" yaml:"lat"`
	Lon        float64      `json:"lon" yaml:"lon"`
	DistanceKm float64      `json:"distance_km" yaml:"-"`
}

// Describe renders the facility the way it appears in an SMS resolution.
func (f Facility) Describe() string {
	return fmt.Sprintf("%s \n %s \n %s, %s  %s\n\n", f.Name, f.Address, f.City, f.State, f.Zip)
}

// Outcome is how a dispatched case left the worker pool.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeAbandoned Outcome = "abandoned"
)

// Abandon reasons recorded alongside OutcomeAbandoned.
const (
	ReasonMissingData      = "missing_data"
	ReasonPermanent        = "permanent"
	ReasonRetriesExhausted = "retries_exhausted"
	ReasonPanic            = "panic"
)

// CaseOutcome is one row of the outcome journal.
type CaseOutcome struct {
	CaseID     string    `json:"case_id"`
	Identity   string    `json:"identity"`
	Code       string    `json:"code"`
	Outcome    Outcome   `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	Attempts   int       `json:"attempts"`
	FinishedAt time.Time `json:"finished_at"`
}
