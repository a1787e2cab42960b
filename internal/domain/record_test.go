package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

func TestRecord_Attributes(t *testing.T) {
	r := domain.NewRecord("+15550001111")
	r.Set(domain.AttrZipCode, "94110")
	r.Set(domain.AttrGetHospital, true)

	t.Run("string present", func(t *testing.T) {
		v, err := r.StringAttr(domain.AttrZipCode)
		if err != nil || v != "94110" {
			t.Fatalf("expected 94110, got %q (err=%v)", v, err)
		}
	})

	t.Run("bool present", func(t *testing.T) {
		v, err := r.BoolAttr(domain.AttrGetHospital)
		if err != nil || !v {
			t.Fatalf("expected true, got %v (err=%v)", v, err)
		}
	})

	t.Run("absent key is a missing attribute", func(t *testing.T) {
		_, err := r.StringAttr(domain.AttrTriageCode)
		if !errors.Is(err, domain.ErrMissingAttribute) {
			t.Fatalf("expected ErrMissingAttribute, got %v", err)
		}
		var mae *domain.MissingAttributeError
		if !errors.As(err, &mae) || mae.Key != domain.AttrTriageCode {
			t.Fatalf("expected key %q, got %v", domain.AttrTriageCode, err)
		}
	})

	t.Run("wrong type is a missing attribute", func(t *testing.T) {
		_, err := r.BoolAttr(domain.AttrZipCode)
		if !errors.Is(err, domain.ErrMissingAttribute) {
			t.Fatalf("expected ErrMissingAttribute, got %v", err)
		}
	})
}

func TestRecord_SnapshotIsIndependent(t *testing.T) {
	r := domain.NewRecord("+15550001111")
	r.Set("fever", true)

	snap := r.Snapshot()
	r.Set("fever", false)

	if v, _ := snap.BoolAttr("fever"); !v {
		t.Fatal("snapshot changed when the source record was mutated")
	}
}

func TestErrorClassification(t *testing.T) {
	base := errors.New("boom")

	if !domain.IsTransient(fmt.Errorf("ctx: %w", domain.Transient(base))) {
		t.Fatal("wrapped transient error not detected")
	}
	if domain.IsTransient(domain.Permanent(base)) {
		t.Fatal("permanent error classified as transient")
	}
	if !domain.IsPermanent(domain.Permanent(base)) {
		t.Fatal("permanent error not detected")
	}
	if !errors.Is(domain.Transient(base), base) {
		t.Fatal("transient wrapper hides the cause")
	}
	if domain.Transient(nil) != nil || domain.Permanent(nil) != nil {
		t.Fatal("wrapping nil must stay nil")
	}
}

func TestLookupDisposition(t *testing.T) {
	tests := []struct {
		code          string
		known         bool
		needsFacility bool
	}{
		{"home", true, false},
		{"LEVEL 1", true, true},
		{"LEVEL 4", true, true},
		{"gettest", true, false},
		{"checkinlater24", true, false},
		{"requeue", false, false},
		{"", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			d, ok := domain.LookupDisposition(tc.code)
			if ok != tc.known {
				t.Fatalf("known: expected %v, got %v", tc.known, ok)
			}
			if ok && d.NeedsFacility != tc.needsFacility {
				t.Fatalf("needs facility: expected %v, got %v", tc.needsFacility, d.NeedsFacility)
			}
		})
	}
}

func TestFacility_Describe(t *testing.T) {
	f := domain.Facility{Name: "General", Address: "1 Main St", City: "Springfield", State: "IL", Zip: "62701"}
	want := "General \n 1 Main St \n Springfield, IL  62701\n\n"
	if got := f.Describe(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
