package timeslot

import (
	"encoding/json"
	"testing"
)

func TestParseAndString(t *testing.T) {
	tod, err := Parse("14:30")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tod.Minutes() != 14*60+30 {
		t.Fatalf("expected 870 minutes, got %d", tod.Minutes())
	}
	if tod.String() != "14:30" {
		t.Fatalf("expected 14:30, got %s", tod)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "25:00", "12:61", "noon", "9:5"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestScanTimeColumn(t *testing.T) {
	var tod TimeOfDay
	if err := tod.Scan("10:00:00"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if tod.String() != "10:00" {
		t.Fatalf("expected 10:00, got %s", tod)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	tod, _ := Parse("09:15")
	b, err := json.Marshal(tod)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `"09:15"` {
		t.Fatalf("unexpected json: %s", b)
	}
	var back TimeOfDay
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back != tod {
		t.Fatalf("round trip mismatch: %v != %v", back, tod)
	}
}

func TestOverlaps(t *testing.T) {
	at := func(s string) TimeOfDay {
		tod, err := Parse(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		return tod
	}

	// Full overlap
	if !Overlaps(at("10:00"), at("12:00"), at("10:00"), at("12:00")) {
		t.Error("identical intervals must overlap")
	}
	// Partial overlap
	if !Overlaps(at("10:00"), at("12:00"), at("11:00"), at("13:00")) {
		t.Error("partially intersecting intervals must overlap")
	}
	// Containment
	if !Overlaps(at("10:00"), at("14:00"), at("11:00"), at("12:00")) {
		t.Error("contained interval must overlap")
	}
	// Adjacent intervals share an endpoint but do not overlap
	if Overlaps(at("10:00"), at("12:00"), at("12:00"), at("14:00")) {
		t.Error("adjacent intervals must not overlap")
	}
	// Disjoint
	if Overlaps(at("08:00"), at("09:00"), at("12:00"), at("14:00")) {
		t.Error("disjoint intervals must not overlap")
	}
}
