package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestBaleReferenceShapes(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		wantID     ID
		wantFarmer string
		embedded   bool
	}{
		{name: "bare id", body: `{"id":"b1","grower_number":"f1"}`, wantID: "f1", wantFarmer: "Unknown"},
		{name: "numeric id", body: `{"id":7,"grower_number":42}`, wantID: "42", wantFarmer: "Unknown"},
		{name: "embedded", body: `{"id":"b1","grower_number":{"id":"f1","first_name":"Tendai","last_name":"Moyo"}}`, wantID: "f1", wantFarmer: "Tendai Moyo", embedded: true},
		{name: "null", body: `{"id":"b1","grower_number":null}`, wantID: "", wantFarmer: "Unknown"},
		{name: "missing", body: `{"id":"b1"}`, wantID: "", wantFarmer: "Unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var bale Bale
			if err := json.Unmarshal([]byte(tc.body), &bale); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := bale.Grower.ID(); got != tc.wantID {
				t.Fatalf("grower id=%q want %q", got, tc.wantID)
			}
			if _, ok := bale.Grower.Embedded(); ok != tc.embedded {
				t.Fatalf("embedded=%v want %v", ok, tc.embedded)
			}
			if got := bale.FarmerName(); got != tc.wantFarmer {
				t.Fatalf("farmer name=%q want %q", got, tc.wantFarmer)
			}
		})
	}
}

func TestReferenceMarshalsBareID(t *testing.T) {
	ref := RefEmbedded(ID("box-1"), Box{ID: "box-1", BoxNumber: "BX-001"})
	out, err := json.Marshal(ref)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"box-1"` {
		t.Fatalf("expected bare id, got %s", out)
	}

	var zero Reference[Box]
	out, err = json.Marshal(zero)
	if err != nil {
		t.Fatalf("marshal zero: %v", err)
	}
	if string(out) != "null" {
		t.Fatalf("expected null, got %s", out)
	}
}

func TestBoxStatusDecodingUsesClosedEnum(t *testing.T) {
	cases := map[string]BoxStatus{
		`"available"`:  BoxStatusOpen,
		`"open"`:       BoxStatusOpen,
		`"in_transit"`: BoxStatusInTransit,
		`"FULL"`:       BoxStatusFull,
		`"mystery"`:    BoxStatusUnknown,
		`null`:         BoxStatusUnknown,
	}
	for raw, want := range cases {
		var box Box
		if err := json.Unmarshal([]byte(`{"id":"x","box_status":`+raw+`}`), &box); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if box.BoxStatus != want {
			t.Fatalf("%s decoded to %q want %q", raw, box.BoxStatus, want)
		}
	}
}

func TestParseGrade(t *testing.T) {
	if g, err := ParseGrade(" b "); err != nil || g != GradeB {
		t.Fatalf("expected B, got %q err=%v", g, err)
	}
	if g, err := ParseGrade(""); err != nil || g != "" {
		t.Fatalf("expected empty grade, got %q err=%v", g, err)
	}
	if _, err := ParseGrade("Z"); err == nil {
		t.Fatalf("expected error for unknown grade")
	}
}

func TestBalePatchOmitsUntouchedAndClearsExplicitNulls(t *testing.T) {
	patch := BalePatch{
		LotNumber: Ptr("LOT-9"),
		Mass:      None[float64](),
		Box:       &Reference[Box]{},
		HasFault:  Ptr(false),
	}
	patch.FaultDescription = Ptr("mould")
	patch.NormalizeFault()

	out, err := json.Marshal(patch)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := fields["bar_code"]; ok {
		t.Fatalf("untouched field was sent: %s", out)
	}
	if v, ok := fields["mass"]; !ok || v != nil {
		t.Fatalf("expected explicit null mass, got %s", out)
	}
	if v, ok := fields["box"]; !ok || v != nil {
		t.Fatalf("expected explicit null box, got %s", out)
	}
	if fields["fault_description"] != "" {
		t.Fatalf("fault description should be cleared when has_fault=false: %s", out)
	}
	if !strings.Contains(string(out), `"lot_number":"LOT-9"`) {
		t.Fatalf("lot number missing: %s", out)
	}
}

func TestSessionExpiredAtIsAbsolute(t *testing.T) {
	expires := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: expires}
	if s.ExpiredAt(expires.Add(-time.Millisecond)) {
		t.Fatalf("session should be live before expiry")
	}
	if !s.ExpiredAt(expires) {
		t.Fatalf("session should be expired at the expiry instant")
	}
}

func TestBaleCloneCopiesNestedData(t *testing.T) {
	orig := Bale{
		ID:     "1",
		Mass:   Ptr(42.0),
		Grower: RefEmbedded(ID("f1"), Farmer{ID: "f1", FirstName: "Rudo"}),
		Box:    RefEmbedded(ID("b1"), Box{ID: "b1", Bales: []ID{"1"}}),
	}
	cp := orig.Clone()

	*cp.Mass = 0
	f, _ := cp.Grower.Embedded()
	f.FirstName = "changed"
	box, _ := cp.Box.Embedded()
	box.Bales[0] = "changed"

	if *orig.Mass != 42 || orig.FarmerName() != "Rudo" {
		t.Fatalf("clone shares scalar or farmer data with the original: %+v", orig)
	}
	ob, _ := orig.Box.Embedded()
	if ob.Bales[0] != "1" {
		t.Fatalf("clone shares the embedded box bales")
	}
	if cp.Grower.ID() != "f1" || cp.Box.ID() != "b1" {
		t.Fatalf("clone lost reference ids")
	}

	var zero Reference[Farmer]
	if !zero.Clone().IsZero() {
		t.Fatalf("cloned null reference is not null")
	}
}
