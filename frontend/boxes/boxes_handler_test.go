package boxes

import (
	"net/url"
	"testing"

	"baletrack/models"
)

func TestParseBoxForm(t *testing.T) {
	cases := []struct {
		name    string
		form    url.Values
		want    models.BoxStatus
		wantErr bool
	}{
		{name: "open", form: url.Values{"box_number": {"BX-1"}, "box_status": {"open"}}, want: models.BoxStatusOpen},
		{name: "legacy available", form: url.Values{"box_number": {"BX-1"}, "box_status": {"available"}}, want: models.BoxStatusOpen},
		{name: "in transit", form: url.Values{"box_number": {"BX-1"}, "box_status": {"in_transit"}}, want: models.BoxStatusInTransit},
		{name: "missing number", form: url.Values{"box_status": {"open"}}, wantErr: true},
		{name: "unknown status", form: url.Values{"box_number": {"BX-1"}, "box_status": {"lost"}}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			patch, err := parseBoxForm(formFrom(tc.form, ""))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseBoxForm: %v", err)
			}
			if *patch.BoxStatus != tc.want {
				t.Fatalf("box status = %q want %q", *patch.BoxStatus, tc.want)
			}
		})
	}
}

func TestTotalMassSkipsUnweighed(t *testing.T) {
	m1, m2 := 101.5, 98.5
	bales := []models.Bale{{Mass: &m1}, {}, {Mass: &m2}}
	if got := totalMass(bales); got != 200 {
		t.Fatalf("total = %v", got)
	}
}
