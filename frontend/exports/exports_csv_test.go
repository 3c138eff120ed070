package exports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"baletrack/models"
)

func TestBuildBalesCSV(t *testing.T) {
	mass := 98.5
	created := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	farmer := models.Farmer{ID: "f1", GrowerNumber: "G-7", FirstName: "Nyasha", LastName: "Banda"}
	box := models.Box{ID: "x1", BoxNumber: "BX-1"}
	rows := []models.Bale{
		{
			ID: "1", BarCode: "ZW789012", LotNumber: "LOT-44", Mass: &mass,
			Classification: models.GradeA, HasFault: true, FaultDescription: "mould, wet",
			Grower: models.RefEmbedded(farmer.ID, farmer), Box: models.RefEmbedded(box.ID, box),
			DateCreated: &created,
		},
		{ID: "2", BarCode: "ZW789013", Grower: models.RefID[models.Farmer]("f9")},
	}

	body, err := buildCSV(baleHeader, rows, baleRecord)
	if err != nil {
		t.Fatalf("buildCSV: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	col := make(map[string]int, len(baleHeader))
	for i, name := range records[0] {
		col[name] = i
	}
	first := records[1]
	checks := map[string]string{
		"bar_code":          "ZW789012",
		"grower_number":     "G-7",
		"farmer":            "Nyasha Banda",
		"box":               "BX-1",
		"mass_kg":           "98.5",
		"price":             "",
		"classification":    "A",
		"has_fault":         "true",
		"fault_description": "mould, wet",
		"date_created":      "2026-03-01T08:30:00Z",
	}
	for name, want := range checks {
		if got := first[col[name]]; got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	// Unexpanded references leave the farmer columns blank.
	if second := records[2]; second[col["farmer"]] != "" || second[col["grower_number"]] != "" || second[col["has_fault"]] != "false" {
		t.Errorf("unexpected second row %v", second)
	}
}

func TestShipmentBalesKeepsShipmentOrder(t *testing.T) {
	all := []models.Bale{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	got := shipmentBales([]models.ID{"3", "9", "1"}, all)
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "1" {
		t.Fatalf("got %+v", got)
	}
}

func TestSafeName(t *testing.T) {
	if got := safeName("12/../x y"); got != "12xy" {
		t.Fatalf("got %q", got)
	}
}
