package dashboard

import (
	"testing"

	"baletrack/models"
)

func TestBuildStats(t *testing.T) {
	m := func(v float64) *float64 { return &v }
	bales := []models.Bale{
		{ID: "7", HasFault: true, Mass: m(100)},
		{ID: "6", Mass: m(50.5)},
		{ID: "5"},
		{ID: "4", HasFault: true},
		{ID: "3"},
		{ID: "2"},
	}
	boxes := []models.Box{
		{ID: "1", BoxStatus: models.BoxStatusOpen},
		{ID: "2", BoxStatus: models.BoxStatusFull},
		{ID: "3", BoxStatus: models.BoxStatusOpen},
	}
	farmers := []models.Farmer{{ID: "a"}, {ID: "b"}}

	stats, recent := BuildStats(bales, farmers, boxes)
	want := Stats{TotalBales: 6, FaultyBales: 2, TotalFarmers: 2, TotalBoxes: 3, OpenBoxes: 2, TotalMass: 150.5}
	if stats != want {
		t.Fatalf("stats = %+v want %+v", stats, want)
	}
	if len(recent) != 5 || recent[0].ID != "7" || recent[4].ID != "3" {
		t.Fatalf("recent = %v", recent)
	}
}

func TestBuildStatsEmpty(t *testing.T) {
	stats, recent := BuildStats(nil, nil, nil)
	if stats != (Stats{}) || len(recent) != 0 {
		t.Fatalf("stats = %+v recent = %v", stats, recent)
	}
}
