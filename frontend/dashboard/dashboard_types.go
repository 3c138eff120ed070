package dashboard

import "baletrack/models"

const recentBaleCount = 5

type Stats struct {
	TotalBales   int
	FaultyBales  int
	TotalFarmers int
	TotalBoxes   int
	OpenBoxes    int
	TotalMass    float64
}

type PageData struct {
	Stats       Stats
	RecentBales []models.Bale
	Activity    []models.AuditLog
	LoadFailed  bool
}

// BuildStats counts over lists already sorted newest first.
func BuildStats(bales []models.Bale, farmers []models.Farmer, boxes []models.Box) (Stats, []models.Bale) {
	s := Stats{
		TotalBales:   len(bales),
		TotalFarmers: len(farmers),
		TotalBoxes:   len(boxes),
	}
	for _, b := range bales {
		if b.HasFault {
			s.FaultyBales++
		}
		if b.Mass != nil {
			s.TotalMass += *b.Mass
		}
	}
	for _, b := range boxes {
		if b.BoxStatus == models.BoxStatusOpen {
			s.OpenBoxes++
		}
	}
	recent := bales
	if len(recent) > recentBaleCount {
		recent = recent[:recentBaleCount]
	}
	return s, recent
}
