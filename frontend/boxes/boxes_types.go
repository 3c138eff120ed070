package boxes

import "baletrack/models"

type ListPageData struct {
	Query      string
	BoxStatus  models.BoxStatus
	Status     string
	LoadFailed bool
	Total      int
	Rows       []models.Box
}

type DetailPageData struct {
	Box        models.Box
	Bales      []models.Bale
	TotalMass  float64
	LoadFailed bool
	Status     string
}

type FormPageData struct {
	ID          string
	BoxNumber   string
	Description string
	BoxStatus   string
	Error       string
}

func (d FormPageData) IsEdit() bool { return d.ID != "" }

// totalMass sums the weighed bales; unweighed bales count as zero.
func totalMass(bales []models.Bale) float64 {
	var sum float64
	for _, b := range bales {
		if b.Mass != nil {
			sum += *b.Mass
		}
	}
	return sum
}
