package shipments

import (
	"baletrack/frontend/shared/html"
	"baletrack/models"
)

type ListPageData struct {
	Query        string
	RecordStatus models.RecordStatus
	Status       string
	LoadFailed   bool
	Total        int
	Rows         []models.BaleShipment
}

type DetailPageData struct {
	Shipment   models.BaleShipment
	Bales      []models.Bale
	Missing    int
	LoadFailed bool
	Status     string
}

type FormValues struct {
	Status        string
	Filters       string
	DepartureDate string
	ArrivalDate   string
	BaleIDs       []string
}

type FormPageData struct {
	ID         string
	Values     FormValues
	Bales      []html.Option
	LoadFailed bool
	Error      string
}

func (d FormPageData) IsEdit() bool { return d.ID != "" }

func (v FormValues) selected() map[string]bool {
	m := make(map[string]bool, len(v.BaleIDs))
	for _, id := range v.BaleIDs {
		m[id] = true
	}
	return m
}

// dateValue trims a stored timestamp to the yyyy-mm-dd a date input accepts.
func dateValue(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func valuesOf(s models.BaleShipment) FormValues {
	ids := make([]string, 0, len(s.Bales))
	for _, id := range s.Bales {
		ids = append(ids, id.String())
	}
	return FormValues{
		Status:        string(s.Status),
		Filters:       s.Filters,
		DepartureDate: dateValue(s.DepartureDate),
		ArrivalDate:   dateValue(s.ArrivalDate),
		BaleIDs:       ids,
	}
}

// shippedBales resolves a shipment's bale ids against the loaded bale list,
// keeping the shipment's order. Ids with no loaded bale are counted as missing.
func shippedBales(ids []models.ID, all []models.Bale) ([]models.Bale, int) {
	byID := make(map[models.ID]models.Bale, len(all))
	for _, b := range all {
		byID[b.ID] = b
	}
	out := make([]models.Bale, 0, len(ids))
	missing := 0
	for _, id := range ids {
		b, ok := byID[id]
		if !ok {
			missing++
			continue
		}
		out = append(out, b)
	}
	return out, missing
}

func baleOptions(list []models.Bale) []html.Option {
	opts := make([]html.Option, 0, len(list))
	for _, b := range list {
		label := b.BarCode
		if label == "" {
			label = "#" + b.ID.String()
		}
		label += " - " + b.FarmerName() + " - " + b.Classification.Label()
		opts = append(opts, html.Option{Value: b.ID.String(), Label: label})
	}
	return opts
}
