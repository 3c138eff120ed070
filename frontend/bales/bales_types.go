package bales

import (
	"baletrack/frontend/search"
	"baletrack/frontend/shared/html"
	"baletrack/models"
)

type ListPageData struct {
	Filter     search.BaleFilter
	Status     string
	LoadFailed bool
	Total      int
	Rows       []models.Bale
}

type DetailPageData struct {
	Bale   models.Bale
	Status string
}

// technicalFields are the single-letter grading columns, in display order.
var technicalFields = []string{"frlsle", "var", "ro", "rb", "xx", "co", "rep"}

// FormValues holds raw form input so a rejected form can be shown again.
type FormValues struct {
	BarCode          string
	LotNumber        string
	FarmerID         string
	BoxID            string
	Classification   string
	GroupNumber      string
	Mass             string
	Price            string
	Trade            string
	Buyer            string
	BuyersMark       string
	SEQ              string
	Appeal           string
	Date             string
	HasFault         bool
	FaultDescription string
	Technical        map[string]string
}

type FormPageData struct {
	ID         string
	Values     FormValues
	Farmers    []html.Option
	Boxes      []html.Option
	LoadFailed bool
	Error      string
}

func (d FormPageData) IsEdit() bool { return d.ID != "" }

func valuesOf(b models.Bale) FormValues {
	return FormValues{
		BarCode:          b.BarCode,
		LotNumber:        b.LotNumber,
		FarmerID:         b.Grower.ID().String(),
		BoxID:            b.Box.ID().String(),
		Classification:   string(b.Classification),
		GroupNumber:      b.GroupNumber,
		Mass:             html.FloatValue(b.Mass),
		Price:            html.FloatValue(b.Price),
		Trade:            b.Trade,
		Buyer:            b.Buyer,
		BuyersMark:       b.BuyersMark,
		SEQ:              b.SEQ,
		Appeal:           b.Appeal,
		Date:             b.Date,
		HasFault:         b.HasFault,
		FaultDescription: b.FaultDescription,
		Technical: map[string]string{
			"frlsle": b.Frlsle,
			"var":    b.Var,
			"ro":     b.Ro,
			"rb":     b.Rb,
			"xx":     b.Xx,
			"co":     b.Co,
			"rep":    b.Rep,
		},
	}
}

func farmerOptions(list []models.Farmer) []html.Option {
	opts := make([]html.Option, 0, len(list))
	for _, f := range list {
		label := f.FullName()
		if f.GrowerNumber != "" {
			label += " (" + f.GrowerNumber + ")"
		}
		opts = append(opts, html.Option{Value: f.ID.String(), Label: label})
	}
	return opts
}

func boxOptions(list []models.Box) []html.Option {
	opts := make([]html.Option, 0, len(list))
	for _, b := range list {
		opts = append(opts, html.Option{Value: b.ID.String(), Label: b.BoxNumber + " - " + b.BoxStatus.Label()})
	}
	return opts
}
