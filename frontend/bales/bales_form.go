package bales

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"baletrack/models"
)

func readForm(form url.Values) FormValues {
	get := func(k string) string { return strings.TrimSpace(form.Get(k)) }
	v := FormValues{
		BarCode:          get("bar_code"),
		LotNumber:        get("lot_number"),
		FarmerID:         get("grower_number"),
		BoxID:            get("box"),
		Classification:   get("classification"),
		GroupNumber:      get("group_number"),
		Mass:             get("mass"),
		Price:            get("price"),
		Trade:            get("trade"),
		Buyer:            get("buyer"),
		BuyersMark:       get("buyers_mark"),
		SEQ:              get("SEQ"),
		Appeal:           get("appeal"),
		Date:             get("date"),
		HasFault:         form.Get("has_fault") != "",
		FaultDescription: get("fault_description"),
		Technical:        make(map[string]string, len(technicalFields)),
	}
	for _, f := range technicalFields {
		v.Technical[f] = get(f)
	}
	if !v.HasFault {
		v.FaultDescription = ""
	}
	return v
}

// toPatch validates the form and builds the write payload. Blank numbers and
// pickers are sent as null so an edit can clear them.
func toPatch(v FormValues) (models.BalePatch, error) {
	if v.BarCode == "" {
		return models.BalePatch{}, errors.New("barcode required")
	}
	grade, err := models.ParseGrade(v.Classification)
	if err != nil {
		return models.BalePatch{}, err
	}
	mass, err := parseAmount("mass", v.Mass)
	if err != nil {
		return models.BalePatch{}, err
	}
	price, err := parseAmount("price", v.Price)
	if err != nil {
		return models.BalePatch{}, err
	}
	grower := models.RefID[models.Farmer](models.ID(v.FarmerID))
	box := models.RefID[models.Box](models.ID(v.BoxID))
	tech := func(k string) *string { return models.Ptr(v.Technical[k]) }

	return models.BalePatch{
		Status:           models.Ptr(models.StatusPublished),
		BarCode:          models.Ptr(v.BarCode),
		LotNumber:        models.Ptr(v.LotNumber),
		Mass:             mass,
		Price:            price,
		Classification:   &grade,
		HasFault:         models.Ptr(v.HasFault),
		FaultDescription: models.Ptr(v.FaultDescription),
		Trade:            models.Ptr(v.Trade),
		Buyer:            models.Ptr(v.Buyer),
		BuyersMark:       models.Ptr(v.BuyersMark),
		GroupNumber:      models.Ptr(v.GroupNumber),
		SEQ:              models.Ptr(v.SEQ),
		Appeal:           models.Ptr(v.Appeal),
		Date:             models.Ptr(v.Date),
		Frlsle:           tech("frlsle"),
		Var:              tech("var"),
		Ro:               tech("ro"),
		Rb:               tech("rb"),
		Xx:               tech("xx"),
		Co:               tech("co"),
		Rep:              tech("rep"),
		Grower:           &grower,
		Box:              &box,
	}, nil
}

func parseAmount(field, raw string) (*models.Null[float64], error) {
	if raw == "" {
		return models.None[float64](), nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", field)
	}
	if n < 0 {
		return nil, fmt.Errorf("%s cannot be negative", field)
	}
	return models.Some(n), nil
}
