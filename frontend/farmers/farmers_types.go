package farmers

import "baletrack/models"

type ListPageData struct {
	Query      string
	Status     string
	LoadFailed bool
	Total      int
	Rows       []models.Farmer
}

type DetailPageData struct {
	Farmer     models.Farmer
	Bales      []models.Bale
	LoadFailed bool
	Status     string
}

// FormValues holds raw form input so a rejected form can be shown again.
type FormValues struct {
	GrowerNumber string
	FirstName    string
	LastName     string
	NationalID   string
	PhoneNumber  string
	Email        string
	FarmLocation string
	Status       string
}

type FormPageData struct {
	ID     string
	Values FormValues
	Error  string
}

func (d FormPageData) IsEdit() bool { return d.ID != "" }

func valuesOf(f models.Farmer) FormValues {
	return FormValues{
		GrowerNumber: f.GrowerNumber,
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		NationalID:   f.NationalID,
		PhoneNumber:  f.PhoneNumber,
		Email:        f.Email,
		FarmLocation: f.FarmLocation,
		Status:       string(f.Status),
	}
}
