package farmers

import (
	"errors"
	"net/url"
	"strings"

	"baletrack/models"
)

func readForm(form url.Values) FormValues {
	get := func(k string) string { return strings.TrimSpace(form.Get(k)) }
	return FormValues{
		GrowerNumber: get("grower_number"),
		FirstName:    get("first_name"),
		LastName:     get("last_name"),
		NationalID:   get("national_id"),
		PhoneNumber:  get("phone_number"),
		Email:        get("email"),
		FarmLocation: get("farm_location"),
		Status:       get("status"),
	}
}

// toPatch validates the form and builds the write payload.
func toPatch(v FormValues) (models.FarmerPatch, error) {
	var missing []string
	if v.GrowerNumber == "" {
		missing = append(missing, "grower number")
	}
	if v.FirstName == "" {
		missing = append(missing, "first name")
	}
	if v.LastName == "" {
		missing = append(missing, "last name")
	}
	if len(missing) > 0 {
		return models.FarmerPatch{}, errors.New(strings.Join(missing, ", ") + " required")
	}
	if v.Email != "" && !strings.Contains(v.Email, "@") {
		return models.FarmerPatch{}, errors.New("email address is not valid")
	}
	status, err := parseStatus(v.Status)
	if err != nil {
		return models.FarmerPatch{}, err
	}
	return models.FarmerPatch{
		Status:       &status,
		GrowerNumber: models.Ptr(v.GrowerNumber),
		FirstName:    models.Ptr(v.FirstName),
		LastName:     models.Ptr(v.LastName),
		NationalID:   models.Ptr(v.NationalID),
		PhoneNumber:  models.Ptr(v.PhoneNumber),
		Email:        models.Ptr(v.Email),
		FarmLocation: models.Ptr(v.FarmLocation),
	}, nil
}

func parseStatus(raw string) (models.RecordStatus, error) {
	switch s := models.RecordStatus(raw); s {
	case "":
		return models.StatusPublished, nil
	case models.StatusPublished, models.StatusDraft, models.StatusArchived:
		return s, nil
	}
	return "", errors.New("unknown status " + raw)
}
