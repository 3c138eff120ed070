package shipments

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"baletrack/models"
)

const dateLayout = "2006-01-02"

func readForm(form url.Values) FormValues {
	ids := make([]string, 0, len(form["bales"]))
	seen := make(map[string]bool)
	for _, id := range form["bales"] {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return FormValues{
		Status:        strings.TrimSpace(form.Get("status")),
		Filters:       strings.TrimSpace(form.Get("filters")),
		DepartureDate: strings.TrimSpace(form.Get("departure_date")),
		ArrivalDate:   strings.TrimSpace(form.Get("arrival_date")),
		BaleIDs:       ids,
	}
}

func toPatch(v FormValues) (models.ShipmentPatch, error) {
	status := models.RecordStatus(v.Status)
	switch status {
	case "":
		status = models.StatusDraft
	case models.StatusDraft, models.StatusPublished, models.StatusArchived:
	default:
		return models.ShipmentPatch{}, errors.New("unknown status " + v.Status)
	}
	departure, dep, err := parseDate("departure date", v.DepartureDate)
	if err != nil {
		return models.ShipmentPatch{}, err
	}
	arrival, arr, err := parseDate("arrival date", v.ArrivalDate)
	if err != nil {
		return models.ShipmentPatch{}, err
	}
	if !dep.IsZero() && !arr.IsZero() && arr.Before(dep) {
		return models.ShipmentPatch{}, errors.New("arrival date cannot be before departure date")
	}
	ids := make([]models.ID, 0, len(v.BaleIDs))
	for _, id := range v.BaleIDs {
		ids = append(ids, models.ID(id))
	}
	return models.ShipmentPatch{
		Status:        &status,
		Filters:       models.Ptr(v.Filters),
		DepartureDate: departure,
		ArrivalDate:   arrival,
		Bales:         &ids,
	}, nil
}

func parseDate(field, raw string) (*models.Null[string], time.Time, error) {
	if raw == "" {
		return models.None[string](), time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, time.Time{}, errors.New(field + " must be a date (yyyy-mm-dd)")
	}
	return models.Some(raw), t, nil
}
