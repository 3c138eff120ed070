package exports

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"baletrack/models"
)

var baleHeader = []string{
	"id", "bar_code", "lot_number", "grower_number", "farmer", "box",
	"mass_kg", "price", "classification", "has_fault", "fault_description",
	"buyer", "buyers_mark", "trade", "date_created",
}

var farmerHeader = []string{
	"id", "grower_number", "first_name", "last_name", "national_id",
	"phone_number", "email", "farm_location", "status",
}

func baleRecord(b models.Bale) []string {
	var growerNumber, farmer string
	if f, ok := b.Grower.Embedded(); ok {
		growerNumber = f.GrowerNumber
		farmer = f.FullName()
	}
	return []string{
		b.ID.String(),
		b.BarCode,
		b.LotNumber,
		growerNumber,
		farmer,
		b.BoxNumber(),
		number(b.Mass),
		number(b.Price),
		string(b.Classification),
		strconv.FormatBool(b.HasFault),
		b.FaultDescription,
		b.Buyer,
		b.BuyersMark,
		b.Trade,
		timestamp(b.DateCreated),
	}
}

func farmerRecord(f models.Farmer) []string {
	return []string{
		f.ID.String(),
		f.GrowerNumber,
		f.FirstName,
		f.LastName,
		f.NationalID,
		f.PhoneNumber,
		f.Email,
		f.FarmLocation,
		string(f.Status),
	}
}

// buildCSV renders every row up front so a failure can still be reported
// before any bytes reach the client.
func buildCSV[T any](header []string, rows []T, record func(T) []string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writer.Write(record(row)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// shipmentBales returns the shipment's bales in shipment order, skipping ids
// that no longer resolve.
func shipmentBales(ids []models.ID, all []models.Bale) []models.Bale {
	byID := make(map[models.ID]models.Bale, len(all))
	for _, b := range all {
		byID[b.ID] = b
	}
	out := make([]models.Bale, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

func number(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func timestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
