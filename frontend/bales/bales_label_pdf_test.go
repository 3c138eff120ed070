package bales

import (
	"bytes"
	"testing"
	"time"

	"baletrack/models"
)

func TestRenderBaleLabelPDF(t *testing.T) {
	t.Parallel()

	mass := 112.4
	farmer := models.Farmer{ID: "f1", FirstName: "Nyasha", LastName: "Banda", GrowerNumber: "G-77"}
	bale := models.Bale{
		ID:             "b1",
		BarCode:        "ZW789012",
		LotNumber:      "LOT-1",
		Classification: models.GradeA,
		Mass:           &mass,
		HasFault:       true,
		Grower:         models.RefEmbedded(farmer.ID, farmer),
	}
	pdf, err := renderBaleLabelPDF(labelDataOf(bale), time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("renderBaleLabelPDF returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("expected pdf output")
	}
}

func TestRenderBaleLabelPDF_RequiresBarcode(t *testing.T) {
	t.Parallel()

	if _, err := renderBaleLabelPDF(LabelData{BarCode: "  "}, time.Now()); err == nil {
		t.Fatalf("expected error for blank barcode")
	}
}

func TestLabelDataOf_UnexpandedFarmer(t *testing.T) {
	t.Parallel()

	d := labelDataOf(models.Bale{BarCode: " X1 ", Grower: models.RefID[models.Farmer]("f9")})
	if d.BarCode != "X1" || d.FarmerName != "Unknown" || d.GrowerNumber != "" {
		t.Fatalf("unexpected label data %+v", d)
	}
}
