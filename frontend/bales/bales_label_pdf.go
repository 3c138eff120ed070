package bales

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"

	"baletrack/frontend/shared/html"
	"baletrack/models"
)

// LabelData is what gets printed on a bale tag.
type LabelData struct {
	BarCode        string
	LotNumber      string
	FarmerName     string
	GrowerNumber   string
	BoxNumber      string
	Classification models.Grade
	Mass           *float64
	HasFault       bool
}

func labelDataOf(b models.Bale) LabelData {
	d := LabelData{
		BarCode:        strings.TrimSpace(b.BarCode),
		LotNumber:      b.LotNumber,
		FarmerName:     b.FarmerName(),
		BoxNumber:      b.BoxNumber(),
		Classification: b.Classification,
		Mass:           b.Mass,
		HasFault:       b.HasFault,
	}
	if f, ok := b.Grower.Embedded(); ok {
		d.GrowerNumber = f.GrowerNumber
	}
	return d
}

// renderBaleLabelPDF lays out a 100x150mm tag with the barcode as Code 128.
func renderBaleLabelPDF(label LabelData, printedAt time.Time) ([]byte, error) {
	label.BarCode = strings.TrimSpace(label.BarCode)
	if label.BarCode == "" {
		return nil, errors.New("bale has no barcode")
	}
	barcodePNG, err := renderCode128PNG(label.BarCode, 1200, 300)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: 100, Ht: 150},
	})
	pdf.SetTitle("Bale "+label.BarCode, false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	margin := 5.0
	innerW := pageW - 2*margin
	pdf.SetLineWidth(0.35)
	pdf.Rect(margin, margin, innerW, pageH-2*margin, "")

	farmer := strings.TrimSpace(label.FarmerName)
	if farmer == "" {
		farmer = "Unknown"
	}
	pdf.SetFont("Helvetica", "B", 20)
	size := fitFontSizeForWidth(pdf, "Helvetica", "B", 20, 10, farmer, innerW-6)
	pdf.SetFont("Helvetica", "B", size)
	pdf.SetXY(margin+3, margin+4)
	pdf.CellFormat(innerW-6, 10, farmer, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	if label.GrowerNumber != "" {
		pdf.SetX(margin + 3)
		pdf.CellFormat(innerW-6, 6, "Grower: "+label.GrowerNumber, "", 1, "C", false, 0, "")
	}

	grade := label.Classification.Label()
	pdf.SetFont("Helvetica", "B", 40)
	pdf.SetX(margin + 3)
	pdf.CellFormat(innerW-6, 20, grade, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		"Lot: " + html.OrDash(label.LotNumber),
		"Mass: " + html.FormatFloat(label.Mass) + " kg",
		"Box: " + html.OrDash(label.BoxNumber),
	} {
		pdf.SetX(margin + 3)
		pdf.CellFormat(innerW-6, 7, line, "", 1, "L", false, 0, "")
	}
	if label.HasFault {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(180, 0, 0)
		pdf.SetX(margin + 3)
		pdf.CellFormat(innerW-6, 8, "FAULT", "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	imageName := "bale-barcode-" + label.BarCode
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
	imgW, imgH := innerW-8, 28.0
	y := pageH - margin - imgH - 22
	pdf.ImageOptions(imageName, margin+4, y, imgW, imgH, false, opt, 0, "")

	pdf.SetY(y + imgH + 2)
	codeSize := fitFontSizeForWidth(pdf, "Helvetica", "B", 16, 8, label.BarCode, innerW-6)
	pdf.SetFont("Helvetica", "B", codeSize)
	pdf.SetX(margin + 3)
	pdf.CellFormat(innerW-6, 8, label.BarCode, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetX(margin + 3)
	pdf.CellFormat(innerW-6, 5, "Printed "+printedAt.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func fitFontSizeForWidth(pdf *gofpdf.Fpdf, family, style string, base, min float64, text string, maxWidth float64) float64 {
	if maxWidth <= 0 {
		return min
	}
	size := base
	pdf.SetFont(family, style, size)
	for size > min && pdf.GetStringWidth(text) > maxWidth {
		size -= 0.5
		pdf.SetFont(family, style, size)
	}
	return size
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, toNRGBA(scaled)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// toNRGBA flattens the barcode image; gofpdf rejects some paletted PNGs.
func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
