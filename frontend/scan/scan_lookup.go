package scan

import (
	"context"
	"strings"

	"baletrack/models"
)

// Finder is the part of the bales client a lookup needs.
type Finder interface {
	GetByBarcode(ctx context.Context, code string) (*models.Bale, error)
	GetByID(ctx context.Context, id string) (*models.Bale, error)
	GetAll(ctx context.Context) ([]models.Bale, error)
}

// MatchKind says which field a scanned code matched.
type MatchKind string

const (
	MatchNone    MatchKind = ""
	MatchBarcode MatchKind = "barcode"
	MatchID      MatchKind = "id"
	MatchLot     MatchKind = "lot number"
)

type Result struct {
	Bale *models.Bale
	Kind MatchKind
	// Incomplete is set when a read failed, so "not found" may be wrong.
	Incomplete bool
}

// Lookup resolves a scanned or typed code. The exact barcode is asked of the
// server first, then the code is tried as a record id, and finally the cached
// list is searched for a barcode or lot number ignoring case.
func Lookup(ctx context.Context, f Finder, code string) Result {
	code = strings.TrimSpace(code)
	if code == "" {
		return Result{}
	}
	var res Result

	bale, err := f.GetByBarcode(ctx, code)
	if err != nil {
		res.Incomplete = true
	} else if bale != nil {
		return Result{Bale: bale, Kind: MatchBarcode}
	}

	bale, err = f.GetByID(ctx, code)
	if err != nil {
		res.Incomplete = true
	} else if bale != nil {
		return Result{Bale: bale, Kind: MatchID}
	}

	all, err := f.GetAll(ctx)
	if err != nil {
		res.Incomplete = true
	}
	if b, kind := match(all, code); b != nil {
		return Result{Bale: b, Kind: kind}
	}
	return res
}

// match prefers a barcode hit over a lot number hit.
func match(list []models.Bale, code string) (*models.Bale, MatchKind) {
	var lot *models.Bale
	for i := range list {
		b := &list[i]
		if strings.EqualFold(strings.TrimSpace(b.BarCode), code) {
			return b, MatchBarcode
		}
		if lot == nil && b.LotNumber != "" && strings.EqualFold(strings.TrimSpace(b.LotNumber), code) {
			lot = b
		}
	}
	if lot != nil {
		return lot, MatchLot
	}
	return nil, MatchNone
}
