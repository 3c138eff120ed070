package collections

import (
	"context"
	"strings"

	"baletrack/infrastructure/cache"
	"baletrack/models"
)

const (
	FarmersCollection   = "farmers"
	BoxesCollection     = "boxes"
	BalesCollection     = "bales"
	ShipmentsCollection = "bale_shipment"
)

// baleFields expands both foreign keys so lists can show farmer and box.
var baleFields = []string{"*", "grower_number.*", "box.*"}

type (
	Farmers   = Collection[models.Farmer, models.FarmerPatch]
	Boxes     = Collection[models.Box, models.BoxPatch]
	Shipments = Collection[models.BaleShipment, models.ShipmentPatch]
)

// Bales adds the bale-specific lookups.
type Bales struct {
	*Collection[models.Bale, models.BalePatch]
}

// GetAllInBox lists the bales assigned to boxID. Bales with no box never match.
func (b *Bales) GetAllInBox(ctx context.Context, boxID string) ([]models.Bale, error) {
	if strings.TrimSpace(boxID) == "" {
		return b.GetAll(ctx)
	}
	return b.GetAllWhere(ctx, "box", boxID)
}

// GetAllForFarmer lists the bales delivered by one farmer.
func (b *Bales) GetAllForFarmer(ctx context.Context, farmerID string) ([]models.Bale, error) {
	return b.GetAllWhere(ctx, "grower_number", farmerID)
}

// GetByBarcode looks up a bale by its exact barcode.
func (b *Bales) GetByBarcode(ctx context.Context, code string) (*models.Bale, error) {
	return b.GetByField(ctx, "bar_code", strings.TrimSpace(code))
}

// Client groups the typed clients over one remote and one cache.
type Client struct {
	Farmers   *Farmers
	Boxes     *Boxes
	Bales     *Bales
	Shipments *Shipments

	cache *cache.QueryCache
}

func New(remote Remote, qc *cache.QueryCache) *Client {
	if qc == nil {
		qc = cache.NewQueryCache(cache.DefaultTTL)
	}

	farmers := newCollection[models.Farmer, models.FarmerPatch](FarmersCollection, remote, qc)
	farmers.related = []string{BalesCollection}

	boxes := newCollection[models.Box, models.BoxPatch](BoxesCollection, remote, qc)
	boxes.related = []string{BalesCollection}

	bales := newCollection[models.Bale, models.BalePatch](BalesCollection, remote, qc)
	bales.fields = baleFields
	bales.related = []string{BoxesCollection}
	bales.prepare = func(p *models.BalePatch) { p.NormalizeFault() }

	shipments := newCollection[models.BaleShipment, models.ShipmentPatch](ShipmentsCollection, remote, qc)

	return &Client{
		Farmers:   farmers,
		Boxes:     boxes,
		Bales:     &Bales{Collection: bales},
		Shipments: shipments,
		cache:     qc,
	}
}

// Reset drops every cached read.
func (c *Client) Reset() {
	c.cache.Flush()
}
